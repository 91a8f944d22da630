package leavebalance

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LeaveBalance tracks one employee's entitlement for one leave type in
// one cycle year. Amounts are float64 because half days are allowed.
type LeaveBalance struct {
	ID         string  `gorm:"type:uuid;primaryKey" json:"id"`
	TenantID   string  `gorm:"type:varchar(64);not null;uniqueIndex:idx_balance_identity" json:"tenantId"`
	EmployeeID string  `gorm:"type:uuid;not null;uniqueIndex:idx_balance_identity" json:"employeeId"`
	PolicyID   string  `gorm:"type:uuid;index" json:"policyId"`
	LeaveType  string  `gorm:"type:varchar(100);not null;uniqueIndex:idx_balance_identity" json:"leaveType"`
	Year       int     `gorm:"not null;uniqueIndex:idx_balance_identity" json:"year"`
	Total      float64 `gorm:"not null;default:0" json:"total"`
	Used       float64 `gorm:"not null;default:0" json:"used"`
	Pending    float64 `gorm:"not null;default:0" json:"pending"`
	Blocked    float64 `gorm:"not null;default:0" json:"blocked"`
	Available  float64 `gorm:"not null;default:0" json:"available"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (LeaveBalance) TableName() string {
	return "leave_balances"
}

func (b *LeaveBalance) BeforeCreate(tx *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return nil
}

// BeforeSave keeps the derived column consistent no matter which code
// path mutated the row. Available is never written directly.
func (b *LeaveBalance) BeforeSave(tx *gorm.DB) error {
	b.Available = b.Total - b.Used - b.Pending
	return nil
}
