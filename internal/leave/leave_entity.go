package leave

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	StatusPending   = "Pending"
	StatusApproved  = "Approved"
	StatusRejected  = "Rejected"
	StatusCancelled = "Cancelled"
)

const (
	AppliedByEmployee = "Employee"
	AppliedByHR       = "HR"
)

type Leave struct {
	ID         string    `gorm:"type:uuid;primaryKey" json:"id"`
	TenantID   string    `gorm:"type:varchar(64);not null;index" json:"tenantId"`
	EmployeeID string    `gorm:"type:uuid;not null;index" json:"employeeId"`
	LeaveType  string    `gorm:"type:varchar(100);not null" json:"leaveType"`
	StartDate  time.Time `gorm:"type:date;not null" json:"startDate"`
	EndDate    time.Time `gorm:"type:date;not null" json:"endDate"`
	Reason     string    `gorm:"type:text" json:"reason"`
	Status     string    `gorm:"type:varchar(20);not null;default:Pending;index" json:"status"`

	// DaysCount is the sandwich-rule day count, every calendar day in
	// range inclusive, minus 0.5 for a half day. Paid plus unpaid
	// always equals DaysCount.
	DaysCount  float64 `gorm:"not null" json:"daysCount"`
	PaidDays   float64 `gorm:"not null;default:0" json:"paidLeaveDays"`
	UnpaidDays float64 `gorm:"not null;default:0" json:"unpaidLeaveDays"`

	HalfDay        bool   `gorm:"not null;default:false" json:"isHalfDay"`
	HalfDayTarget  string `gorm:"type:varchar(10)" json:"halfDayTarget,omitempty"`
	HalfDaySession string `gorm:"type:varchar(20)" json:"halfDaySession,omitempty"`

	AppliedBy       string     `gorm:"type:varchar(20);not null;default:Employee" json:"appliedBy"`
	HRComment       string     `gorm:"type:text" json:"hrComment,omitempty"`
	AdminRemark     string     `gorm:"type:text" json:"adminRemark,omitempty"`
	RejectionReason string     `gorm:"type:text" json:"rejectionReason,omitempty"`
	ActionByID      *string    `gorm:"type:uuid" json:"actionBy,omitempty"`
	ApprovedAt      *time.Time `json:"approvedAt,omitempty"`
	RejectedAt      *time.Time `json:"rejectedAt,omitempty"`
	CancelledAt     *time.Time `json:"cancelledAt,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Leave) TableName() string {
	return "leave_requests"
}

func (l *Leave) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	return nil
}

// ActionDateTime is whichever terminal timestamp the request reached,
// surfaced as one field for list views.
func (l *Leave) ActionDateTime() *time.Time {
	switch {
	case l.ApprovedAt != nil:
		return l.ApprovedAt
	case l.RejectedAt != nil:
		return l.RejectedAt
	case l.CancelledAt != nil:
		return l.CancelledAt
	}
	return nil
}
