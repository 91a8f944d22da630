package employee

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Employee struct {
	ID            string     `gorm:"type:uuid;primaryKey" json:"id"`
	TenantID      string     `gorm:"type:varchar(64);not null;index" json:"tenantId"`
	DepartmentID  *string    `gorm:"type:uuid;index" json:"departmentId"`
	FirstName     string     `gorm:"type:varchar(100);not null" json:"firstName"`
	LastName      string     `gorm:"type:varchar(100)" json:"lastName"`
	Email         string     `gorm:"type:varchar(255);not null;uniqueIndex:idx_employees_tenant_email" json:"email"`
	EmployeeCode  string     `gorm:"type:varchar(50)" json:"employeeCode"`
	Role          string     `gorm:"type:varchar(50);not null;default:user" json:"role"`
	ManagerID     *string    `gorm:"type:uuid;index" json:"managerId"`
	JoiningDate   time.Time  `gorm:"not null" json:"joiningDate"`
	Status        string     `gorm:"type:varchar(20);not null;default:active" json:"status"`
	LeavePolicyID *string    `gorm:"type:uuid;index" json:"leavePolicyId"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
	DeletedAt     *time.Time `gorm:"index" json:"-"`
}

func (Employee) TableName() string {
	return "employees"
}

func (e *Employee) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	return nil
}

// FullName joins first and last name, tolerating a missing last name.
func (e *Employee) FullName() string {
	if e.LastName == "" {
		return e.FirstName
	}
	return e.FirstName + " " + e.LastName
}

type Department struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	TenantID  string    `gorm:"type:varchar(64);not null;index" json:"tenantId"`
	Name      string    `gorm:"type:varchar(100);not null" json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Department) TableName() string {
	return "departments"
}

func (d *Department) BeforeCreate(tx *gorm.DB) error {
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	return nil
}
