package attendance

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	StatusPresent = "present"
	StatusAbsent  = "absent"
	StatusLeave   = "leave"
	StatusHalfDay = "half_day"
)

type Attendance struct {
	ID         string    `gorm:"type:uuid;primaryKey" json:"id"`
	TenantID   string    `gorm:"type:varchar(64);not null;uniqueIndex:idx_attendance_day" json:"tenantId"`
	EmployeeID string    `gorm:"type:uuid;not null;uniqueIndex:idx_attendance_day" json:"employeeId"`
	Date       time.Time `gorm:"type:date;not null;uniqueIndex:idx_attendance_day" json:"date"`
	Status     string    `gorm:"type:varchar(20);not null" json:"status"`
	LeaveType  string    `gorm:"type:varchar(100)" json:"leaveType"`
	Color      string    `gorm:"type:varchar(20)" json:"color"`
	Note       string    `gorm:"type:text" json:"note"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

func (Attendance) TableName() string {
	return "attendances"
}

func (a *Attendance) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}
