package settings

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CompanySettings is a single row per tenant. LeaveCycleStartMonth is
// zero based (0 = January) so a fiscal-year tenant stores 3 for April.
type CompanySettings struct {
	ID                   string    `gorm:"type:uuid;primaryKey" json:"id"`
	TenantID             string    `gorm:"type:varchar(64);not null;uniqueIndex" json:"tenantId"`
	LeaveCycleStartMonth int       `gorm:"not null;default:0" json:"leaveCycleStartMonth"`
	WeeklyOffDays        []int     `gorm:"type:jsonb;serializer:json" json:"weeklyOffDays"`
	CreatedAt            time.Time `json:"createdAt"`
	UpdatedAt            time.Time `json:"updatedAt"`
}

func (CompanySettings) TableName() string {
	return "company_settings"
}

func (s *CompanySettings) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

// Defaults returns the settings applied when a tenant has never saved
// any: calendar-year cycle with Sunday off.
func Defaults(tenantID string) *CompanySettings {
	return &CompanySettings{
		TenantID:             tenantID,
		LeaveCycleStartMonth: 0,
		WeeklyOffDays:        []int{0},
	}
}
