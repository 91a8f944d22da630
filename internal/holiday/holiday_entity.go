package holiday

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Holiday struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	TenantID  string    `gorm:"type:varchar(64);not null;index" json:"tenantId"`
	Name      string    `gorm:"type:varchar(150);not null" json:"name"`
	Date      time.Time `gorm:"type:date;not null;index" json:"date"`
	Optional  bool      `gorm:"not null;default:false" json:"optional"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (Holiday) TableName() string {
	return "holidays"
}

func (h *Holiday) BeforeCreate(tx *gorm.DB) error {
	if h.ID == "" {
		h.ID = uuid.NewString()
	}
	return nil
}
