package notification

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Notification is one inbox row. Most rows target a single employee;
// rows addressed to a whole role (HR review queue) carry the tenant id
// as recipient plus a RecipientRole.
type Notification struct {
	ID            string    `gorm:"type:uuid;primaryKey" json:"id"`
	TenantID      string    `gorm:"type:varchar(64);not null;index" json:"tenantId"`
	RecipientID   string    `gorm:"type:varchar(64);not null;index" json:"recipientId"`
	RecipientRole string    `gorm:"type:varchar(50)" json:"recipientRole,omitempty"`
	Title         string    `gorm:"type:varchar(200);not null" json:"title"`
	Message       string    `gorm:"type:text" json:"message"`
	Kind          string    `gorm:"type:varchar(50);not null" json:"kind"`
	Read          bool      `gorm:"not null;default:false" json:"read"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

func (Notification) TableName() string {
	return "notifications"
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	return nil
}
