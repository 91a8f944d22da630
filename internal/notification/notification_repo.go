package notification

import (
	"context"

	"gorm.io/gorm"
)

//go:generate mockgen -source=notification_repo.go -destination=mock/notification_repo_mock.go -package=mock

type Repository interface {
	On(db *gorm.DB) Repository

	Create(ctx context.Context, n *Notification) error
	ListByRecipient(ctx context.Context, tenantID, recipientID, role string, limit int) ([]Notification, error)
	MarkRead(ctx context.Context, tenantID, recipientID, role, id string) error
}

type repository struct {
	db *gorm.DB
}

func NewRepository() Repository {
	return &repository{}
}

func (r *repository) On(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, n *Notification) error {
	return r.db.WithContext(ctx).Create(n).Error
}

// recipientScope matches rows addressed to the employee directly plus
// role-wide rows for the role they hold.
func recipientScope(tenantID, recipientID, role string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if role == "" {
			return db.Where("tenant_id = ? AND recipient_id = ?", tenantID, recipientID)
		}
		return db.Where(
			"tenant_id = ? AND (recipient_id = ? OR (recipient_id = ? AND recipient_role = ?))",
			tenantID, recipientID, tenantID, role,
		)
	}
}

func (r *repository) ListByRecipient(ctx context.Context, tenantID, recipientID, role string, limit int) ([]Notification, error) {
	if limit <= 0 {
		limit = 50
	}

	var rows []Notification
	err := r.db.WithContext(ctx).
		Scopes(recipientScope(tenantID, recipientID, role)).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

func (r *repository) MarkRead(ctx context.Context, tenantID, recipientID, role, id string) error {
	return r.db.WithContext(ctx).
		Model(&Notification{}).
		Scopes(recipientScope(tenantID, recipientID, role)).
		Where("id = ?", id).
		Update("read", true).Error
}
