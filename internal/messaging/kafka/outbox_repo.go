package kafka

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	OutboxPending   = "pending"
	OutboxPublished = "published"
	OutboxFailed    = "failed"
)

// OutboxEvent lives in the control database. Rows are written in the
// same process that handles the request and drained asynchronously by
// the producer worker, so losing Kafka never loses an event.
type OutboxEvent struct {
	ID          string     `gorm:"type:uuid;primaryKey"`
	Topic       string     `gorm:"type:varchar(150);not null;index"`
	Key         string     `gorm:"type:varchar(150)"`
	Payload     []byte     `gorm:"type:jsonb;not null"`
	Status      string     `gorm:"type:varchar(20);not null;default:pending;index"`
	Attempts    int        `gorm:"not null;default:0"`
	CreatedAt   time.Time
	PublishedAt *time.Time
}

func (OutboxEvent) TableName() string {
	return "outbox_events"
}

func (e *OutboxEvent) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	return nil
}

// NewOutboxEvent marshals the payload up front so enqueueing inside a
// transaction cannot fail on serialization midway.
func NewOutboxEvent(topic, key string, payload any) (*OutboxEvent, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return &OutboxEvent{
		Topic:   topic,
		Key:     key,
		Payload: raw,
		Status:  OutboxPending,
	}, nil
}

//go:generate mockgen -source=outbox_repo.go -destination=mock/outbox_repo_mock.go -package=mock

type OutboxRepository interface {
	On(db *gorm.DB) OutboxRepository

	Enqueue(ctx context.Context, event *OutboxEvent) error
	FetchPending(ctx context.Context, limit int) ([]OutboxEvent, error)
	MarkPublished(ctx context.Context, ids []string) error
	// RecordFailure bumps the attempt counter; the event stays pending
	// until the attempt cap is hit, then it is parked as failed.
	RecordFailure(ctx context.Context, id string) error
}

const maxPublishAttempts = 5

type outboxRepository struct {
	db *gorm.DB
}

func NewOutboxRepository(db *gorm.DB) OutboxRepository {
	return &outboxRepository{db: db}
}

func (r *outboxRepository) On(db *gorm.DB) OutboxRepository {
	return &outboxRepository{db: db}
}

func (r *outboxRepository) Enqueue(ctx context.Context, event *OutboxEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *outboxRepository) FetchPending(ctx context.Context, limit int) ([]OutboxEvent, error) {
	var events []OutboxEvent
	err := r.db.WithContext(ctx).
		Where("status = ?", OutboxPending).
		Order("created_at ASC").
		Limit(limit).
		Find(&events).Error
	return events, err
}

func (r *outboxRepository) MarkPublished(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	now := time.Now()
	return r.db.WithContext(ctx).
		Model(&OutboxEvent{}).
		Where("id IN ?", ids).
		Updates(map[string]any{
			"status":       OutboxPublished,
			"published_at": now,
		}).Error
}

func (r *outboxRepository) RecordFailure(ctx context.Context, id string) error {
	return r.db.WithContext(ctx).
		Model(&OutboxEvent{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"attempts": gorm.Expr("attempts + 1"),
			"status": gorm.Expr(
				"CASE WHEN attempts + 1 >= ? THEN ? ELSE ? END",
				maxPublishAttempts, OutboxFailed, OutboxPending,
			),
		}).Error
}
