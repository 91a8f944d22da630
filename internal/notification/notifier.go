package notification

import (
	"context"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/RushikJoshi/GT-HRMS-sub004/internal/events"
	"github.com/RushikJoshi/GT-HRMS-sub004/internal/messaging/kafka"
)

// Notifier fans a leave lifecycle change out to the recipient's inbox
// and the event bus. Delivery is best effort: both writes happen after
// the business transaction committed, and failures are only logged.
type Notifier struct {
	notifications Repository
	outbox        kafka.OutboxRepository
	controlDB     *gorm.DB
	logger        *zap.Logger
}

func NewNotifier(
	notifications Repository,
	outbox kafka.OutboxRepository,
	controlDB *gorm.DB,
	logger *zap.Logger,
) *Notifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Notifier{
		notifications: notifications,
		outbox:        outbox,
		controlDB:     controlDB,
		logger:        logger.Named("notification.notifier"),
	}
}

// Notify stores the inbox row on the tenant handle and enqueues the
// event on the control database for the outbox worker.
func (n *Notifier) Notify(ctx context.Context, tenantDB *gorm.DB, note *Notification, topic string, event *events.LeaveEvent) {
	if note != nil && note.RecipientID != "" {
		if err := n.notifications.On(tenantDB).Create(ctx, note); err != nil {
			n.logger.Warn("failed to store notification",
				zap.String("tenant_id", note.TenantID),
				zap.String("recipient_id", note.RecipientID),
				zap.Error(err),
			)
		}
	}

	if event == nil || n.outbox == nil || n.controlDB == nil {
		return
	}

	outboxEvent, err := kafka.NewOutboxEvent(topic, event.TenantID, event)
	if err != nil {
		n.logger.Warn("failed to encode leave event",
			zap.String("topic", topic),
			zap.Error(err),
		)
		return
	}

	if err := n.outbox.On(n.controlDB).Enqueue(ctx, outboxEvent); err != nil {
		n.logger.Warn("failed to enqueue leave event",
			zap.String("topic", topic),
			zap.String("tenant_id", event.TenantID),
			zap.Error(err),
		)
	}
}
