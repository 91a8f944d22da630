package producer

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/RushikJoshi/GT-HRMS-sub004/internal/messaging/kafka"
)

const (
	defaultBatchSize    = 100
	defaultPollInterval = 2 * time.Second
)

// Worker drains the outbox into Kafka. It is safe to run exactly one
// instance; the batch is fetched, published in order and marked in one
// pass, so a crash replays at-least-once.
type Worker struct {
	outbox    kafka.OutboxRepository
	publisher Publisher
	limiter   *rate.Limiter
	logger    *zap.Logger

	batchSize    int
	pollInterval time.Duration
}

func NewWorker(outbox kafka.OutboxRepository, publisher Publisher, logger *zap.Logger) *Worker {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Worker{
		outbox:    outbox,
		publisher: publisher,
		// 200 events/s is far above normal traffic; the limiter only
		// matters when replaying a large backlog.
		limiter:      rate.NewLimiter(rate.Limit(200), 50),
		logger:       logger.Named("kafka.outbox_worker"),
		batchSize:    defaultBatchSize,
		pollInterval: defaultPollInterval,
	}
}

// Run blocks until ctx is cancelled.
func (w *Worker) Run(ctx context.Context) error {
	w.logger.Info("outbox worker started",
		zap.Int("batch_size", w.batchSize),
		zap.Duration("poll_interval", w.pollInterval),
	)

	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("outbox worker stopping")
			return ctx.Err()
		case <-ticker.C:
			if err := w.drainOnce(ctx); err != nil {
				w.logger.Error("outbox drain failed", zap.Error(err))
			}
		}
	}
}

func (w *Worker) drainOnce(ctx context.Context) error {
	events, err := w.outbox.FetchPending(ctx, w.batchSize)
	if err != nil {
		return err
	}
	if len(events) == 0 {
		return nil
	}

	published := make([]string, 0, len(events))
	for _, ev := range events {
		if err := w.limiter.Wait(ctx); err != nil {
			break
		}

		if err := w.publisher.Publish(ctx, ev.Topic, ev.Key, ev.Payload); err != nil {
			w.logger.Warn("publish failed",
				zap.String("event_id", ev.ID),
				zap.String("topic", ev.Topic),
				zap.Int("attempts", ev.Attempts),
				zap.Error(err),
			)
			if markErr := w.outbox.RecordFailure(ctx, ev.ID); markErr != nil {
				w.logger.Error("failed to record publish failure",
					zap.String("event_id", ev.ID),
					zap.Error(markErr),
				)
			}
			continue
		}

		published = append(published, ev.ID)
	}

	if err := w.outbox.MarkPublished(ctx, published); err != nil {
		return err
	}

	w.logger.Debug("outbox batch drained",
		zap.Int("fetched", len(events)),
		zap.Int("published", len(published)),
	)
	return nil
}
