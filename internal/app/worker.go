package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/RushikJoshi/GT-HRMS-sub004/internal/messaging/kafka"
	"github.com/RushikJoshi/GT-HRMS-sub004/internal/messaging/kafka/producer"
	"github.com/RushikJoshi/GT-HRMS-sub004/internal/shared/connection"
)

// RunWorker drains the control-database outbox into Kafka until a
// shutdown signal arrives.
func RunWorker(logger *zap.Logger) error {
	controlDB, err := connection.ConnectGORMWithRetry(postgresConfigFromEnv(), 5)
	if err != nil {
		return err
	}
	defer func() {
		if sqlDB, err := controlDB.DB(); err == nil {
			sqlDB.Close()
		}
	}()

	broker := os.Getenv("KAFKA_BROKER")
	if broker == "" {
		return fmt.Errorf("KAFKA_BROKER is required")
	}

	writer, err := connection.ConnectKafkaWithRetry(broker, 5)
	if err != nil {
		return err
	}
	defer writer.Close()

	worker := producer.NewWorker(
		kafka.NewOutboxRepository(controlDB),
		producer.NewPublisher(writer),
		logger,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() {
		done <- worker.Run(ctx)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-quit:
		logger.Info("worker shutting down", zap.String("signal", sig.String()))
		cancel()
		<-done
		return nil
	case err := <-done:
		if errors.Is(err, context.Canceled) {
			return nil
		}
		return err
	}
}
