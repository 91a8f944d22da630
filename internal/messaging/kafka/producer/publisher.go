package producer

import (
	"context"

	kafkago "github.com/segmentio/kafka-go"
)

//go:generate mockgen -source=publisher.go -destination=mock/publisher_mock.go -package=mock

// Publisher is the slice of kafka-go the worker needs.
type Publisher interface {
	Publish(ctx context.Context, topic, key string, payload []byte) error
}

type writerPublisher struct {
	writer *kafkago.Writer
}

func NewPublisher(writer *kafkago.Writer) Publisher {
	return &writerPublisher{writer: writer}
}

func (p *writerPublisher) Publish(ctx context.Context, topic, key string, payload []byte) error {
	return p.writer.WriteMessages(ctx, kafkago.Message{
		Topic: topic,
		Key:   []byte(key),
		Value: payload,
	})
}
