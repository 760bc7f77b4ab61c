package kafka

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"
	"github.com/xavierca1/imersao-crm/internal/usecase"
)

type Publisher struct {
	writer *kafka.Writer
}

func NewPublisher(brokers []string, topic string) *Publisher {
	return &Publisher{
		writer: &kafka.Writer{
			Addr:     kafka.TCP(brokers...),
			Topic:    topic,
			Balancer: &kafka.Hash{},
		},
	}
}

// PublishLeadChange keys messages by lead id so changes to one lead stay ordered.
func (p *Publisher) PublishLeadChange(ctx context.Context, change usecase.LeadChange) error {
	msg, err := json.Marshal(change)
	if err != nil {
		return fmt.Errorf("erro ao converter evento: %w", err)
	}

	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(change.LeadID),
		Value: msg,
		Time:  change.At,
		Headers: []kafka.Header{
			{Key: "origin", Value: []byte(change.Origin)},
		},
	})
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}
