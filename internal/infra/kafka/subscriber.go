package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"log"

	"github.com/segmentio/kafka-go"
	"github.com/xavierca1/imersao-crm/internal/usecase"
)

type ChangeApplier interface {
	ApplyRemoteChange(ctx context.Context, change usecase.LeadChange) bool
	Origin() string
}

// Subscriber reads the change topic with a consumer group per host, so every
// instance sees every change and a restart resumes the same group.
type Subscriber struct {
	reader  *kafka.Reader
	applier ChangeApplier
}

// GroupID returns the configured consumer group or one derived from the host name.
func GroupID(configured, host string) string {
	if configured != "" {
		return configured
	}
	return "imersao-crm-" + host
}

func NewSubscriber(brokers []string, topic, groupID string, applier ChangeApplier) *Subscriber {
	return &Subscriber{
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers:     brokers,
			Topic:       topic,
			GroupID:     groupID,
			StartOffset: kafka.LastOffset,
		}),
		applier: applier,
	}
}

func (s *Subscriber) Start(ctx context.Context) error {
	defer s.reader.Close()

	log.Printf(" [*] Consumidor Kafka aguardando no tópico '%s'", s.reader.Config().Topic)
	for {
		m, err := s.reader.ReadMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || ctx.Err() != nil {
				return nil
			}
			return err
		}
		s.handle(ctx, m)
	}
}

func (s *Subscriber) handle(ctx context.Context, m kafka.Message) {
	if origin(m) == s.applier.Origin() {
		return
	}

	var change usecase.LeadChange
	if err := json.Unmarshal(m.Value, &change); err != nil {
		log.Printf("❌ [CHANGEFEED] JSON inválido na partição %d offset %d: %s", m.Partition, m.Offset, err)
		return
	}
	if s.applier.ApplyRemoteChange(ctx, change) {
		log.Printf("📥 [CHANGEFEED] %s do lead %s aplicado", change.Type, change.LeadID)
	}
}

func origin(m kafka.Message) string {
	for _, h := range m.Headers {
		if h.Key == "origin" {
			return string(h.Value)
		}
	}
	return ""
}
