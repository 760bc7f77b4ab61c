package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/xavierca1/imersao-crm/internal/usecase"
)

// ChangeApplier is the side of the LeadManager the consumer needs.
type ChangeApplier interface {
	ApplyRemoteChange(ctx context.Context, change usecase.LeadChange) bool
	Origin() string
}

type Worker struct {
	Channel *amqp.Channel
	Applier ChangeApplier
}

func NewWorker(ch *amqp.Channel, applier ChangeApplier) *Worker {
	return &Worker{Channel: ch, Applier: applier}
}

// Start consumes the instance queue until ctx is cancelled or the channel closes.
func (w *Worker) Start(ctx context.Context, queueName string) error {
	msgs, err := w.Channel.Consume(
		queueName, // fila
		"",        // consumer
		false,     // auto-ack (manual é mais seguro)
		true,      // exclusive
		false,     // no-local
		false,     // no-wait
		nil,       // args
	)
	if err != nil {
		return fmt.Errorf("falha ao registrar consumidor RabbitMQ: %w", err)
	}

	log.Printf(" [*] Consumidor de mudanças aguardando na fila '%s'", queueName)
	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				log.Println("⚠️ Canal do RabbitMQ fechado, consumidor encerrado")
				return nil
			}
			w.handle(ctx, d)
		}
	}
}

func (w *Worker) handle(ctx context.Context, d amqp.Delivery) {
	change, err := decodeChange(d.Body)
	if err != nil {
		log.Printf("❌ [CHANGEFEED] JSON inválido: %s", err)
		// Mensagem podre. Rejeita sem requeue para não travar a fila.
		_ = d.Nack(false, false)
		return
	}

	if change.Origin == w.Applier.Origin() {
		_ = d.Ack(false)
		return
	}

	if w.Applier.ApplyRemoteChange(ctx, change) {
		log.Printf("📥 [CHANGEFEED] %s do lead %s aplicado", change.Type, change.LeadID)
	}
	_ = d.Ack(false)
}

func decodeChange(body []byte) (usecase.LeadChange, error) {
	var change usecase.LeadChange
	if err := json.Unmarshal(body, &change); err != nil {
		return usecase.LeadChange{}, err
	}
	if change.Type == "" {
		return usecase.LeadChange{}, fmt.Errorf("evento sem tipo")
	}
	return change, nil
}
