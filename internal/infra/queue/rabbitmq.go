package queue

import (
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	ExchangeName = "ex.leads.changes" // fanout: toda instância recebe tudo
	DLXName      = "ex.leads.dlx"     // Dead Letter Exchange
	DLQName      = "q.leads.changes.dlq"
	RoutingKey   = "k.lead.change"
)

type RabbitMQ struct {
	Conn *amqp.Connection
	Ch   *amqp.Channel
	// Fila exclusiva desta instância, presa na exchange de mudanças.
	QueueName string
}

func NewRabbitMQ(url, instanceID string) (*RabbitMQ, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("falha ao conectar no RabbitMQ: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("falha ao abrir canal: %w", err)
	}

	queueName := "q.leads.changes." + instanceID
	if err := setupTopology(ch, queueName); err != nil {
		conn.Close()
		return nil, err
	}

	return &RabbitMQ{Conn: conn, Ch: ch, QueueName: queueName}, nil
}

func setupTopology(ch *amqp.Channel, queueName string) error {
	if err := ch.ExchangeDeclare(DLXName, "direct", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declarar DLX: %w", err)
	}
	if _, err := ch.QueueDeclare(DLQName, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declarar DLQ: %w", err)
	}
	if err := ch.QueueBind(DLQName, RoutingKey, DLXName, false, nil); err != nil {
		return fmt.Errorf("bind DLQ: %w", err)
	}

	if err := ch.ExchangeDeclare(ExchangeName, "fanout", true, false, false, false, nil); err != nil {
		return fmt.Errorf("declarar exchange: %w", err)
	}

	args := amqp.Table{
		"x-dead-letter-exchange":    DLXName,    // Se der Nack, manda pra DLX
		"x-dead-letter-routing-key": RoutingKey, // Com essa chave
	}
	// Fila some junto com a instância: eventos perdidos são recuperados no próximo Load.
	if _, err := ch.QueueDeclare(queueName, false, true, true, false, args); err != nil {
		return fmt.Errorf("declarar fila da instância: %w", err)
	}
	if err := ch.QueueBind(queueName, "", ExchangeName, false, nil); err != nil {
		return fmt.Errorf("bind fila da instância: %w", err)
	}
	return nil
}

func (r *RabbitMQ) Close() error {
	if r.Ch != nil {
		_ = r.Ch.Close()
	}
	return r.Conn.Close()
}
