// Package events publishes order lifecycle events to Kafka.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/shopspring/decimal"

	"github.com/Emma781227/Ble-dor/internal/models"
)

const (
	TypeOrderCreated       = "order.created"
	TypeOrderStatusChanged = "order.status_changed"
)

// OrderEvent is the JSON payload of every message on the orders topic.
type OrderEvent struct {
	Type           string             `json:"type"`
	OrderID        string             `json:"order_id"`
	TicketNumber   string             `json:"ticket_number"`
	Status         models.OrderStatus `json:"status"`
	PreviousStatus models.OrderStatus `json:"previous_status,omitempty"`
	Total          decimal.Decimal    `json:"total"`
	ActorID        string             `json:"actor_id,omitempty"`
	OccurredAt     time.Time          `json:"occurred_at"`
}

// Writer is the subset of *kafka.Writer the publisher needs.
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaPublisher struct {
	Writer Writer
}

func NewKafkaPublisher(writer Writer) *KafkaPublisher {
	return &KafkaPublisher{Writer: writer}
}

// NewKafkaWriter builds a writer for topic. Messages with the same key
// (order id) land on the same partition, so per-order ordering holds.
func NewKafkaWriter(brokers []string, topic string) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafka.Hash{},
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}
}

func (p *KafkaPublisher) PublishOrderEvent(ctx context.Context, evt OrderEvent) error {
	payload, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", evt.Type, err)
	}
	return p.Writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(evt.OrderID),
		Value: payload,
		Headers: []kafka.Header{
			{Key: "type", Value: []byte(evt.Type)},
		},
	})
}

func (p *KafkaPublisher) Close() error {
	return p.Writer.Close()
}
