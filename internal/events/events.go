// Package events defines the catalog event vocabulary and the kafka
// publisher the API uses to hand work to the worker.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	"feedsync/internal/logger"
)

const (
	TypeSyncRequested   = "sync.requested"
	TypeProductUpdated  = "product.updated"
	TypeMappingsChanged = "mappings.changed"
	TypeSettingsChanged = "settings.changed"
)

type Event struct {
	Type      string    `json:"type"`
	ShopID    string    `json:"shop_id"`
	ProductID string    `json:"product_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type Publisher struct {
	writer *kafka.Writer
	logger *logger.Logger
}

func NewPublisher(brokers, topic string, logger *logger.Logger) *Publisher {
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
	}
	return &Publisher{writer: writer, logger: logger}
}

// Publish sends one event, keyed by shop so a shop's events stay ordered.
func (p *Publisher) Publish(ctx context.Context, event Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}
	value, err := json.Marshal(event)
	if err != nil {
		return err
	}
	p.logger.Debug("publishing event %s for shop %s", event.Type, event.ShopID)
	return p.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.ShopID),
		Value: value,
	})
}

func (p *Publisher) Close() error {
	return p.writer.Close()
}
