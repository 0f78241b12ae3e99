package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/pubsub"

	"github.com/hudemas/api/internal/services"
)

// PubSubFiscalEventPublisher publishes fiscal document events to a Pub/Sub topic.
type PubSubFiscalEventPublisher struct {
	topic   *pubsub.Topic
	marshal func(any) ([]byte, error)
}

// NewPubSubFiscalEventPublisher constructs a Pub/Sub backed fiscal event publisher.
func NewPubSubFiscalEventPublisher(topic *pubsub.Topic) (*PubSubFiscalEventPublisher, error) {
	if topic == nil {
		return nil, errors.New("pubsub fiscal event publisher: topic is required")
	}
	return &PubSubFiscalEventPublisher{
		topic:   topic,
		marshal: json.Marshal,
	}, nil
}

type fiscalEventMessage struct {
	Type           string            `json:"type"`
	OrderID        string            `json:"orderId,omitempty"`
	DocumentNumber string            `json:"documentNumber,omitempty"`
	OccurredAt     time.Time         `json:"occurredAt"`
	Attributes     map[string]string `json:"attributes,omitempty"`
}

// Publish enqueues the fiscal event on the configured topic.
func (p *PubSubFiscalEventPublisher) Publish(ctx context.Context, event services.FiscalEvent) error {
	if p == nil || p.topic == nil {
		return errors.New("pubsub fiscal event publisher: not initialised")
	}
	if strings.TrimSpace(event.Type) == "" {
		return errors.New("pubsub fiscal event publisher: event type is required")
	}

	data, err := p.marshal(fiscalEventMessage{
		Type:           event.Type,
		OrderID:        event.OrderID,
		DocumentNumber: event.DocumentNumber,
		OccurredAt:     event.OccurredAt.UTC(),
		Attributes:     event.Attributes,
	})
	if err != nil {
		return fmt.Errorf("marshal fiscal event: %w", err)
	}

	attrs := make(map[string]string)
	setAttr(attrs, "type", event.Type)
	setAttr(attrs, "orderId", event.OrderID)
	setAttr(attrs, "documentNumber", event.DocumentNumber)

	result := p.topic.Publish(ctx, &pubsub.Message{
		Data:       data,
		Attributes: attrs,
	})

	if _, err := result.Get(ctx); err != nil {
		return fmt.Errorf("publish fiscal event: %w", err)
	}
	return nil
}

func setAttr(attrs map[string]string, key string, value string) {
	if v := strings.TrimSpace(value); v != "" {
		attrs[key] = v
	}
}
