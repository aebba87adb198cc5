package audit

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/eduardofloriani/serverless-ecommerce/pkg/models"
)

// Sink moves an entry one hop toward the event store.
type Sink interface {
	Deliver(ctx context.Context, e Entry) error
}

// Appender is the event store contract: append-only, keyed by the composite
// (partitionKey, sortKey) pair, reaped by the store once expiresAt passes.
type Appender interface {
	Append(ctx context.Context, partitionKey, sortKey string, item []byte, expiresAt int64) error
}

// StoreSink materialises entries and appends them straight to the event store.
type StoreSink struct {
	Store Appender
}

// Deliver implements Sink. The event is built per call, so a retry writes
// under a fresh sort key.
func (s StoreSink) Deliver(ctx context.Context, e Entry) error {
	ev, err := BuildEvent(e, time.Now())
	if err != nil {
		return err
	}
	item, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return s.Store.Append(ctx, ev.PK, ev.SK, item, ev.TTL)
}

// Publisher matches the rabbitmq publisher used for the AMQP audit transport.
type Publisher interface {
	Publish(routingKey string, body []byte, correlationID string) error
}

// QueueSink publishes entries to the audit exchange; the audit consumer
// materialises and appends them on the other side.
type QueueSink struct {
	Publisher Publisher
}

// Deliver implements Sink.
func (s QueueSink) Deliver(_ context.Context, e Entry) error {
	body, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return s.Publisher.Publish(RoutingKey(e.EventType), body, e.RequestID)
}

// RoutingKey maps an event type to its AMQP routing key,
// e.g. PRODUCT_CREATED -> "product.created".
func RoutingKey(t models.EventType) string {
	return strings.ReplaceAll(strings.ToLower(string(t)), "_", ".")
}
