package audit

import (
	"context"
	"encoding/json"
	"log"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Consumer appends audit entries delivered over AMQP to the event store.
// Redelivery after a failed ack writes a second record under a fresh sort
// key, which is acceptable: the audit trail needs at least one record per real
// mutation, not exactly one.
type Consumer struct {
	store Appender
}

// NewConsumer creates a consumer writing to the given event store.
func NewConsumer(store Appender) *Consumer {
	return &Consumer{store: store}
}

// HandleMessage processes one delivered audit entry.
func (c *Consumer) HandleMessage(delivery amqp.Delivery) error {
	var e Entry
	if err := json.Unmarshal(delivery.Body, &e); err != nil {
		log.Printf("[AuditConsumer] Failed to unmarshal entry: %v correlation_id=%s", err, delivery.CorrelationId)
		return err
	}

	ev, err := BuildEvent(e, time.Now())
	if err != nil {
		log.Printf("[AuditConsumer] Failed to build event: %v correlation_id=%s", err, e.RequestID)
		return err
	}
	item, err := json.Marshal(ev)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), deliverTimeout)
	defer cancel()
	if err := c.store.Append(ctx, ev.PK, ev.SK, item, ev.TTL); err != nil {
		log.Printf("[AuditConsumer] Failed to append event: %v pk=%s sk=%s correlation_id=%s",
			err, ev.PK, ev.SK, e.RequestID)
		return err
	}

	log.Printf("[AuditConsumer] Event recorded: pk=%s sk=%s correlation_id=%s", ev.PK, ev.SK, e.RequestID)
	return nil
}
