package audit

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/eduardofloriani/serverless-ecommerce/pkg/models"
)

// mockAppender implements Appender for testing.
type mockAppender struct {
	appended []appendedEvent
	err      error
}

type appendedEvent struct {
	PK        string
	SK        string
	Item      []byte
	ExpiresAt int64
}

func (m *mockAppender) Append(_ context.Context, pk, sk string, item []byte, expiresAt int64) error {
	if m.err != nil {
		return m.err
	}
	m.appended = append(m.appended, appendedEvent{PK: pk, SK: sk, Item: item, ExpiresAt: expiresAt})
	return nil
}

func TestStoreSink_AppendsBuiltEvent(t *testing.T) {
	app := &mockAppender{}
	sink := StoreSink{Store: app}

	err := sink.Deliver(context.Background(), Entry{
		EntityType: models.EntityProduct,
		EntityCode: "T-01",
		EventType:  models.EventProductUpdated,
		Email:      "admin@example.com",
		RequestID:  "corr-9",
		Info:       models.ProductEventInfo{ProductID: "p1", Price: 99.9},
	})
	if err != nil {
		t.Fatalf("deliver failed: %v", err)
	}

	if len(app.appended) != 1 {
		t.Fatalf("expected 1 appended event, got %d", len(app.appended))
	}
	got := app.appended[0]
	if got.PK != "#product_T-01" {
		t.Errorf("PK: expected #product_T-01, got %s", got.PK)
	}

	var ev models.Event
	if err := json.Unmarshal(got.Item, &ev); err != nil {
		t.Fatalf("failed to unmarshal stored event: %v", err)
	}
	if ev.SK != got.SK {
		t.Errorf("item SK %q does not match append SK %q", ev.SK, got.SK)
	}
	if ev.TTL != got.ExpiresAt {
		t.Errorf("item TTL %d does not match append expiry %d", ev.TTL, got.ExpiresAt)
	}
	if ev.TTL != ev.CreatedAt/1000+300 {
		t.Errorf("expected ttl createdAt/1000+300, got createdAt=%d ttl=%d", ev.CreatedAt, ev.TTL)
	}
	if ev.EventType != models.EventProductUpdated {
		t.Errorf("unexpected event type: %s", ev.EventType)
	}
}

func TestStoreSink_RetryGetsFreshSortKey(t *testing.T) {
	app := &mockAppender{}
	sink := StoreSink{Store: app}
	entry := Entry{
		EntityType: models.EntityOrder,
		EntityCode: "o1",
		EventType:  models.EventOrderCreated,
	}

	if err := sink.Deliver(context.Background(), entry); err != nil {
		t.Fatalf("deliver failed: %v", err)
	}
	if err := sink.Deliver(context.Background(), entry); err != nil {
		t.Fatalf("deliver failed: %v", err)
	}

	if len(app.appended) != 2 {
		t.Fatalf("expected 2 appended events, got %d", len(app.appended))
	}
	// Same partition, and both sort keys carry the event type prefix. The
	// millisecond timestamps may or may not collide; a collision is
	// overwrite-safe by design of the key scheme.
	if app.appended[0].PK != app.appended[1].PK {
		t.Errorf("expected same partition key, got %s and %s", app.appended[0].PK, app.appended[1].PK)
	}
}

// mockPublisher implements Publisher for testing.
type mockPublisher struct {
	published []publishedMsg
	err       error
}

type publishedMsg struct {
	RoutingKey    string
	Body          []byte
	CorrelationID string
}

func (m *mockPublisher) Publish(routingKey string, body []byte, correlationID string) error {
	if m.err != nil {
		return m.err
	}
	m.published = append(m.published, publishedMsg{RoutingKey: routingKey, Body: body, CorrelationID: correlationID})
	return nil
}

func TestQueueSink_PublishesEntry(t *testing.T) {
	pub := &mockPublisher{}
	sink := QueueSink{Publisher: pub}

	err := sink.Deliver(context.Background(), Entry{
		EntityType: models.EntityProduct,
		EntityCode: "T-01",
		EventType:  models.EventProductDeleted,
		RequestID:  "corr-7",
		Info:       models.ProductEventInfo{ProductID: "p1", Price: 10},
	})
	if err != nil {
		t.Fatalf("deliver failed: %v", err)
	}

	if len(pub.published) != 1 {
		t.Fatalf("expected 1 published message, got %d", len(pub.published))
	}
	if pub.published[0].RoutingKey != "product.deleted" {
		t.Errorf("expected routing key product.deleted, got %s", pub.published[0].RoutingKey)
	}
	if pub.published[0].CorrelationID != "corr-7" {
		t.Errorf("expected correlation ID corr-7, got %s", pub.published[0].CorrelationID)
	}

	var e Entry
	if err := json.Unmarshal(pub.published[0].Body, &e); err != nil {
		t.Fatalf("failed to unmarshal published entry: %v", err)
	}
	if e.EntityCode != "T-01" || e.EventType != models.EventProductDeleted {
		t.Errorf("unexpected entry: %+v", e)
	}
}

func TestRoutingKey(t *testing.T) {
	tests := []struct {
		et       models.EventType
		expected string
	}{
		{models.EventProductCreated, "product.created"},
		{models.EventProductUpdated, "product.updated"},
		{models.EventProductDeleted, "product.deleted"},
		{models.EventOrderCreated, "order.created"},
		{models.EventOrderDeleted, "order.deleted"},
	}
	for _, tt := range tests {
		if got := RoutingKey(tt.et); got != tt.expected {
			t.Errorf("%s: expected %q, got %q", tt.et, tt.expected, got)
		}
	}
}
