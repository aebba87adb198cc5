package audit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/eduardofloriani/serverless-ecommerce/pkg/models"
)

func TestBuildEvent_Keys(t *testing.T) {
	now := time.UnixMilli(1700000000123)
	e := Entry{
		EntityType: models.EntityProduct,
		EntityCode: "T-01",
		EventType:  models.EventProductCreated,
		Email:      "admin@example.com",
		RequestID:  "corr-1",
		Info:       models.ProductEventInfo{ProductID: "p1", Price: 150},
	}

	ev, err := BuildEvent(e, now)
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}

	if ev.PK != "#product_T-01" {
		t.Errorf("PK: expected #product_T-01, got %s", ev.PK)
	}
	if ev.SK != "PRODUCT_CREATED#1700000000123" {
		t.Errorf("SK: expected PRODUCT_CREATED#1700000000123, got %s", ev.SK)
	}
	if ev.CreatedAt != 1700000000123 {
		t.Errorf("CreatedAt: expected 1700000000123, got %d", ev.CreatedAt)
	}
	if ev.Email != "admin@example.com" {
		t.Errorf("Email: expected admin@example.com, got %s", ev.Email)
	}
	if ev.RequestID != "corr-1" {
		t.Errorf("RequestID: expected corr-1, got %s", ev.RequestID)
	}

	var info models.ProductEventInfo
	if err := json.Unmarshal(ev.Info, &info); err != nil {
		t.Fatalf("failed to unmarshal info: %v", err)
	}
	if info.ProductID != "p1" || info.Price != 150 {
		t.Errorf("unexpected info: %+v", info)
	}
}

func TestBuildEvent_TTLIsCreatedAtPlusRetention(t *testing.T) {
	// Sample a few creation times; the invariant must hold for all of them.
	for _, ms := range []int64{0, 999, 1000, 1700000000123, 1999999999999} {
		ev, err := BuildEvent(Entry{
			EntityType: models.EntityOrder,
			EntityCode: "o1",
			EventType:  models.EventOrderCreated,
		}, time.UnixMilli(ms))
		if err != nil {
			t.Fatalf("build failed: %v", err)
		}
		want := ms/1000 + 300
		if ev.TTL != want {
			t.Errorf("createdAt=%d: expected ttl %d, got %d", ms, want, ev.TTL)
		}
	}
}

func TestBuildEvent_OrderPartition(t *testing.T) {
	ev, err := BuildEvent(Entry{
		EntityType: models.EntityOrder,
		EntityCode: "order-42",
		EventType:  models.EventOrderDeleted,
	}, time.UnixMilli(1))
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	if ev.PK != "#order_order-42" {
		t.Errorf("PK: expected #order_order-42, got %s", ev.PK)
	}
	if ev.SK != "ORDER_DELETED#1" {
		t.Errorf("SK: expected ORDER_DELETED#1, got %s", ev.SK)
	}
}

// mockSink implements Sink for testing.
type mockSink struct {
	mu        sync.Mutex
	delivered []Entry
	failures  int // fail this many deliveries before succeeding
	attempts  int
}

func (m *mockSink) Deliver(_ context.Context, e Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.attempts++
	if m.attempts <= m.failures {
		return errors.New("sink unavailable")
	}
	m.delivered = append(m.delivered, e)
	return nil
}

func (m *mockSink) snapshot() (int, []Entry) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.attempts, append([]Entry(nil), m.delivered...)
}

func TestRecorder_DeliversEntry(t *testing.T) {
	sink := &mockSink{}
	r := NewRecorder(sink)
	r.Start()

	r.Record(Entry{
		EntityType: models.EntityProduct,
		EntityCode: "T-01",
		EventType:  models.EventProductCreated,
		RequestID:  "corr-1",
	})
	r.Close()

	_, delivered := sink.snapshot()
	if len(delivered) != 1 {
		t.Fatalf("expected 1 delivered entry, got %d", len(delivered))
	}
	if delivered[0].EntityCode != "T-01" {
		t.Errorf("unexpected entity code: %s", delivered[0].EntityCode)
	}
}

func TestRecorder_RetriesFailedDelivery(t *testing.T) {
	sink := &mockSink{failures: 2}
	r := NewRecorder(sink)
	r.Start()

	r.Record(Entry{EntityType: models.EntityProduct, EntityCode: "T-01", EventType: models.EventProductCreated})
	r.Close()

	attempts, delivered := sink.snapshot()
	if attempts != 3 {
		t.Errorf("expected 3 attempts, got %d", attempts)
	}
	if len(delivered) != 1 {
		t.Fatalf("expected 1 delivered entry after retries, got %d", len(delivered))
	}
}

func TestRecorder_GivesUpAfterMaxAttempts(t *testing.T) {
	sink := &mockSink{failures: 100}
	r := NewRecorder(sink)
	r.Start()

	r.Record(Entry{EntityType: models.EntityProduct, EntityCode: "T-01", EventType: models.EventProductDeleted})
	r.Close()

	attempts, delivered := sink.snapshot()
	if attempts != deliverAttempts {
		t.Errorf("expected %d attempts, got %d", deliverAttempts, attempts)
	}
	if len(delivered) != 0 {
		t.Errorf("expected no delivered entries, got %d", len(delivered))
	}
}

func TestRecorder_RecordAfterCloseIsDropped(t *testing.T) {
	sink := &mockSink{}
	r := NewRecorder(sink)
	r.Start()
	r.Close()

	// Must not panic or block.
	r.Record(Entry{EntityType: models.EntityOrder, EntityCode: "o1", EventType: models.EventOrderCreated})

	_, delivered := sink.snapshot()
	if len(delivered) != 0 {
		t.Errorf("expected no delivered entries, got %d", len(delivered))
	}
}

func TestRecorder_DrainsAllEntriesOnClose(t *testing.T) {
	sink := &mockSink{}
	r := NewRecorder(sink)
	r.Start()

	for i := 0; i < 20; i++ {
		r.Record(Entry{
			EntityType: models.EntityOrder,
			EntityCode: fmt.Sprintf("o%d", i),
			EventType:  models.EventOrderCreated,
		})
	}
	r.Close()

	_, delivered := sink.snapshot()
	if len(delivered) != 20 {
		t.Errorf("expected 20 delivered entries, got %d", len(delivered))
	}
}
