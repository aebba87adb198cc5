package store

import (
	"context"
	"errors"
	"testing"
)

func TestMemoryGet_NotFound(t *testing.T) {
	s := NewMemory()
	_, err := s.Get(context.Background(), "product#missing")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestMemoryPutGet(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	if err := s.Put(ctx, "product#p1", []byte(`{"id":"p1"}`), false); err != nil {
		t.Fatalf("put failed: %v", err)
	}

	item, err := s.Get(ctx, "product#p1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if string(item) != `{"id":"p1"}` {
		t.Errorf("unexpected item: %s", item)
	}
}

func TestMemoryPut_IfAbsent(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	if err := s.Put(ctx, "product-code#T-01", []byte(`{"id":"p1"}`), true); err != nil {
		t.Fatalf("first conditional put failed: %v", err)
	}
	err := s.Put(ctx, "product-code#T-01", []byte(`{"id":"p2"}`), true)
	if !errors.Is(err, ErrConditionFailed) {
		t.Fatalf("expected ErrConditionFailed, got %v", err)
	}

	// The original item must be untouched.
	item, err := s.Get(ctx, "product-code#T-01")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if string(item) != `{"id":"p1"}` {
		t.Errorf("conditional put overwrote item: %s", item)
	}
}

func TestMemoryPut_Overwrite(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	if err := s.Put(ctx, "product#p1", []byte(`{"price":1}`), false); err != nil {
		t.Fatalf("put failed: %v", err)
	}
	if err := s.Put(ctx, "product#p1", []byte(`{"price":2}`), false); err != nil {
		t.Fatalf("overwrite failed: %v", err)
	}

	item, _ := s.Get(ctx, "product#p1")
	if string(item) != `{"price":2}` {
		t.Errorf("expected overwritten item, got %s", item)
	}
}

func TestMemoryDelete(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	if err := s.Put(ctx, "order#a@b.com#o1", []byte(`{}`), false); err != nil {
		t.Fatalf("put failed: %v", err)
	}
	if err := s.Delete(ctx, "order#a@b.com#o1"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	err := s.Delete(ctx, "order#a@b.com#o1")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestMemoryQuery_Prefix(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	_ = s.Put(ctx, OrderKey("a@b.com", "o2"), []byte(`{"id":"o2"}`), false)
	_ = s.Put(ctx, OrderKey("a@b.com", "o1"), []byte(`{"id":"o1"}`), false)
	_ = s.Put(ctx, OrderKey("c@d.com", "o3"), []byte(`{"id":"o3"}`), false)
	_ = s.Put(ctx, ProductKey("p1"), []byte(`{"id":"p1"}`), false)

	items, err := s.Query(ctx, OrderEmailPrefix("a@b.com"))
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 orders for a@b.com, got %d", len(items))
	}
	// Ordered by key.
	if string(items[0]) != `{"id":"o1"}` || string(items[1]) != `{"id":"o2"}` {
		t.Errorf("unexpected ordering: %s, %s", items[0], items[1])
	}

	all, err := s.Query(ctx, OrderPrefix)
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("expected 3 orders total, got %d", len(all))
	}
}

func TestProductPrefixDoesNotMatchCodeKeys(t *testing.T) {
	s := NewMemory()
	ctx := context.Background()

	_ = s.Put(ctx, ProductKey("p1"), []byte(`{"id":"p1"}`), false)
	_ = s.Put(ctx, ProductCodeKey("T-01"), []byte(`{"id":"p1"}`), false)

	items, err := s.Query(ctx, ProductPrefix)
	if err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected only the product item, got %d items", len(items))
	}
}
