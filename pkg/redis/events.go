package redis

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"
)

const eventKeyPrefix = "events:"

// EventStore appends audit events as expiring Redis keys. Events are never
// updated or deleted by application code; Redis removes them once their
// absolute expiry passes.
type EventStore struct {
	client *redis.Client
}

// NewEventStore creates an event store on the given Redis client.
func NewEventStore(client *redis.Client) *EventStore {
	return &EventStore{client: client}
}

// Append writes one event item under its composite key. expiresAt is an
// absolute Unix-seconds timestamp.
func (s *EventStore) Append(ctx context.Context, partitionKey, sortKey string, item []byte, expiresAt int64) error {
	ttl := time.Until(time.Unix(expiresAt, 0))
	if ttl <= 0 {
		// Already expired; the reaper would drop it immediately anyway.
		log.Printf("[EventStore] Dropping already-expired event: pk=%s sk=%s expires_at=%d", partitionKey, sortKey, expiresAt)
		return nil
	}
	key := eventKeyPrefix + partitionKey + ":" + sortKey
	if err := s.client.Set(ctx, key, item, ttl).Err(); err != nil {
		return fmt.Errorf("append event %q: %w", key, err)
	}
	return nil
}

// Scan returns the raw events whose partition key starts with the given
// prefix, ordered by key. Business logic never reads events; this exists for
// operational tooling.
func (s *EventStore) Scan(ctx context.Context, partitionPrefix string) ([][]byte, error) {
	var keys []string
	iter := s.client.Scan(ctx, 0, eventKeyPrefix+partitionPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("scan events %q: %w", partitionPrefix, err)
	}
	if len(keys) == 0 {
		return nil, nil
	}
	sort.Strings(keys)

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("scan events %q: %w", partitionPrefix, err)
	}
	items := make([][]byte, 0, len(values))
	for _, v := range values {
		if str, ok := v.(string); ok {
			items = append(items, []byte(str))
		}
	}
	return items, nil
}
