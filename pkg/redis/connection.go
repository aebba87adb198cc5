// Package redis backs the audit event store with Redis, whose key expiry
// plays the role of the event table's TTL reaper.
package redis

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	connectAttempts = 30
	connectBackoff  = 2 * time.Second
)

// Connect establishes a Redis connection with retries.
func Connect(addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr})

	var err error
	for i := 0; i < connectAttempts; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		err = client.Ping(ctx).Err()
		cancel()
		if err == nil {
			log.Println("Connected to Redis")
			return client, nil
		}
		log.Printf("Failed to ping Redis: %v, retrying in %s...", err, connectBackoff)
		time.Sleep(connectBackoff)
	}

	return nil, fmt.Errorf("could not connect to Redis after %d attempts: %w", connectAttempts, err)
}
