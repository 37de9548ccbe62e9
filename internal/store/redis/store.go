// Package redis stores records in Redis.
//
// Bookmarks are JSON values addressed by ID, so updates and deletes touch a
// single key and never depend on a position. A sorted set keeps insertion order.
package redis

import (
	"context"
	"fmt"

	"github.com/MrSnakeDoc/shelf/internal/store"
	"github.com/redis/go-redis/v9"
)

// Store handles Redis operations for bookmarks, tags and categories.
type Store struct {
	client *redis.Client
}

var (
	_ store.Store  = (*Store)(nil)
	_ store.Seeder = (*Store)(nil)
)

// NewStore creates a new Redis store.
func NewStore(client *redis.Client) *Store {
	return &Store{
		client: client,
	}
}

func (s *Store) Backend() string { return "redis" }

func (s *Store) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}
