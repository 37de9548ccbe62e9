package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/MrSnakeDoc/shelf/internal/sources/seed"
	"github.com/MrSnakeDoc/shelf/internal/store"
	"github.com/redis/go-redis/v9"
)

// Seed fills an empty database from fixture data (bulk operation).
// It returns store.ErrAlreadySeeded when any shelf key already exists.
func (s *Store) Seed(ctx context.Context, data seed.Data) error {
	existing, err := s.client.Exists(ctx, KeyBookmarkOrder, KeyTags, KeyCategories).Result()
	if err != nil {
		return fmt.Errorf("failed to check existing data: %w", err)
	}
	if existing > 0 {
		return store.ErrAlreadySeeded
	}

	bookmarks := data.ToBookmarks(time.Now())
	seen := make(map[string]struct{}, len(bookmarks))

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		var seq int64
		for _, bookmark := range bookmarks {
			if _, dup := seen[bookmark.ID]; dup {
				continue
			}
			seen[bookmark.ID] = struct{}{}

			payload, err := json.Marshal(bookmark)
			if err != nil {
				return fmt.Errorf("failed to marshal bookmark %s: %w", bookmark.ID, err)
			}

			seq++
			pipe.Set(ctx, BookmarkKey(bookmark.ID), payload, 0)
			pipe.ZAdd(ctx, KeyBookmarkOrder, redis.Z{Score: float64(seq), Member: bookmark.ID})
		}
		pipe.Set(ctx, KeyBookmarkSeq, seq, 0)

		if len(data.Tags) > 0 {
			pipe.RPush(ctx, KeyTags, toArgs(data.Tags)...)
		}
		if len(data.Categories) > 0 {
			pipe.RPush(ctx, KeyCategories, toArgs(data.Categories)...)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to seed redis: %w", err)
	}

	return nil
}

func toArgs(values []string) []interface{} {
	args := make([]interface{}, len(values))
	for i, v := range values {
		args[i] = v
	}
	return args
}
