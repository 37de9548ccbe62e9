package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/MrSnakeDoc/shelf/internal/domain"
	"github.com/redis/go-redis/v9"
)

// ListBookmarks retrieves all bookmarks in insertion order.
func (s *Store) ListBookmarks(ctx context.Context) ([]domain.Bookmark, error) {
	ids, err := s.client.ZRange(ctx, KeyBookmarkOrder, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get bookmark IDs: %w", err)
	}

	if len(ids) == 0 {
		return []domain.Bookmark{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = BookmarkKey(id)
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get bookmarks: %w", err)
	}

	bookmarks := make([]domain.Bookmark, 0, len(values))
	for i, v := range values {
		raw, ok := v.(string)
		if !ok {
			// Skip IDs whose value disappeared
			continue
		}
		var bookmark domain.Bookmark
		if err := json.Unmarshal([]byte(raw), &bookmark); err != nil {
			return nil, fmt.Errorf("failed to unmarshal bookmark %s: %w", ids[i], err)
		}
		bookmarks = append(bookmarks, bookmark)
	}

	return bookmarks, nil
}

// GetBookmark retrieves a bookmark from Redis by ID.
func (s *Store) GetBookmark(ctx context.Context, id string) (domain.Bookmark, error) {
	data, err := s.client.Get(ctx, BookmarkKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return domain.Bookmark{}, notFound(id)
		}
		return domain.Bookmark{}, fmt.Errorf("failed to get bookmark: %w", err)
	}

	var bookmark domain.Bookmark
	if err := json.Unmarshal(data, &bookmark); err != nil {
		return domain.Bookmark{}, fmt.Errorf("failed to unmarshal bookmark: %w", err)
	}

	return bookmark, nil
}

// AppendBookmark stores a new bookmark at the end of the order.
// The record and its order entry are written in one MULTI while the key is watched.
func (s *Store) AppendBookmark(ctx context.Context, bookmark domain.Bookmark) error {
	data, err := json.Marshal(bookmark)
	if err != nil {
		return fmt.Errorf("failed to marshal bookmark: %w", err)
	}

	// Gaps in the sequence are harmless, only the relative order matters.
	seq, err := s.client.Incr(ctx, KeyBookmarkSeq).Result()
	if err != nil {
		return fmt.Errorf("failed to allocate bookmark position: %w", err)
	}

	key := BookmarkKey(bookmark.ID)
	err = s.client.Watch(ctx, func(tx *redis.Tx) error {
		n, err := tx.Exists(ctx, key).Result()
		if err != nil {
			return err
		}
		if n > 0 {
			return errBookmarkExists
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, 0)
			pipe.ZAdd(ctx, KeyBookmarkOrder, redis.Z{Score: float64(seq), Member: bookmark.ID})
			return nil
		})
		return err
	}, key)

	switch {
	case err == nil:
		return nil
	case errors.Is(err, errBookmarkExists), errors.Is(err, redis.TxFailedErr):
		return fmt.Errorf("bookmark %q already exists", bookmark.ID)
	default:
		return fmt.Errorf("failed to save bookmark: %w", err)
	}
}

// UpdateBookmark overwrites an existing bookmark (SET XX).
func (s *Store) UpdateBookmark(ctx context.Context, bookmark domain.Bookmark) error {
	data, err := json.Marshal(bookmark)
	if err != nil {
		return fmt.Errorf("failed to marshal bookmark: %w", err)
	}

	updated, err := s.client.SetXX(ctx, BookmarkKey(bookmark.ID), data, 0).Result()
	if err != nil {
		return fmt.Errorf("failed to update bookmark: %w", err)
	}
	if !updated {
		return notFound(bookmark.ID)
	}

	return nil
}

// DeleteBookmark removes a bookmark and its order entry atomically.
func (s *Store) DeleteBookmark(ctx context.Context, id string) error {
	var del *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		del = pipe.Del(ctx, BookmarkKey(id))
		pipe.ZRem(ctx, KeyBookmarkOrder, id)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete bookmark: %w", err)
	}
	if del.Val() == 0 {
		return notFound(id)
	}

	return nil
}

var errBookmarkExists = errors.New("bookmark exists")

func notFound(id string) error {
	return fmt.Errorf("bookmark %q: %w", id, domain.ErrNotFound)
}
