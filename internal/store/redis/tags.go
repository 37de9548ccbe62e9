package redis

import (
	"context"
	"fmt"

	"github.com/MrSnakeDoc/shelf/internal/domain"
)

// ListTags returns the tag list in insertion order.
func (s *Store) ListTags(ctx context.Context) ([]string, error) {
	tags, err := s.client.LRange(ctx, KeyTags, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get tags: %w", err)
	}
	return tags, nil
}

// AppendTag pushes a tag at the end of the list.
func (s *Store) AppendTag(ctx context.Context, tag string) error {
	if err := s.client.RPush(ctx, KeyTags, tag).Err(); err != nil {
		return fmt.Errorf("failed to add tag: %w", err)
	}
	return nil
}

// DeleteTag removes the first occurrence of tag.
func (s *Store) DeleteTag(ctx context.Context, tag string) error {
	removed, err := s.client.LRem(ctx, KeyTags, 1, tag).Result()
	if err != nil {
		return fmt.Errorf("failed to delete tag: %w", err)
	}
	if removed == 0 {
		return fmt.Errorf("tag %q: %w", tag, domain.ErrNotFound)
	}
	return nil
}

// ListCategories returns the category list.
func (s *Store) ListCategories(ctx context.Context) ([]string, error) {
	categories, err := s.client.LRange(ctx, KeyCategories, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to get categories: %w", err)
	}
	return categories, nil
}
