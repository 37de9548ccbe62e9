// Package memory is an in-process store for development and tests.
// Nothing survives a restart.
package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/MrSnakeDoc/shelf/internal/domain"
	"github.com/MrSnakeDoc/shelf/internal/sources/seed"
	"github.com/MrSnakeDoc/shelf/internal/store"
)

// Store keeps bookmarks in insertion order with an ID -> position lookup.
type Store struct {
	mu         sync.RWMutex
	bookmarks  []domain.Bookmark
	positions  map[string]int // ID -> index in bookmarks
	tags       []string
	categories []string
	now        func() time.Time
}

var (
	_ store.Store  = (*Store)(nil)
	_ store.Seeder = (*Store)(nil)
)

// New creates an empty memory store with the given categories.
func New(categories []string) *Store {
	return &Store{
		positions:  make(map[string]int),
		categories: slices.Clone(categories),
		now:        time.Now,
	}
}

func (s *Store) Backend() string { return "memory" }

func (s *Store) Ping(context.Context) error { return nil }

// ─────────────────────────────────────────────────────────────────
// Bookmark methods
// ─────────────────────────────────────────────────────────────────

// ListBookmarks returns copies in insertion order.
func (s *Store) ListBookmarks(context.Context) ([]domain.Bookmark, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Bookmark, 0, len(s.bookmarks))
	for _, b := range s.bookmarks {
		out = append(out, b.Clone())
	}
	return out, nil
}

// GetBookmark retrieves a bookmark by ID.
func (s *Store) GetBookmark(_ context.Context, id string) (domain.Bookmark, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	pos, ok := s.positions[id]
	if !ok {
		return domain.Bookmark{}, notFound(id)
	}
	return s.bookmarks[pos].Clone(), nil
}

// AppendBookmark adds a bookmark at the end. Duplicate IDs are rejected.
func (s *Store) AppendBookmark(_ context.Context, b domain.Bookmark) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.positions[b.ID]; exists {
		return fmt.Errorf("bookmark %q already exists", b.ID)
	}
	s.positions[b.ID] = len(s.bookmarks)
	s.bookmarks = append(s.bookmarks, b.Clone())
	return nil
}

// UpdateBookmark replaces the bookmark with the same ID in place.
func (s *Store) UpdateBookmark(_ context.Context, b domain.Bookmark) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	pos, ok := s.positions[b.ID]
	if !ok {
		return notFound(b.ID)
	}
	s.bookmarks[pos] = b.Clone()
	return nil
}

// DeleteBookmark removes a bookmark and shifts the ones after it.
func (s *Store) DeleteBookmark(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	pos, ok := s.positions[id]
	if !ok {
		return notFound(id)
	}
	s.bookmarks = slices.Delete(s.bookmarks, pos, pos+1)
	s.reindex()
	return nil
}

// reindex rebuilds the position map. Caller holds the write lock.
func (s *Store) reindex() {
	s.positions = make(map[string]int, len(s.bookmarks))
	for i, b := range s.bookmarks {
		s.positions[b.ID] = i
	}
}

// ─────────────────────────────────────────────────────────────────
// Tags and categories
// ─────────────────────────────────────────────────────────────────

func (s *Store) ListTags(context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]string{}, s.tags...), nil
}

func (s *Store) AppendTag(_ context.Context, tag string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.tags = append(s.tags, tag)
	return nil
}

// DeleteTag removes the first occurrence of tag.
func (s *Store) DeleteTag(_ context.Context, tag string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := slices.Index(s.tags, tag)
	if i < 0 {
		return fmt.Errorf("tag %q: %w", tag, domain.ErrNotFound)
	}
	s.tags = slices.Delete(s.tags, i, i+1)
	return nil
}

func (s *Store) ListCategories(context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return append([]string{}, s.categories...), nil
}

// Seed replaces the whole content with the fixture data.
// Categories from the seed win over the ones given to New when present.
func (s *Store) Seed(_ context.Context, data seed.Data) error {
	bookmarks := data.ToBookmarks(s.now())

	s.mu.Lock()
	defer s.mu.Unlock()

	s.bookmarks = make([]domain.Bookmark, 0, len(bookmarks))
	s.positions = make(map[string]int, len(bookmarks))
	for _, b := range bookmarks {
		if _, dup := s.positions[b.ID]; dup {
			continue
		}
		s.positions[b.ID] = len(s.bookmarks)
		s.bookmarks = append(s.bookmarks, b)
	}

	s.tags = slices.Clone(data.Tags)
	if len(data.Categories) > 0 {
		s.categories = slices.Clone(data.Categories)
	}
	return nil
}

func notFound(id string) error {
	return fmt.Errorf("bookmark %q: %w", id, domain.ErrNotFound)
}
