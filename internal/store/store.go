// Package store defines the logical record store behind the record service.
//
// Implementations address records by ID. How they get there (a full re-read
// plus a position-based write on a spreadsheet, a single key on redis, a
// slice scan in memory) stays behind these interfaces.
package store

import (
	"context"
	"errors"

	"github.com/MrSnakeDoc/shelf/internal/domain"
	"github.com/MrSnakeDoc/shelf/internal/sources/seed"
)

// BookmarkStore persists bookmarks in insertion order.
// Unknown IDs yield an error wrapping domain.ErrNotFound.
type BookmarkStore interface {
	ListBookmarks(ctx context.Context) ([]domain.Bookmark, error)
	GetBookmark(ctx context.Context, id string) (domain.Bookmark, error)
	AppendBookmark(ctx context.Context, b domain.Bookmark) error
	UpdateBookmark(ctx context.Context, b domain.Bookmark) error
	DeleteBookmark(ctx context.Context, id string) error
}

// TagStore persists the tag list. AppendTag does not deduplicate.
type TagStore interface {
	ListTags(ctx context.Context) ([]string, error)
	AppendTag(ctx context.Context, tag string) error
	DeleteTag(ctx context.Context, tag string) error
}

// CategoryStore exposes the read-only category list.
type CategoryStore interface {
	ListCategories(ctx context.Context) ([]string, error)
}

// Store is everything the record service needs.
type Store interface {
	BookmarkStore
	TagStore
	CategoryStore

	// Ping checks that the backend is reachable.
	Ping(ctx context.Context) error
	// Backend names the implementation for logs and health output.
	Backend() string
}

// ErrAlreadySeeded is returned by seeders that refuse to overwrite existing data.
var ErrAlreadySeeded = errors.New("store already holds data")

// Seeder is implemented by stores that can be pre-filled from fixtures.
type Seeder interface {
	Seed(ctx context.Context, data seed.Data) error
}
