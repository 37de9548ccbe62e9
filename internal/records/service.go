// Package records implements the bookmark, tag and category operations
// exposed by the API on top of a store.Store.
package records

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/MrSnakeDoc/shelf/internal/domain"
	"github.com/MrSnakeDoc/shelf/internal/logger"
	"github.com/MrSnakeDoc/shelf/internal/store"
)

// DefaultCategory is used when a new bookmark has no category.
const DefaultCategory = "Book"

// CoverResolver looks up a cover image for a page. It returns "" when none is found.
type CoverResolver interface {
	Resolve(ctx context.Context, pageURL string) string
}

// Options tunes a Service. Zero values pick the defaults.
type Options struct {
	DefaultCategory string
	// Covers fills CoverURL on create when the client left it empty. Nil disables it.
	Covers CoverResolver
	Now    func() time.Time
	NewID  func() string
}

// Service holds the record operations.
type Service struct {
	store store.Store
	log   logger.Logger

	defaultCategory string
	covers          CoverResolver
	now             func() time.Time
	newID           func() string
}

// New creates a record service.
func New(st store.Store, log logger.Logger, opts Options) *Service {
	if opts.DefaultCategory == "" {
		opts.DefaultCategory = DefaultCategory
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	return &Service{
		store:           st,
		log:             log,
		defaultCategory: opts.DefaultCategory,
		covers:          opts.Covers,
		now:             opts.Now,
		newID:           opts.NewID,
	}
}

// ─────────────────────────────────────────────────────────────────
// Bookmarks
// ─────────────────────────────────────────────────────────────────

// ListBookmarks returns the stored bookmarks that pass the filter.
func (s *Service) ListBookmarks(ctx context.Context, filter domain.ListFilter) ([]domain.Bookmark, error) {
	all, err := s.store.ListBookmarks(ctx)
	if err != nil {
		return nil, fmt.Errorf("list bookmarks: %w", err)
	}
	return filter.Apply(all), nil
}

func (s *Service) GetBookmark(ctx context.Context, id string) (domain.Bookmark, error) {
	return s.store.GetBookmark(ctx, id)
}

// CreateBookmark builds a new record from the client fields.
// ID and DateAdded are always generated here.
func (s *Service) CreateBookmark(ctx context.Context, patch domain.BookmarkPatch) (domain.Bookmark, error) {
	b := patch.Apply(domain.Bookmark{Tags: []string{}})

	b.ID = s.newID()
	b.DateAdded = domain.FormatTimestamp(s.now())
	if b.Category == "" {
		b.Category = s.defaultCategory
	}
	if b.Visibility == "" {
		b.Visibility = domain.VisibilityPrivate
	}

	if err := b.Validate(); err != nil {
		return domain.Bookmark{}, err
	}

	if b.CoverURL == "" && s.covers != nil {
		b.CoverURL = s.covers.Resolve(ctx, b.URL)
	}

	if err := s.store.AppendBookmark(ctx, b); err != nil {
		return domain.Bookmark{}, fmt.Errorf("create bookmark: %w", err)
	}

	s.log.Info("bookmark created",
		logger.String("id", b.ID),
		logger.String("category", b.Category),
		logger.Bool("cover", b.CoverURL != ""))
	return b, nil
}

// UpdateBookmark merges the patch onto the stored record.
// Only the provided fields are validated. The stored id and dateAdded always win.
func (s *Service) UpdateBookmark(ctx context.Context, id string, patch domain.BookmarkPatch) (domain.Bookmark, error) {
	if err := patch.Validate(); err != nil {
		return domain.Bookmark{}, err
	}

	current, err := s.store.GetBookmark(ctx, id)
	if err != nil {
		return domain.Bookmark{}, err
	}

	updated := patch.Apply(current)
	updated.ID = current.ID
	updated.DateAdded = current.DateAdded

	if err := s.store.UpdateBookmark(ctx, updated); err != nil {
		return domain.Bookmark{}, fmt.Errorf("update bookmark: %w", err)
	}

	s.log.Info("bookmark updated", logger.String("id", id))
	return updated, nil
}

func (s *Service) DeleteBookmark(ctx context.Context, id string) error {
	if err := s.store.DeleteBookmark(ctx, id); err != nil {
		return fmt.Errorf("delete bookmark: %w", err)
	}
	s.log.Info("bookmark deleted", logger.String("id", id))
	return nil
}

// ─────────────────────────────────────────────────────────────────
// Tags and categories
// ─────────────────────────────────────────────────────────────────

func (s *Service) ListTags(ctx context.Context) ([]string, error) {
	tags, err := s.store.ListTags(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tags: %w", err)
	}
	return tags, nil
}

// AddTag appends a trimmed tag name and returns it. Duplicates are allowed.
func (s *Service) AddTag(ctx context.Context, name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("%w: tag is required", domain.ErrValidation)
	}
	if err := s.store.AppendTag(ctx, name); err != nil {
		return "", fmt.Errorf("add tag: %w", err)
	}
	return name, nil
}

// DeleteTag removes one tag from the list. Bookmarks keep their references.
func (s *Service) DeleteTag(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("%w: tag is required", domain.ErrValidation)
	}
	if err := s.store.DeleteTag(ctx, name); err != nil {
		return fmt.Errorf("delete tag: %w", err)
	}
	return nil
}

func (s *Service) ListCategories(ctx context.Context) ([]string, error) {
	categories, err := s.store.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return categories, nil
}
