package sheets

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/MrSnakeDoc/shelf/internal/domain"
	"github.com/MrSnakeDoc/shelf/internal/rowmap"
	"github.com/MrSnakeDoc/shelf/internal/store"
)

const (
	bookmarksSheet  = "Bookmarks"
	tagsSheet       = "Tags"
	categoriesSheet = "Categories"

	bookmarksRange  = bookmarksSheet + "!A2:J"
	tagsRange       = tagsSheet + "!A2:A"
	categoriesRange = categoriesSheet + "!A2:A"

	// firstDataRow is the 1-based sheet row holding data index 0.
	firstDataRow = 2
)

// Store maps record operations onto a spreadsheet.
//
// Rows are addressed by position, so every mutation re-reads the tab and
// resolves the position right before writing. Mutations are serialized
// within the process; concurrent writers from elsewhere are not covered.
type Store struct {
	gw Gateway
	mu sync.Mutex
}

var _ store.Store = (*Store)(nil)

// New creates a store on top of a gateway.
func New(gw Gateway) *Store {
	return &Store{gw: gw}
}

func (s *Store) Backend() string { return "sheets" }

func (s *Store) Ping(ctx context.Context) error {
	return s.gw.Ping(ctx)
}

// ─────────────────────────────────────────────────────────────────
// Bookmarks
// ─────────────────────────────────────────────────────────────────

// ListBookmarks returns every row with a non-empty ID, in sheet order.
func (s *Store) ListBookmarks(ctx context.Context) ([]domain.Bookmark, error) {
	rows, err := s.gw.Get(ctx, bookmarksRange)
	if err != nil {
		return nil, fmt.Errorf("failed to read bookmarks: %w", err)
	}

	out := make([]domain.Bookmark, 0, len(rows))
	for _, row := range rows {
		b := rowmap.ToBookmark(row)
		if b.ID == "" {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

func (s *Store) GetBookmark(ctx context.Context, id string) (domain.Bookmark, error) {
	b, _, err := s.locate(ctx, id)
	return b, err
}

func (s *Store) AppendBookmark(ctx context.Context, b domain.Bookmark) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.gw.Append(ctx, bookmarksRange, rowmap.FromBookmark(b)); err != nil {
		return fmt.Errorf("failed to append bookmark: %w", err)
	}
	return nil
}

// UpdateBookmark overwrites the whole row holding b.ID.
func (s *Store) UpdateBookmark(ctx context.Context, b domain.Bookmark) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, index, err := s.locate(ctx, b.ID)
	if err != nil {
		return err
	}

	if err := s.gw.Update(ctx, bookmarkRowRange(index), rowmap.FromBookmark(b)); err != nil {
		return fmt.Errorf("failed to update bookmark %q: %w", b.ID, err)
	}
	return nil
}

// DeleteBookmark removes the row and shifts the rows below it up.
func (s *Store) DeleteBookmark(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, index, err := s.locate(ctx, id)
	if err != nil {
		return err
	}

	if err := s.gw.DeleteRow(ctx, bookmarksSheet, gridIndex(index)); err != nil {
		return fmt.Errorf("failed to delete bookmark %q: %w", id, err)
	}
	return nil
}

// locate finds the data index of the first row whose ID matches.
func (s *Store) locate(ctx context.Context, id string) (domain.Bookmark, int, error) {
	rows, err := s.gw.Get(ctx, bookmarksRange)
	if err != nil {
		return domain.Bookmark{}, -1, fmt.Errorf("failed to read bookmarks: %w", err)
	}

	for i, row := range rows {
		if len(row) > rowmap.ColID && row[rowmap.ColID] == id && id != "" {
			return rowmap.ToBookmark(row), i, nil
		}
	}
	return domain.Bookmark{}, -1, fmt.Errorf("bookmark %q: %w", id, domain.ErrNotFound)
}

// bookmarkRowRange is the A1 range of the full row for data index i.
func bookmarkRowRange(i int) string {
	row := i + firstDataRow
	return fmt.Sprintf("%s!A%d:J%d", bookmarksSheet, row, row)
}

// gridIndex converts a data index to the zero-based index used by batch requests.
func gridIndex(i int) int {
	return i + firstDataRow - 1
}

// ─────────────────────────────────────────────────────────────────
// Tags and categories
// ─────────────────────────────────────────────────────────────────

func (s *Store) ListTags(ctx context.Context) ([]string, error) {
	return s.readColumn(ctx, tagsRange)
}

func (s *Store) AppendTag(ctx context.Context, tag string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.gw.Append(ctx, tagsRange, []string{tag}); err != nil {
		return fmt.Errorf("failed to append tag: %w", err)
	}
	return nil
}

// DeleteTag removes the first row whose trimmed cell equals tag.
// Bookmarks referencing the tag are left untouched.
func (s *Store) DeleteTag(ctx context.Context, tag string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.gw.Get(ctx, tagsRange)
	if err != nil {
		return fmt.Errorf("failed to read tags: %w", err)
	}

	tag = strings.TrimSpace(tag)
	for i, row := range rows {
		if len(row) > 0 && strings.TrimSpace(row[0]) == tag {
			if err := s.gw.DeleteRow(ctx, tagsSheet, gridIndex(i)); err != nil {
				return fmt.Errorf("failed to delete tag %q: %w", tag, err)
			}
			return nil
		}
	}
	return fmt.Errorf("tag %q: %w", tag, domain.ErrNotFound)
}

func (s *Store) ListCategories(ctx context.Context) ([]string, error) {
	return s.readColumn(ctx, categoriesRange)
}

// readColumn returns the trimmed, non-blank first cells of a single-column range.
func (s *Store) readColumn(ctx context.Context, rng string) ([]string, error) {
	rows, err := s.gw.Get(ctx, rng)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", rng, err)
	}

	out := make([]string, 0, len(rows))
	for _, row := range rows {
		if len(row) == 0 {
			continue
		}
		if v := strings.TrimSpace(row[0]); v != "" {
			out = append(out, v)
		}
	}
	return out, nil
}
