package domain

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// SortKey selects the ordering of a bookmark listing.
type SortKey string

const (
	SortNone      SortKey = ""
	SortDateAdded SortKey = "dateAdded" // newest first
	SortTitle     SortKey = "title"
	SortCategory  SortKey = "category"
)

// ParseSortKey validates a sort key coming from a query string.
func ParseSortKey(raw string) (SortKey, error) {
	switch k := SortKey(strings.TrimSpace(raw)); k {
	case SortNone, SortDateAdded, SortTitle, SortCategory:
		return k, nil
	default:
		return SortNone, fmt.Errorf("%w: unknown sort key %q", ErrValidation, raw)
	}
}

// ListFilter narrows a bookmark listing. The zero value keeps everything
// in stored order.
type ListFilter struct {
	// Visibility keeps only bookmarks with this visibility when set.
	Visibility Visibility
	// Category keeps only bookmarks with exactly this category when set.
	Category string
	// Tags keeps bookmarks carrying every one of these tags.
	Tags []string
	// Query is a case-insensitive substring match on the title.
	Query string
	// Sort orders the result. SortNone preserves stored order.
	Sort SortKey
}

// Match reports whether b passes every predicate of the filter.
func (f ListFilter) Match(b Bookmark) bool {
	if f.Visibility != "" && b.Visibility != f.Visibility {
		return false
	}
	if f.Category != "" && b.Category != f.Category {
		return false
	}
	for _, tag := range f.Tags {
		if !b.HasTag(tag) {
			return false
		}
	}
	if q := strings.TrimSpace(f.Query); q != "" {
		if !strings.Contains(strings.ToLower(b.Title), strings.ToLower(q)) {
			return false
		}
	}
	return true
}

// Apply returns the matching bookmarks, sorted when a sort key is set.
// The input slice is not modified.
func (f ListFilter) Apply(bookmarks []Bookmark) []Bookmark {
	out := make([]Bookmark, 0, len(bookmarks))
	for _, b := range bookmarks {
		if f.Match(b) {
			out = append(out, b)
		}
	}
	SortBookmarks(out, f.Sort)
	return out
}

// SortBookmarks orders bookmarks in place. The sort is stable so that equal
// keys keep their stored order.
func SortBookmarks(bookmarks []Bookmark, key SortKey) {
	switch key {
	case SortTitle:
		sort.SliceStable(bookmarks, func(i, j int) bool {
			return strings.ToLower(bookmarks[i].Title) < strings.ToLower(bookmarks[j].Title)
		})
	case SortCategory:
		sort.SliceStable(bookmarks, func(i, j int) bool {
			return strings.ToLower(bookmarks[i].Category) < strings.ToLower(bookmarks[j].Category)
		})
	case SortDateAdded:
		sort.SliceStable(bookmarks, func(i, j int) bool {
			return parseTimestamp(bookmarks[i].DateAdded).After(parseTimestamp(bookmarks[j].DateAdded))
		})
	}
}

// parseTimestamp accepts any RFC 3339 timestamp; unparsable values sort last.
func parseTimestamp(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
