package domain

import (
	"fmt"
	"net/url"
	"strings"
	"time"
)

// Visibility controls whether a bookmark shows up on the public shelf.
type Visibility string

const (
	VisibilityPublic  Visibility = "public"
	VisibilityPrivate Visibility = "private"
)

// Valid reports whether v is one of the known visibility values.
func (v Visibility) Valid() bool {
	return v == VisibilityPublic || v == VisibilityPrivate
}

// TimestampLayout is the ISO-8601 form used for DateAdded (UTC, millisecond precision).
const TimestampLayout = "2006-01-02T15:04:05.000Z"

// FormatTimestamp renders t the way DateAdded is stored.
func FormatTimestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}

// Bookmark is one tracked item on the shelf (a book, a manga, a video...).
//
// Every field is a plain string so that a record read from a spreadsheet row
// can be written back without any loss.
type Bookmark struct {
	// ─────────────────────────────
	// Identity (immutable)
	// ─────────────────────────────

	// ID is generated at creation and never changes.
	ID string `json:"id"`

	// DateAdded is stamped once at creation (see TimestampLayout).
	// Updates never touch it.
	DateAdded string `json:"dateAdded"`

	// ─────────────────────────────
	// Description
	// ─────────────────────────────

	Title    string `json:"title"`
	URL      string `json:"url"`
	Category string `json:"category"`

	// CoverURL is user supplied or scraped from the page metadata.
	CoverURL string `json:"coverUrl"`

	// ─────────────────────────────
	// Tracking
	// ─────────────────────────────

	// Progress is free text ("p.12", "ep 4", "done").
	Progress string `json:"progress"`
	Notes    string `json:"notes"`

	// Tags reference the tag list by name. Order is kept for display.
	Tags []string `json:"tags"`

	Visibility Visibility `json:"visibility"`
}

// IsPublic reports whether the bookmark belongs on the public shelf.
func (b Bookmark) IsPublic() bool {
	return b.Visibility == VisibilityPublic
}

// Clone returns a copy that shares no slice with b.
func (b Bookmark) Clone() Bookmark {
	b.Tags = cloneTags(b.Tags)
	return b
}

// HasTag reports whether the bookmark carries the given tag.
func (b Bookmark) HasTag(tag string) bool {
	for _, t := range b.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// Validate checks the invariants enforced on create and update.
// Category membership is deliberately not checked here.
func (b Bookmark) Validate() error {
	if strings.TrimSpace(b.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrValidation)
	}
	if strings.TrimSpace(b.URL) == "" {
		return fmt.Errorf("%w: url is required", ErrValidation)
	}
	if !IsWebURL(b.URL) {
		return fmt.Errorf("%w: url must be a valid http(s) URL", ErrValidation)
	}
	if !b.Visibility.Valid() {
		return fmt.Errorf("%w: visibility must be %q or %q", ErrValidation, VisibilityPublic, VisibilityPrivate)
	}
	return nil
}

// IsWebURL reports whether raw parses as an absolute http or https URL with a host.
func IsWebURL(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	return u.Host != ""
}
