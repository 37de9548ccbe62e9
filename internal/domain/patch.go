package domain

import (
	"fmt"
	"strings"
)

// BookmarkPatch carries the client-writable fields of a bookmark.
// A nil field means "not provided". ID and DateAdded are absent on purpose:
// whatever a client sends for them is dropped during decoding.
type BookmarkPatch struct {
	Title      *string     `json:"title,omitempty"`
	URL        *string     `json:"url,omitempty"`
	Category   *string     `json:"category,omitempty"`
	Progress   *string     `json:"progress,omitempty"`
	Notes      *string     `json:"notes,omitempty"`
	Tags       *[]string   `json:"tags,omitempty"`
	CoverURL   *string     `json:"coverUrl,omitempty"`
	Visibility *Visibility `json:"visibility,omitempty"`
}

// Apply merges the provided fields onto b and returns the result.
// b itself is left untouched.
func (p BookmarkPatch) Apply(b Bookmark) Bookmark {
	out := b
	out.Tags = cloneTags(b.Tags)

	if p.Title != nil {
		out.Title = *p.Title
	}
	if p.URL != nil {
		out.URL = *p.URL
	}
	if p.Category != nil {
		out.Category = *p.Category
	}
	if p.Progress != nil {
		out.Progress = *p.Progress
	}
	if p.Notes != nil {
		out.Notes = *p.Notes
	}
	if p.Tags != nil {
		out.Tags = cloneTags(*p.Tags)
	}
	if p.CoverURL != nil {
		out.CoverURL = *p.CoverURL
	}
	if p.Visibility != nil {
		out.Visibility = *p.Visibility
	}
	return out
}

// Validate checks only the fields the patch provides, so a stored row with
// legacy gaps can still take unrelated edits.
func (p BookmarkPatch) Validate() error {
	if p.Title != nil && strings.TrimSpace(*p.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrValidation)
	}
	if p.URL != nil {
		if strings.TrimSpace(*p.URL) == "" {
			return fmt.Errorf("%w: url is required", ErrValidation)
		}
		if !IsWebURL(*p.URL) {
			return fmt.Errorf("%w: url must be a valid http(s) URL", ErrValidation)
		}
	}
	if p.Visibility != nil && !p.Visibility.Valid() {
		return fmt.Errorf("%w: visibility must be %q or %q", ErrValidation, VisibilityPublic, VisibilityPrivate)
	}
	return nil
}

func cloneTags(tags []string) []string {
	out := make([]string, len(tags))
	copy(out, tags)
	return out
}
