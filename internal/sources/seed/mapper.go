package seed

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
	"time"

	"github.com/MrSnakeDoc/shelf/internal/domain"
)

// ToBookmarks converts seed entries to domain bookmarks.
// Entries without a title or URL are skipped.
func (d Data) ToBookmarks(now time.Time) []domain.Bookmark {
	stamp := domain.FormatTimestamp(now)
	out := make([]domain.Bookmark, 0, len(d.Bookmarks))

	for _, e := range d.Bookmarks {
		if strings.TrimSpace(e.Title) == "" || strings.TrimSpace(e.URL) == "" {
			continue
		}

		id := e.ID
		if id == "" {
			id = generateBookmarkID(e.URL)
		}
		visibility := domain.Visibility(e.Visibility)
		if visibility == "" {
			visibility = domain.VisibilityPrivate
		}
		dateAdded := e.DateAdded
		if dateAdded == "" {
			dateAdded = stamp
		}
		tags := make([]string, 0, len(e.Tags))
		for _, t := range e.Tags {
			if t = strings.TrimSpace(t); t != "" {
				tags = append(tags, t)
			}
		}

		out = append(out, domain.Bookmark{
			ID:         id,
			Title:      e.Title,
			URL:        e.URL,
			Category:   e.Category,
			Progress:   e.Progress,
			Notes:      e.Notes,
			Tags:       tags,
			CoverURL:   e.CoverURL,
			Visibility: visibility,
			DateAdded:  dateAdded,
		})
	}

	return out
}

// generateBookmarkID derives a stable ID from the URL so re-seeding the same
// file does not create duplicates.
func generateBookmarkID(url string) string {
	hash := sha256.Sum256([]byte(url))
	return "seed-" + hex.EncodeToString(hash[:])[:16]
}
