// Package rowmap converts between spreadsheet rows (ordered string cells)
// and domain bookmarks.
//
// The column order is fixed and must match the header row of the Bookmarks
// sheet. No validation happens here: whatever sits in a cell comes out in the
// corresponding field and vice versa.
package rowmap

import (
	"strings"

	"github.com/MrSnakeDoc/shelf/internal/domain"
)

// Column indexes, in sheet order.
const (
	ColID = iota
	ColTitle
	ColURL
	ColCategory
	ColProgress
	ColNotes
	ColTags
	ColCoverURL
	ColVisibility
	ColDateAdded

	// Width is the number of columns in a bookmark row.
	Width
)

// Columns holds the header names in sheet order.
var Columns = [Width]string{
	"ID", "Title", "URL", "Category", "Progress",
	"Notes", "Tags", "CoverURL", "Visibility", "DateAdded",
}

// tagSeparator joins tag names inside the Tags cell.
const tagSeparator = ", "

// ToBookmark maps a row onto a bookmark. Missing trailing cells read as "".
func ToBookmark(cells []string) domain.Bookmark {
	cell := func(i int) string {
		if i < len(cells) {
			return cells[i]
		}
		return ""
	}

	return domain.Bookmark{
		ID:         cell(ColID),
		Title:      cell(ColTitle),
		URL:        cell(ColURL),
		Category:   cell(ColCategory),
		Progress:   cell(ColProgress),
		Notes:      cell(ColNotes),
		Tags:       DecodeTags(cell(ColTags)),
		CoverURL:   cell(ColCoverURL),
		Visibility: domain.Visibility(cell(ColVisibility)),
		DateAdded:  cell(ColDateAdded),
	}
}

// FromBookmark maps a bookmark onto a full-width row.
func FromBookmark(b domain.Bookmark) []string {
	row := make([]string, Width)
	row[ColID] = b.ID
	row[ColTitle] = b.Title
	row[ColURL] = b.URL
	row[ColCategory] = b.Category
	row[ColProgress] = b.Progress
	row[ColNotes] = b.Notes
	row[ColTags] = EncodeTags(b.Tags)
	row[ColCoverURL] = b.CoverURL
	row[ColVisibility] = string(b.Visibility)
	row[ColDateAdded] = b.DateAdded
	return row
}

// DecodeTags splits a Tags cell on commas, trims each name and drops
// empties. It never returns nil.
func DecodeTags(cell string) []string {
	tags := []string{}
	if cell == "" {
		return tags
	}
	for _, raw := range strings.Split(cell, ",") {
		if tag := strings.TrimSpace(raw); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

// EncodeTags joins tag names the way the sheet stores them.
func EncodeTags(tags []string) string {
	return strings.Join(tags, tagSeparator)
}
