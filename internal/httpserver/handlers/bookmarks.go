package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/shelf/internal/domain"
	"github.com/MrSnakeDoc/shelf/internal/httpserver/deps"
)

// ListBookmarks returns the public shelf.
// Query: category, tag (repeatable or comma separated), q, sort.
func ListBookmarks(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter, err := parseListFilter(r)
		if err != nil {
			writeServiceError(w, r, d.Logger, err, "Failed to fetch bookmarks")
			return
		}
		filter.Visibility = domain.VisibilityPublic

		list, err := d.Records.ListBookmarks(r.Context(), filter)
		if err != nil {
			writeServiceError(w, r, d.Logger, err, "Failed to fetch bookmarks")
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

// ListAdminBookmarks returns every bookmark. It also accepts ?visibility=public|private.
func ListAdminBookmarks(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter, err := parseListFilter(r)
		if err != nil {
			writeServiceError(w, r, d.Logger, err, "Failed to fetch bookmarks")
			return
		}
		if v := r.URL.Query().Get("visibility"); v != "" {
			filter.Visibility = domain.Visibility(v)
			if !filter.Visibility.Valid() {
				writeError(w, http.StatusBadRequest, "Invalid visibility")
				return
			}
		}

		list, err := d.Records.ListBookmarks(r.Context(), filter)
		if err != nil {
			writeServiceError(w, r, d.Logger, err, "Failed to fetch bookmarks")
			return
		}
		writeJSON(w, http.StatusOK, list)
	}
}

func GetBookmark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		b, err := d.Records.GetBookmark(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			writeServiceError(w, r, d.Logger, err, "Failed to fetch bookmark")
			return
		}
		writeJSON(w, http.StatusOK, b)
	}
}

func CreateBookmark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var patch domain.BookmarkPatch
		if err := decodeJSON(w, r, &patch); err != nil {
			writeServiceError(w, r, d.Logger, err, "Failed to create bookmark")
			return
		}

		b, err := d.Records.CreateBookmark(r.Context(), patch)
		if err != nil {
			writeServiceError(w, r, d.Logger, err, "Failed to create bookmark")
			return
		}
		writeJSON(w, http.StatusCreated, b)
	}
}

func UpdateBookmark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var patch domain.BookmarkPatch
		if err := decodeJSON(w, r, &patch); err != nil {
			writeServiceError(w, r, d.Logger, err, "Failed to update bookmark")
			return
		}

		b, err := d.Records.UpdateBookmark(r.Context(), chi.URLParam(r, "id"), patch)
		if err != nil {
			writeServiceError(w, r, d.Logger, err, "Failed to update bookmark")
			return
		}
		writeJSON(w, http.StatusOK, b)
	}
}

func DeleteBookmark(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := d.Records.DeleteBookmark(r.Context(), chi.URLParam(r, "id")); err != nil {
			writeServiceError(w, r, d.Logger, err, "Failed to delete bookmark")
			return
		}
		writeJSON(w, http.StatusOK, successResponse{Success: true})
	}
}

func parseListFilter(r *http.Request) (domain.ListFilter, error) {
	q := r.URL.Query()

	sortKey, err := domain.ParseSortKey(q.Get("sort"))
	if err != nil {
		return domain.ListFilter{}, fmt.Errorf("parse sort: %w", err)
	}

	var tags []string
	for _, raw := range q["tag"] {
		for _, t := range strings.Split(raw, ",") {
			if t = strings.TrimSpace(t); t != "" {
				tags = append(tags, t)
			}
		}
	}

	return domain.ListFilter{
		Category: strings.TrimSpace(q.Get("category")),
		Tags:     tags,
		Query:    q.Get("q"),
		Sort:     sortKey,
	}, nil
}
