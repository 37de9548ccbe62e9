package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/shelf/internal/httpserver/deps"
)

type tagRequest struct {
	Tag string `json:"tag"`
}

type tagResponse struct {
	Tag string `json:"tag"`
}

func ListTags(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tags, err := d.Records.ListTags(r.Context())
		if err != nil {
			writeServiceError(w, r, d.Logger, err, "Failed to fetch tags")
			return
		}
		writeJSON(w, http.StatusOK, orEmpty(tags))
	}
}

// AddTag appends a tag. The list is not deduplicated.
func AddTag(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req tagRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeServiceError(w, r, d.Logger, err, "Failed to add tag")
			return
		}

		tag, err := d.Records.AddTag(r.Context(), req.Tag)
		if err != nil {
			writeServiceError(w, r, d.Logger, err, "Failed to add tag")
			return
		}
		writeJSON(w, http.StatusCreated, tagResponse{Tag: tag})
	}
}

// DeleteTag removes ?tag=name from the list.
func DeleteTag(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := d.Records.DeleteTag(r.Context(), r.URL.Query().Get("tag")); err != nil {
			writeServiceError(w, r, d.Logger, err, "Failed to delete tag")
			return
		}
		writeJSON(w, http.StatusOK, successResponse{Success: true})
	}
}

func ListCategories(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		categories, err := d.Records.ListCategories(r.Context())
		if err != nil {
			writeServiceError(w, r, d.Logger, err, "Failed to fetch categories")
			return
		}
		writeJSON(w, http.StatusOK, orEmpty(categories))
	}
}

func orEmpty(list []string) []string {
	if list == nil {
		return []string{}
	}
	return list
}
