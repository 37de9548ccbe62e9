package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/shelf/internal/httpserver/deps"
)

type coverResponse struct {
	CoverURL string `json:"coverUrl"`
}

// FetchCover scrapes ?url= for an og:image. Any failure yields an empty coverUrl.
func FetchCover(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pageURL := r.URL.Query().Get("url")
		if pageURL == "" {
			writeError(w, http.StatusBadRequest, "url param required")
			return
		}

		var cover string
		if d.Covers != nil {
			cover = d.Covers.Resolve(r.Context(), pageURL)
		}
		writeJSON(w, http.StatusOK, coverResponse{CoverURL: cover})
	}
}
