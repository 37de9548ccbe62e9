package handlers

import (
	"net/http"
	"time"

	"github.com/MrSnakeDoc/shelf/internal/httpserver/deps"
)

type componentStatus struct {
	OK        bool   `json:"ok"`
	Backend   string `json:"backend,omitempty"`
	Bookmarks *int   `json:"bookmarks,omitempty"`
	LastCheck string `json:"last_check,omitempty"`
	Mode      string `json:"mode,omitempty"`
	Error     string `json:"error,omitempty"`
}

type infraResponse struct {
	Mode       string                     `json:"mode"`
	Components map[string]componentStatus `json:"components"`
}

// Infra reports the last background probe of the store and the cover lookup mode.
func Infra(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		components := map[string]componentStatus{
			"store":  storeComponent(d),
			"covers": coversComponent(d),
		}

		writeJSON(w, http.StatusOK, infraResponse{
			Mode:       determineMode(components),
			Components: components,
		})
	}
}

func storeComponent(d deps.Deps) componentStatus {
	if d.Health == nil {
		return componentStatus{OK: false, Error: "monitor not running"}
	}

	s := d.Health.Status()
	lastCheck := "never"
	if !s.LastCheck.IsZero() {
		lastCheck = s.LastCheck.UTC().Format(time.RFC3339)
	}
	count := s.Bookmarks

	return componentStatus{
		OK:        s.OK,
		Backend:   s.Backend,
		Bookmarks: &count,
		LastCheck: lastCheck,
		Error:     s.Error,
	}
}

func coversComponent(d deps.Deps) componentStatus {
	if d.Covers == nil {
		return componentStatus{OK: true, Mode: "disabled"}
	}
	return componentStatus{OK: true, Mode: "og:image"}
}

// determineMode is "critical" when the store is down, "ok" otherwise.
func determineMode(components map[string]componentStatus) string {
	if st, exists := components["store"]; exists && !st.OK {
		return "critical"
	}
	return "ok"
}
