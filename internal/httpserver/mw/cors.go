package mw

import (
	"net/http"

	"github.com/go-chi/cors"

	"github.com/MrSnakeDoc/shelf/internal/logger"
)

// CORS lets the listed browser origins call the API. If origins is empty, it is a passthrough.
func CORS(origins []string, log logger.Logger) func(http.Handler) http.Handler {
	if len(origins) == 0 {
		log.Debug("CORS: no origins configured, passthrough mode")
		return func(next http.Handler) http.Handler { return next }
	}

	log.Debugf("CORS: initialized with origins=%v", origins)

	return cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"Retry-After", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-Request-Id"},
		MaxAge:         300,
	})
}
