package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/shelf/internal/httpserver/deps"
	"github.com/MrSnakeDoc/shelf/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/shelf/internal/httpserver/mw"
)

func init() { Register(registerCover) }

func registerCover(r chi.Router, d deps.Deps) {
	limit := mw.RateLimit(mw.RateLimitConfig{
		Name:              "fetch-cover",
		Burst:             d.LoginBurst,
		RefillPerIPPerMin: d.LoginRefillPerMin,
		MaxEntries:        10_000,
		TrustProxy:        d.TrustProxy,
		Now:               d.TimeNow,
	}, d.Logger)

	r.With(limit).Get("/fetch-cover", handlers.FetchCover(d))
}
