package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/shelf/internal/httpserver/deps"
	"github.com/MrSnakeDoc/shelf/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/shelf/internal/httpserver/mw"
)

func init() { Register(registerAuth) }

func registerAuth(r chi.Router, d deps.Deps) {
	limit := mw.RateLimit(mw.RateLimitConfig{
		Name:              "login",
		Burst:             d.LoginBurst,
		RefillPerIPPerMin: d.LoginRefillPerMin,
		MaxEntries:        10_000,
		TrustProxy:        d.TrustProxy,
		Now:               d.TimeNow,
	}, d.Logger)

	r.With(limit).Post("/auth/login", handlers.Login(d))
	r.Delete("/auth/login", handlers.Logout(d))
}
