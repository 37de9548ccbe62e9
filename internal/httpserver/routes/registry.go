package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/shelf/internal/httpserver/deps"
)

type (
	Registrar  func(r chi.Router, d deps.Deps)
	Middleware = func(http.Handler) http.Handler
)

type entry struct {
	reg Registrar
	mws []Middleware
}

var (
	apiRegistry  []entry
	rootRegistry []entry
)

// Register adds a registrar mounted under /api, with optional per-route middlewares.
func Register(reg Registrar, mws ...Middleware) {
	apiRegistry = append(apiRegistry, entry{reg: reg, mws: mws})
}

// RegisterRoot adds a registrar mounted at the root (operational endpoints).
func RegisterRoot(reg Registrar, mws ...Middleware) {
	rootRegistry = append(rootRegistry, entry{reg: reg, mws: mws})
}

// RegisterAll mounts the root registrars, then the /api registrars behind apiMws.
func RegisterAll(r chi.Router, d deps.Deps, apiMws ...Middleware) {
	apply(r, d, rootRegistry)

	r.Route("/api", func(api chi.Router) {
		api.Use(apiMws...)
		apply(api, d, apiRegistry)
	})
}

func apply(r chi.Router, d deps.Deps, entries []entry) {
	for _, e := range entries {
		if len(e.mws) == 0 {
			e.reg(r, d)
			continue
		}
		sub := r.With(e.mws...) // apply per-route middlewares
		e.reg(sub, d)
	}
}
