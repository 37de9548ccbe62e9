package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/shelf/internal/httpserver/deps"
	"github.com/MrSnakeDoc/shelf/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/shelf/internal/httpserver/mw"
)

func init() { Register(registerTags) }

func registerTags(r chi.Router, d deps.Deps) {
	guard := mw.RequireSession(d.Auth, d.Logger)

	r.Get("/tags", handlers.ListTags(d))
	r.With(guard).Post("/tags", handlers.AddTag(d))
	r.With(guard).Delete("/tags", handlers.DeleteTag(d))

	r.Get("/categories", handlers.ListCategories(d))
}
