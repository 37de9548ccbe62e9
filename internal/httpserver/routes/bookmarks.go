package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/shelf/internal/httpserver/deps"
	"github.com/MrSnakeDoc/shelf/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/shelf/internal/httpserver/mw"
)

func init() { Register(registerBookmarks) }

func registerBookmarks(r chi.Router, d deps.Deps) {
	guard := mw.RequireSession(d.Auth, d.Logger)

	r.Get("/bookmarks", handlers.ListBookmarks(d))
	r.Get("/bookmarks/{id}", handlers.GetBookmark(d))

	r.With(guard).Post("/bookmarks", handlers.CreateBookmark(d))
	r.With(guard).Put("/bookmarks/{id}", handlers.UpdateBookmark(d))
	r.With(guard).Delete("/bookmarks/{id}", handlers.DeleteBookmark(d))

	r.With(guard).Get("/admin/bookmarks", handlers.ListAdminBookmarks(d))
}
