package routes

import (
	"path"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/MrSnakeDoc/shelf/internal/httpserver/deps"
	"github.com/MrSnakeDoc/shelf/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/shelf/internal/httpserver/mw"
)

func init() { Register(registerBookmarks) }

func registerBookmarks(r chi.Router, d deps.Deps) {
	base := d.BasePath
	if base == "" {
		base = "/"
	}

	r.Group(func(r chi.Router) {
		r.Use(mw.EnforceHost(d.AllowedHosts, d.Logger))
		r.Use(mw.RateLimit(d.RateLimit, d.Logger))
		r.Use(middleware.RequestSize(handlers.MaxBodyBytes))

		// The diagnostic path needs no caller identity.
		r.Get(path.Join(base, "test"), handlers.BookmarkTest(d))

		r.Group(func(r chi.Router) {
			r.Use(mw.Authenticate(d.Verifier, d.Logger))
			r.Get(base, handlers.ListBookmarks(d))
			r.Post(base, handlers.CreateBookmark(d))
			r.Put(base, handlers.UpdateBookmark(d))
			r.Delete(base, handlers.DeleteBookmark(d))
		})
	})
}
