package main

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/chayma544/BookMate-back/internal/api"
	"github.com/chayma544/BookMate-back/internal/api/middleware"
	"github.com/chayma544/BookMate-back/internal/api/shared"
)

type routerDeps struct {
	auth     *api.AuthHandler
	books    *api.BookHandler
	requests *api.RequestHandler
	users    *api.UserHandler
	authMW   *middleware.AuthMiddleware
	db       *sql.DB
}

// newRouter assembles the HTTP routes. Everything under /api except the auth
// endpoints requires a valid access token.
func newRouter(deps routerDeps) chi.Router {
	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(middleware.TraceMiddleware)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Timeout(30 * time.Second))

	r.Get("/health", healthHandler(deps.db))

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", deps.auth.Register)
			r.Post("/login", deps.auth.Login)
			r.Post("/refresh", deps.auth.Refresh)
		})

		r.Group(func(r chi.Router) {
			r.Use(deps.authMW.Authenticate)

			r.Route("/books", func(r chi.Router) {
				r.Post("/", deps.books.Create)
				r.Get("/", deps.books.Discover)
				r.Get("/search", deps.books.Discover)
				r.Get("/mine", deps.books.ListOwned)
				r.Get("/{bookID}", deps.books.Get)
				r.Patch("/{bookID}", deps.books.Update)
				r.Delete("/{bookID}", deps.books.Delete)
			})

			r.Route("/requests", func(r chi.Router) {
				r.Post("/", deps.requests.Create)
				r.Get("/", deps.requests.ListAll)
				r.Get("/sent", deps.requests.ListSent)
				r.Get("/received", deps.requests.ListReceived)
				r.Get("/{requestID}", deps.requests.Get)
				r.Put("/{requestID}/status", deps.requests.Decide)
				r.Delete("/{requestID}", deps.requests.Cancel)
			})

			r.Route("/users", func(r chi.Router) {
				r.Get("/me", deps.users.Me)
				r.Get("/{userID}", deps.users.Get)
				r.Patch("/{userID}", deps.users.Update)
				r.Delete("/{userID}", deps.users.Delete)
			})
		})
	})

	return r
}

// healthHandler reports liveness and database reachability.
func healthHandler(db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := db.PingContext(ctx); err != nil {
			shared.RespondWithJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status": "unavailable",
			})
			return
		}

		shared.RespondWithJSON(w, http.StatusOK, map[string]string{
			"status": "ok",
		})
	}
}
