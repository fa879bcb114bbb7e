package wire

import (
	"user-admin/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

// wireUser configures the user API; every route needs an admin bearer token
func wireUser(r chi.Router, userHandler *adaptor.UserHandler, g guards) {
	r.With(g.bearer, g.admin).Route("/api/users", func(r chi.Router) {
		r.Get("/", userHandler.List) // GET /api/users?page=1&email=foo
		r.Post("/", userHandler.Create)
		r.Get("/{id}", userHandler.Get)
		r.Put("/{id}", userHandler.Update)
		r.Delete("/{id}", userHandler.Delete)

		r.Put("/{id}/add-group/{groupId}", userHandler.AddGroup)
		r.Put("/{id}/remove-group/{groupId}", userHandler.RemoveGroup)
	})
}
