package wire

import (
	"user-admin/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

func wireUserGroup(r chi.Router, groupHandler *adaptor.UserGroupHandler, g guards) {
	r.With(g.bearer, g.admin).Route("/api/user-groups", func(r chi.Router) {
		r.Get("/", groupHandler.List)
		r.Post("/", groupHandler.Create)
		r.Get("/{id}", groupHandler.Get)
		r.Put("/{id}", groupHandler.Update)
		r.Delete("/{id}", groupHandler.Delete)
	})
}
