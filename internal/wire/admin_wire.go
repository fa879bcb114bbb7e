package wire

import (
	"user-admin/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

// wireAdmin mounts the server-rendered back office behind the session login
// and the admin role.
func wireAdmin(r chi.Router, adminHandler *adaptor.AdminHandler, g guards) {
	r.With(g.browser, g.admin).Route("/admin", func(r chi.Router) {
		r.Get("/", adminHandler.Dashboard)

		r.Route("/user", func(r chi.Router) {
			r.Get("/", adminHandler.UserIndex)
			r.Get("/new", adminHandler.UserNew)
			r.Post("/new", adminHandler.UserCreate)
			r.Get("/{id}/edit", adminHandler.UserEdit)
			r.Post("/{id}/edit", adminHandler.UserUpdate)
			r.Post("/{id}/delete", adminHandler.UserDelete)
		})

		r.Route("/user-group", func(r chi.Router) {
			r.Get("/", adminHandler.GroupIndex)
			r.Get("/new", adminHandler.GroupNew)
			r.Post("/new", adminHandler.GroupCreate)
			r.Get("/{id}/edit", adminHandler.GroupEdit)
			r.Post("/{id}/edit", adminHandler.GroupUpdate)
			r.Post("/{id}/delete", adminHandler.GroupDelete)
			r.Post("/{id}/remove-user/{userId}", adminHandler.GroupRemoveUser)
		})
	})
}
