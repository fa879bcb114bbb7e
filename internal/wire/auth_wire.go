package wire

import (
	"user-admin/internal/adaptor"

	"github.com/go-chi/chi/v5"
)

func wireAuth(r chi.Router, authHandler *adaptor.AuthHandler, g guards) {
	// API
	r.Post("/api/login", authHandler.Login)
	r.With(g.bearer).Post("/api/logout", authHandler.Logout)

	// Pages
	r.Group(func(r chi.Router) {
		r.Use(g.browser)
		r.Get("/", authHandler.Home)
		r.Get("/login", authHandler.LoginForm)
		r.Post("/login", authHandler.LoginSubmit)
		r.Post("/logout", authHandler.LogoutSubmit)
	})
}
