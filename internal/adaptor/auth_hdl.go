package adaptor

import (
	"errors"
	"net/http"
	"net/url"
	"strings"

	"user-admin/internal/dto/request"
	"user-admin/internal/usecase"
	"user-admin/pkg/session"
	"user-admin/pkg/utils"

	"go.uber.org/zap"
)

const defaultLanding = "/admin"

type AuthHandler struct {
	service  usecase.AuthService
	views    *Views
	sessions *session.Manager
	errs     *ErrorMapper
	log      *zap.Logger
}

func NewAuthHandler(
	service usecase.AuthService,
	views *Views,
	sessions *session.Manager,
	errs *ErrorMapper,
	log *zap.Logger,
) *AuthHandler {
	return &AuthHandler{
		service:  service,
		views:    views,
		sessions: sessions,
		errs:     errs,
		log:      log.With(zap.String("handler", "auth")),
	}
}

// Login handles POST /api/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req request.LoginRequest
	if err := decodeBody(w, r, &req); err != nil {
		h.errs.Handle(w, r, err)
		return
	}
	req.UserAgent = r.UserAgent()
	req.IPAddress = r.RemoteAddr

	resp, err := h.service.Login(r.Context(), &req)
	if err != nil {
		h.errs.Handle(w, r, err)
		return
	}

	utils.ResponseSuccess(w, resp)
}

// Logout handles POST /api/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	principal, ok := utils.PrincipalFromContext(r.Context())
	if !ok {
		h.errs.Handle(w, r, usecase.ErrUnauthorized)
		return
	}

	if err := h.service.Logout(r.Context(), principal.Token); err != nil {
		h.errs.Handle(w, r, err)
		return
	}

	utils.ResponseNoContent(w)
}

type loginPage struct {
	Email  string
	Return string
	Error  string
}

// Home handles GET /
func (h *AuthHandler) Home(w http.ResponseWriter, r *http.Request) {
	h.views.Render(w, r, http.StatusOK, "home", "Welcome", nil)
}

// LoginForm handles GET /login
func (h *AuthHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	h.views.Render(w, r, http.StatusOK, "login", "Log in", loginPage{
		Return: safeReturn(r.URL.Query().Get("return")),
	})
}

// LoginSubmit handles POST /login. The CSRF token has already been checked
// by the time it runs.
func (h *AuthHandler) LoginSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.errs.Handle(w, r, usecase.ErrInvalidArgument)
		return
	}

	form := loginPage{
		Email:  strings.TrimSpace(r.PostFormValue("email")),
		Return: safeReturn(r.PostFormValue("return")),
	}

	resp, err := h.service.Login(r.Context(), &request.LoginRequest{
		Email:     form.Email,
		Password:  r.PostFormValue("password"),
		UserAgent: r.UserAgent(),
		IPAddress: r.RemoteAddr,
	})
	switch {
	case errors.Is(err, usecase.ErrEmailNotFound):
		form.Error = "Email could not be found."
	case errors.Is(err, usecase.ErrInvalidCredentials):
		form.Error = "Invalid credentials."
	case err != nil:
		h.errs.Handle(w, r, err)
		return
	}
	if form.Error != "" {
		h.views.Render(w, r, http.StatusUnauthorized, "login", "Log in", form)
		return
	}

	if err := h.sessions.SetToken(w, r, resp.Token); err != nil {
		h.errs.Handle(w, r, err)
		return
	}

	target := form.Return
	if target == "" {
		target = defaultLanding
	}
	http.Redirect(w, r, target, http.StatusSeeOther)
}

// LogoutSubmit handles POST /logout
func (h *AuthHandler) LogoutSubmit(w http.ResponseWriter, r *http.Request) {
	if token := h.sessions.Token(r); token != "" {
		if err := h.service.Logout(r.Context(), token); err != nil && !errors.Is(err, usecase.ErrUnauthorized) {
			h.log.Warn("Failed to revoke session on logout", zap.Error(err))
		}
	}

	if err := h.sessions.Clear(w, r); err != nil {
		h.log.Warn("Failed to clear session cookie", zap.Error(err))
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// safeReturn keeps only same-site relative paths.
func safeReturn(target string) string {
	if target == "" || !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") || strings.Contains(target, `\`) {
		return ""
	}
	u, err := url.Parse(target)
	if err != nil || u.IsAbs() || u.Host != "" {
		return ""
	}
	return target
}
