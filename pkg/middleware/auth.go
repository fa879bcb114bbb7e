package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"user-admin/internal/usecase"
	"user-admin/pkg/session"
	"user-admin/pkg/utils"

	"go.uber.org/zap"
)

// ErrorHandler writes the response for a failed request.
type ErrorHandler func(w http.ResponseWriter, r *http.Request, err error)

// BearerAuth resolves "Authorization: Bearer <token>" into the request
// principal. Requests without a valid token never reach next.
func BearerAuth(auth usecase.AuthService, onError ErrorHandler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				onError(w, r, fmt.Errorf("missing authorization token: %w", usecase.ErrUnauthorized))
				return
			}

			scheme, token, found := strings.Cut(authHeader, " ")
			if !found || !strings.EqualFold(scheme, "Bearer") || token == "" {
				onError(w, r, fmt.Errorf("invalid token format, use: Bearer <token>: %w", usecase.ErrUnauthorized))
				return
			}

			principal, err := auth.Authenticate(r.Context(), token)
			if err != nil {
				onError(w, r, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(utils.SetPrincipal(r.Context(), principal)))
		})
	}
}

// SessionAuth loads the principal behind the admin cookie. Anonymous
// requests and stale sessions pass through without one.
func SessionAuth(sessions *session.Manager, auth usecase.AuthService, logger *zap.Logger, onError ErrorHandler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := sessions.Token(r)
			if token == "" {
				next.ServeHTTP(w, r)
				return
			}

			principal, err := auth.Authenticate(r.Context(), token)
			if errors.Is(err, usecase.ErrUnauthorized) {
				logger.Debug("Stale admin session", zap.Error(err))
				next.ServeHTTP(w, r)
				return
			}
			if err != nil {
				onError(w, r, err)
				return
			}

			next.ServeHTTP(w, r.WithContext(utils.SetPrincipal(r.Context(), principal)))
		})
	}
}

// RequireRole lets through principals holding role. Browsers without a
// principal are sent to the login page with the current URI as return
// target; other callers get ErrUnauthorized, and principals lacking the role
// get ErrForbidden.
func RequireRole(role string, logger *zap.Logger, onError ErrorHandler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := utils.PrincipalFromContext(r.Context())
			if !ok {
				if wantsHTML(r) {
					http.Redirect(w, r, "/login?return="+url.QueryEscape(r.URL.RequestURI()), http.StatusSeeOther)
					return
				}
				onError(w, r, fmt.Errorf("authentication required: %w", usecase.ErrUnauthorized))
				return
			}

			if !principal.HasRole(role) {
				logger.Warn("Role check failed",
					zap.Int64("user_id", principal.UserID),
					zap.String("role", role),
					zap.String("path", r.URL.Path),
				)
				onError(w, r, fmt.Errorf("%s required: %w", role, usecase.ErrForbidden))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func wantsHTML(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "text/html")
}
