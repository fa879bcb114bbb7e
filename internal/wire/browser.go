package wire

import (
	"fmt"
	"net/http"

	"user-admin/internal/adaptor"
	"user-admin/internal/usecase"
	"user-admin/pkg/middleware"
	"user-admin/pkg/session"
	"user-admin/pkg/utils"

	"github.com/gorilla/csrf"
	"go.uber.org/zap"
)

const (
	csrfFieldName  = "_csrf_token"
	csrfCookieName = "user-admin-csrf"
)

// browserChain protects the server-rendered pages: CSRF tokens on every
// unsafe method, then the cookie session resolved into a principal.
func browserChain(
	sessions *session.Manager,
	auth usecase.AuthService,
	errs *adaptor.ErrorMapper,
	config *utils.Config,
	log *zap.Logger,
) func(http.Handler) http.Handler {
	protect := csrf.Protect(
		[]byte(config.Session.CSRFKey),
		csrf.Secure(config.Session.Secure),
		csrf.Path("/"),
		csrf.CookieName(csrfCookieName),
		csrf.FieldName(csrfFieldName),
		csrf.SameSite(csrf.SameSiteLaxMode),
		csrf.ErrorHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			errs.Handle(w, r, fmt.Errorf("csrf check: %v: %w", csrf.FailureReason(r), usecase.ErrForbidden))
		})),
	)
	authenticate := middleware.SessionAuth(sessions, auth, log, errs.Handle)

	return func(next http.Handler) http.Handler {
		protected := protect(authenticate(next))
		if config.Session.Secure {
			return protected
		}
		// Without TLS the origin check has to compare against http:// URLs
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			protected.ServeHTTP(w, csrf.PlaintextHTTPRequest(r))
		})
	}
}
