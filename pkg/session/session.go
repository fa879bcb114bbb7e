package session

import (
	"fmt"
	"net/http"

	"user-admin/pkg/utils"

	"github.com/gorilla/sessions"
	"go.uber.org/zap"
)

const (
	CookieName = "user-admin-session"

	tokenKey = "token"
)

// Manager keeps the session token of a signed-in admin in a signed cookie.
// The token itself is validated against the sessions table on every request.
type Manager struct {
	store *sessions.CookieStore
}

func NewManager(config utils.SessionConfig, log *zap.Logger) (*Manager, error) {
	if config.Key == "" {
		return nil, fmt.Errorf("session key is empty; provide 32+ random chars")
	}

	store := sessions.NewCookieStore([]byte(config.Key))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(config.TTL.Seconds()),
		Secure:   config.Secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}

	log.Info("Session store initialized", zap.Bool("secure", config.Secure))
	return &Manager{store: store}, nil
}

// Token returns the stored session token, or "" for anonymous requests and
// cookies that fail verification.
func (m *Manager) Token(r *http.Request) string {
	sess, err := m.store.Get(r, CookieName)
	if err != nil {
		return ""
	}
	token, _ := sess.Values[tokenKey].(string)
	return token
}

func (m *Manager) SetToken(w http.ResponseWriter, r *http.Request, token string) error {
	sess, _ := m.store.Get(r, CookieName)
	sess.Values[tokenKey] = token
	return sess.Save(r, w)
}

// Clear expires the cookie.
func (m *Manager) Clear(w http.ResponseWriter, r *http.Request) error {
	sess, _ := m.store.Get(r, CookieName)
	delete(sess.Values, tokenKey)
	sess.Options.MaxAge = -1
	return sess.Save(r, w)
}
