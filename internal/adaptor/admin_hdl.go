package adaptor

import (
	"errors"
	"net/http"

	"user-admin/internal/dto/response"
	"user-admin/internal/usecase"
	"user-admin/pkg/utils"

	"go.uber.org/zap"
)

// Intents of the signed per-entity action tokens.
const (
	intentDeleteUser      = "delete_user"
	intentDeleteUserGroup = "delete_user_group"
	intentRemoveMember    = "remove_member"
)

// AdminHandler serves the server-rendered admin pages. Every route sits
// behind the ROLE_ADMIN gate.
type AdminHandler struct {
	users   usecase.UserService
	groups  usecase.UserGroupService
	views   *Views
	intents *utils.IntentTokens
	errs    *ErrorMapper
	log     *zap.Logger
}

func NewAdminHandler(
	users usecase.UserService,
	groups usecase.UserGroupService,
	views *Views,
	intents *utils.IntentTokens,
	errs *ErrorMapper,
	log *zap.Logger,
) *AdminHandler {
	return &AdminHandler{
		users:   users,
		groups:  groups,
		views:   views,
		intents: intents,
		errs:    errs,
		log:     log.With(zap.String("handler", "admin")),
	}
}

// Dashboard handles GET /admin
func (h *AdminHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.CountUsers(r.Context())
	if err != nil {
		h.errs.Handle(w, r, err)
		return
	}
	groups, err := h.groups.CountGroups(r.Context())
	if err != nil {
		h.errs.Handle(w, r, err)
		return
	}

	h.views.Render(w, r, http.StatusOK, "dashboard", "Dashboard", response.DashboardResponse{
		Users:  users,
		Groups: groups,
	})
}

// sessionToken binds action tokens to the signed-in admin's session.
func sessionToken(r *http.Request) string {
	if p, ok := utils.PrincipalFromContext(r.Context()); ok {
		return p.Token
	}
	return ""
}

func (h *AdminHandler) actionToken(r *http.Request, intent string, id int64) string {
	return h.intents.Generate(intent, id, sessionToken(r))
}

// validAction checks the _token form field. A mismatch is logged and the
// caller silently skips the action.
func (h *AdminHandler) validAction(r *http.Request, intent string, id int64) bool {
	if h.intents.Valid(intent, id, sessionToken(r), r.PostFormValue("_token")) {
		return true
	}
	h.log.Warn("Ignoring action with invalid token",
		zap.String("intent", intent),
		zap.Int64("id", id),
	)
	return false
}

// formViolations extracts what a form re-render should show. Other errors
// go to the error page.
func formViolations(err error) ([]utils.Violation, bool) {
	var validationErr *usecase.ValidationError
	if errors.As(err, &validationErr) {
		return validationErr.Violations, true
	}
	if errors.Is(err, usecase.ErrInvalidArgument) {
		return []utils.Violation{{Message: err.Error()}}, true
	}
	return nil, false
}
