package adaptor

import (
	"user-admin/internal/usecase"
	"user-admin/pkg/session"
	"user-admin/pkg/utils"

	"go.uber.org/zap"
)

type Handler struct {
	Auth      *AuthHandler
	User      *UserHandler
	UserGroup *UserGroupHandler
	Admin     *AdminHandler
	Errors    *ErrorMapper
}

func NewHandler(
	service *usecase.Service,
	views *Views,
	sessions *session.Manager,
	intents *utils.IntentTokens,
	config *utils.Config,
	log *zap.Logger,
) *Handler {
	errs := NewErrorMapper(views, config.App.Debug, log)

	return &Handler{
		Auth:      NewAuthHandler(service.Auth, views, sessions, errs, log),
		User:      NewUserHandler(service.User, errs, log),
		UserGroup: NewUserGroupHandler(service.UserGroup, errs, log),
		Admin:     NewAdminHandler(service.User, service.UserGroup, views, intents, errs, log),
		Errors:    errs,
	}
}
