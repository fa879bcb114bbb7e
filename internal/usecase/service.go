package usecase

import (
	"user-admin/internal/data/repository"
	"user-admin/pkg/utils"

	"go.uber.org/zap"
)

type Service struct {
	Auth      AuthService
	User      UserService
	UserGroup UserGroupService
}

func NewService(repo *repository.Repository, config *utils.Config, log *zap.Logger) *Service {
	return &Service{
		Auth:      NewAuthService(repo, config, log),
		User:      NewUserService(repo, log),
		UserGroup: NewUserGroupService(repo, log),
	}
}
