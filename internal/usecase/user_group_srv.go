package usecase

import (
	"context"
	"fmt"

	"user-admin/internal/data/entity"
	"user-admin/internal/data/repository"
	"user-admin/internal/dto/request"
	"user-admin/internal/dto/response"
	"user-admin/pkg/utils"

	"go.uber.org/zap"
)

type UserGroupService interface {
	GetGroup(ctx context.Context, id int64) (*response.UserGroupResponse, error)
	ListGroups(ctx context.Context, req *request.PaginatedRequest) (*response.PaginatedResponse[response.UserGroupResponse], error)
	CreateGroup(ctx context.Context, req *request.CreateUserGroupRequest) (*response.UserGroupResponse, error)
	UpdateGroup(ctx context.Context, id int64, req *request.UpdateUserGroupRequest) (*response.UserGroupResponse, error)
	DeleteGroup(ctx context.Context, id int64) error
	CountGroups(ctx context.Context) (int64, error)
}

type userGroupService struct {
	groupRepo repository.UserGroupRepository
	log       *zap.Logger
}

func NewUserGroupService(repo *repository.Repository, log *zap.Logger) UserGroupService {
	return &userGroupService{
		groupRepo: repo.UserGroup,
		log:       log.With(zap.String("service", "user_group")),
	}
}

func (gs *userGroupService) GetGroup(ctx context.Context, id int64) (*response.UserGroupResponse, error) {
	group, err := gs.findGroup(ctx, id)
	if err != nil {
		return nil, err
	}

	resp := response.UserGroupToResponse(group)
	return &resp, nil
}

func (gs *userGroupService) findGroup(ctx context.Context, id int64) (*entity.UserGroup, error) {
	group, err := gs.groupRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load user group %d: %w", id, err)
	}
	if group == nil {
		return nil, fmt.Errorf("user group %d: %w", id, ErrNotFound)
	}
	return group, nil
}

func (gs *userGroupService) ListGroups(ctx context.Context, req *request.PaginatedRequest) (*response.PaginatedResponse[response.UserGroupResponse], error) {
	groups, err := gs.groupRepo.FindAll(ctx, req.Limit(), req.Offset())
	if err != nil {
		return nil, fmt.Errorf("list user groups: %w", err)
	}

	total, err := gs.groupRepo.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count user groups: %w", err)
	}

	data := make([]response.UserGroupResponse, 0, len(groups))
	for _, g := range groups {
		data = append(data, response.UserGroupToResponse(g))
	}

	return response.NewPaginatedResponse(data, req.CurrentPage(), utils.PageSize, total), nil
}

func (gs *userGroupService) CreateGroup(ctx context.Context, req *request.CreateUserGroupRequest) (*response.UserGroupResponse, error) {
	if err := gs.validateName(ctx, req, req.Name, 0); err != nil {
		return nil, err
	}

	group := &entity.UserGroup{Name: req.Name}
	if err := gs.groupRepo.Create(ctx, group); err != nil {
		return nil, fromRepository(err, "create user group")
	}

	gs.log.Info("User group created",
		zap.Int64("group_id", group.ID),
		zap.String("name", group.Name),
	)

	resp := response.UserGroupToResponse(group)
	return &resp, nil
}

func (gs *userGroupService) UpdateGroup(ctx context.Context, id int64, req *request.UpdateUserGroupRequest) (*response.UserGroupResponse, error) {
	group, err := gs.findGroup(ctx, id)
	if err != nil {
		return nil, err
	}

	name := deref(req.Name)
	if name == "" || name == group.Name {
		resp := response.UserGroupToResponse(group)
		return &resp, nil
	}

	if err := gs.validateName(ctx, req, name, id); err != nil {
		return nil, err
	}

	group.Name = name
	if err := gs.groupRepo.Update(ctx, group); err != nil {
		return nil, fromRepository(err, fmt.Sprintf("user group %d", id))
	}

	gs.log.Info("User group updated", zap.Int64("group_id", id))

	resp := response.UserGroupToResponse(group)
	return &resp, nil
}

// validateName checks the struct tags of req and that no other group than
// exceptID already uses name.
func (gs *userGroupService) validateName(ctx context.Context, req any, name string, exceptID int64) error {
	violations := utils.ValidateStruct(req)

	if name != "" {
		existing, err := gs.groupRepo.FindByName(ctx, name)
		if err != nil {
			return fmt.Errorf("check group name: %w", err)
		}
		if existing != nil && existing.ID != exceptID {
			violations = append(violations, utils.Violation{Field: "name", Message: uniqueMessage})
		}
	}

	if len(violations) > 0 {
		return &ValidationError{Violations: violations}
	}
	return nil
}

// DeleteGroup drops the group from every member's membership set.
func (gs *userGroupService) DeleteGroup(ctx context.Context, id int64) error {
	if err := gs.groupRepo.Delete(ctx, id); err != nil {
		return fromRepository(err, fmt.Sprintf("user group %d", id))
	}
	return nil
}

func (gs *userGroupService) CountGroups(ctx context.Context) (int64, error) {
	return gs.groupRepo.Count(ctx)
}
