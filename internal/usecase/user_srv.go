package usecase

import (
	"context"
	"fmt"
	"slices"

	"user-admin/internal/data/entity"
	"user-admin/internal/data/repository"
	"user-admin/internal/dto/request"
	"user-admin/internal/dto/response"
	"user-admin/pkg/utils"

	"go.uber.org/zap"
)

type UserService interface {
	GetUser(ctx context.Context, id int64) (*response.UserResponse, error)
	ListUsers(ctx context.Context, req *request.ListUsersRequest) (*response.PaginatedResponse[response.UserResponse], error)
	CreateUser(ctx context.Context, req *request.CreateUserRequest) (*response.UserResponse, error)
	UpdateUser(ctx context.Context, id int64, req *request.UpdateUserRequest) (*response.UserResponse, error)
	DeleteUser(ctx context.Context, id int64) error
	AddGroup(ctx context.Context, userID, groupID int64) (*response.UserResponse, error)
	RemoveGroup(ctx context.Context, userID, groupID int64) (*response.UserResponse, error)
	GroupOptions(ctx context.Context) ([]response.UserGroupSummary, error)
	CountUsers(ctx context.Context) (int64, error)
}

type userService struct {
	userRepo  repository.UserRepository
	groupRepo repository.UserGroupRepository
	log       *zap.Logger
}

func NewUserService(repo *repository.Repository, log *zap.Logger) UserService {
	return &userService{
		userRepo:  repo.User,
		groupRepo: repo.UserGroup,
		log:       log.With(zap.String("service", "user")),
	}
}

func (us *userService) GetUser(ctx context.Context, id int64) (*response.UserResponse, error) {
	user, err := us.findUser(ctx, id)
	if err != nil {
		return nil, err
	}

	resp := response.UserToResponse(user)
	return &resp, nil
}

func (us *userService) findUser(ctx context.Context, id int64) (*entity.User, error) {
	user, err := us.userRepo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("load user %d: %w", id, err)
	}
	if user == nil {
		return nil, fmt.Errorf("user %d: %w", id, ErrNotFound)
	}
	return user, nil
}

func (us *userService) ListUsers(ctx context.Context, req *request.ListUsersRequest) (*response.PaginatedResponse[response.UserResponse], error) {
	users, err := us.userRepo.FindAll(ctx, req.Email, req.Limit(), req.Offset())
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	total, err := us.userRepo.Count(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}

	data := make([]response.UserResponse, 0, len(users))
	for _, u := range users {
		data = append(data, response.UserToResponse(u))
	}

	return response.NewPaginatedResponse(data, req.CurrentPage(), utils.PageSize, total), nil
}

func (us *userService) CreateUser(ctx context.Context, req *request.CreateUserRequest) (*response.UserResponse, error) {
	// 1. Roles must all be known before anything else is checked
	roles, err := entity.ParseRoles(req.Roles)
	if err != nil {
		return nil, invalidArgument(err)
	}

	// 2. Field constraints plus email uniqueness, reported together
	violations := utils.ValidateStruct(req)
	if req.Email != "" {
		taken, err := us.emailTaken(ctx, req.Email, 0)
		if err != nil {
			return nil, err
		}
		if taken {
			violations = append(violations, utils.Violation{Field: "email", Message: uniqueMessage})
		}
	}
	if len(violations) > 0 {
		us.log.Debug("Create user validation failed", zap.Any("violations", violations))
		return nil, &ValidationError{Violations: violations}
	}

	// 3. Groups picked on the admin form
	groups, err := us.resolveGroups(ctx, req.GroupIDs)
	if err != nil {
		return nil, err
	}

	// 4. Hash password
	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &entity.User{
		Email:        req.Email,
		PasswordHash: hashedPassword,
		Roles:        roles,
		Groups:       groups,
	}

	if err := us.userRepo.Create(ctx, user); err != nil {
		return nil, fromRepository(err, "create user")
	}

	us.log.Info("User created",
		zap.Int64("user_id", user.ID),
		zap.String("email", user.Email),
	)

	resp := response.UserToResponse(user)
	return &resp, nil
}

func (us *userService) UpdateUser(ctx context.Context, id int64, req *request.UpdateUserRequest) (*response.UserResponse, error) {
	user, err := us.findUser(ctx, id)
	if err != nil {
		return nil, err
	}

	changed := false

	if roles := deref(req.Roles); roles != "" {
		parsed, err := entity.ParseRoles(roles)
		if err != nil {
			return nil, invalidArgument(err)
		}
		user.Roles = parsed
		changed = true
	}

	violations := utils.ValidateStruct(req)
	if email := deref(req.Email); email != "" && email != user.Email {
		taken, err := us.emailTaken(ctx, email, user.ID)
		if err != nil {
			return nil, err
		}
		if taken {
			violations = append(violations, utils.Violation{Field: "email", Message: uniqueMessage})
		}
		user.Email = email
		changed = true
	}
	if len(violations) > 0 {
		return nil, &ValidationError{Violations: violations}
	}

	if password := deref(req.Password); password != "" {
		hashedPassword, err := utils.HashPassword(password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		user.PasswordHash = hashedPassword
		changed = true
	}

	if req.GroupIDs != nil {
		groups, err := us.resolveGroups(ctx, *req.GroupIDs)
		if err != nil {
			return nil, err
		}
		if !slices.Equal(groupIDs(groups), user.GroupIDs()) {
			user.Groups = groups
			changed = true
		}
	}

	if changed {
		if err := us.userRepo.Save(ctx, user); err != nil {
			return nil, fromRepository(err, fmt.Sprintf("user %d", id))
		}
		us.log.Info("User updated", zap.Int64("user_id", id))
	}

	resp := response.UserToResponse(user)
	return &resp, nil
}

func (us *userService) DeleteUser(ctx context.Context, id int64) error {
	if err := us.userRepo.Delete(ctx, id); err != nil {
		return fromRepository(err, fmt.Sprintf("user %d", id))
	}
	return nil
}

func (us *userService) AddGroup(ctx context.Context, userID, groupID int64) (*response.UserResponse, error) {
	user, group, err := us.findMembership(ctx, userID, groupID)
	if err != nil {
		return nil, err
	}

	if !user.AddGroup(group) {
		return nil, fmt.Errorf("user %d already belongs to group %d: %w", userID, groupID, ErrDuplicateRelation)
	}

	if err := us.userRepo.Save(ctx, user); err != nil {
		return nil, fromRepository(err, fmt.Sprintf("user %d", userID))
	}

	us.log.Info("User added to group",
		zap.Int64("user_id", userID),
		zap.Int64("group_id", groupID),
	)

	resp := response.UserToResponse(user)
	return &resp, nil
}

func (us *userService) RemoveGroup(ctx context.Context, userID, groupID int64) (*response.UserResponse, error) {
	user, _, err := us.findMembership(ctx, userID, groupID)
	if err != nil {
		return nil, err
	}

	if !user.RemoveGroup(groupID) {
		return nil, fmt.Errorf("user %d does not belong to group %d: %w", userID, groupID, ErrRelationNotFound)
	}

	if err := us.userRepo.Save(ctx, user); err != nil {
		return nil, fromRepository(err, fmt.Sprintf("user %d", userID))
	}

	us.log.Info("User removed from group",
		zap.Int64("user_id", userID),
		zap.Int64("group_id", groupID),
	)

	resp := response.UserToResponse(user)
	return &resp, nil
}

func (us *userService) findMembership(ctx context.Context, userID, groupID int64) (*entity.User, *entity.UserGroup, error) {
	user, err := us.findUser(ctx, userID)
	if err != nil {
		return nil, nil, err
	}

	group, err := us.groupRepo.FindByID(ctx, groupID)
	if err != nil {
		return nil, nil, fmt.Errorf("load user group %d: %w", groupID, err)
	}
	if group == nil {
		return nil, nil, fmt.Errorf("user group %d: %w", groupID, ErrNotFound)
	}

	return user, group, nil
}

func (us *userService) GroupOptions(ctx context.Context) ([]response.UserGroupSummary, error) {
	groups, err := us.groupRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list group options: %w", err)
	}

	options := make([]response.UserGroupSummary, 0, len(groups))
	for _, g := range groups {
		options = append(options, response.UserGroupSummary{ID: g.ID, Name: g.Name})
	}
	return options, nil
}

func (us *userService) CountUsers(ctx context.Context) (int64, error) {
	return us.userRepo.Count(ctx, "")
}

// emailTaken reports whether another user than exceptID owns email.
func (us *userService) emailTaken(ctx context.Context, email string, exceptID int64) (bool, error) {
	existing, err := us.userRepo.FindByEmail(ctx, email)
	if err != nil {
		return false, fmt.Errorf("check email: %w", err)
	}
	return existing != nil && existing.ID != exceptID, nil
}

// resolveGroups loads the groups for ids, failing on the first unknown id.
func (us *userService) resolveGroups(ctx context.Context, ids []int64) ([]*entity.UserGroup, error) {
	ids = slices.Compact(slices.Sorted(slices.Values(ids)))
	if len(ids) == 0 {
		return []*entity.UserGroup{}, nil
	}

	groups, err := us.groupRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load user groups: %w", err)
	}
	if len(groups) != len(ids) {
		found := groupIDs(groups)
		for _, id := range ids {
			if !slices.Contains(found, id) {
				return nil, fmt.Errorf("user group %d: %w", id, ErrNotFound)
			}
		}
	}
	return groups, nil
}

func groupIDs(groups []*entity.UserGroup) []int64 {
	ids := make([]int64, len(groups))
	for i, g := range groups {
		ids[i] = g.ID
	}
	return ids
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
