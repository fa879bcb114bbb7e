package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"user-admin/internal/data/repository"
	"user-admin/internal/dto/request"
	"user-admin/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newUserService(t *testing.T) (UserService, UserGroupService, *memStore) {
	t.Helper()
	repo, store := newStubRepository()
	return NewUserService(repo, zap.NewNop()), NewUserGroupService(repo, zap.NewNop()), store
}

func ptr[T any](v T) *T {
	return &v
}

func createUser(t *testing.T, svc UserService, email string) int64 {
	t.Helper()
	user, err := svc.CreateUser(context.Background(), &request.CreateUserRequest{
		Email:    email,
		Password: "secret1",
		Roles:    "ROLE_USER",
	})
	require.NoError(t, err)
	return user.ID
}

func TestCreateUser_RolesCSV(t *testing.T) {
	tests := []struct {
		name    string
		roles   string
		want    []string
		invalid bool
	}{
		{name: "single", roles: "ROLE_USER", want: []string{"ROLE_USER"}},
		{name: "several", roles: "ROLE_USER,ROLE_ADMIN", want: []string{"ROLE_ADMIN", "ROLE_USER"}},
		{name: "spaces around tokens", roles: "ROLE_CUSTOMER, ROLE_USER", want: []string{"ROLE_CUSTOMER", "ROLE_USER"}},
		{name: "duplicates collapse", roles: "ROLE_USER,ROLE_USER", want: []string{"ROLE_USER"}},
		{name: "unknown role", roles: "ROLE_ROOT", invalid: true},
		{name: "one bad token", roles: "ROLE_USER,ROLE_ROOT", invalid: true},
		{name: "empty token", roles: "ROLE_USER,,ROLE_ADMIN", invalid: true},
		{name: "empty", roles: "", invalid: true},
	}

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, _ := newUserService(t)
			user, err := svc.CreateUser(context.Background(), &request.CreateUserRequest{
				Email:    fmt.Sprintf("user%d@example.com", i),
				Password: "secret1",
				Roles:    tt.roles,
			})

			if tt.invalid {
				assert.ErrorIs(t, err, ErrInvalidArgument)
				assert.Contains(t, err.Error(), "valid roles are: ROLE_ADMIN, ROLE_USER, ROLE_CUSTOMER")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, user.Roles)
		})
	}
}

func TestCreateUser_HashesPasswordAndHidesIt(t *testing.T) {
	svc, _, store := newUserService(t)

	user, err := svc.CreateUser(context.Background(), &request.CreateUserRequest{
		Email:    "a@b.com",
		Password: "secret1",
		Roles:    "ROLE_USER",
	})
	require.NoError(t, err)

	assert.NotZero(t, user.ID)
	assert.Equal(t, "a@b.com", user.Email)
	assert.Equal(t, []string{"ROLE_USER"}, user.Roles)

	stored := store.users[user.ID]
	assert.NotEqual(t, "secret1", stored.PasswordHash)
	assert.True(t, utils.CheckPasswordHash("secret1", stored.PasswordHash))

	body, err := json.Marshal(user)
	require.NoError(t, err)
	assert.NotContains(t, string(body), "password")
	assert.NotContains(t, string(body), "secret1")
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	svc, _, _ := newUserService(t)
	ctx := context.Background()

	firstID := createUser(t, svc, "dup@example.com")

	_, err := svc.CreateUser(ctx, &request.CreateUserRequest{
		Email:    "dup@example.com",
		Password: "other",
		Roles:    "ROLE_CUSTOMER",
	})
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "email", validationErr.Violations[0].Field)
	assert.Equal(t, "email: This value is already used.", err.Error())

	first, err := svc.GetUser(ctx, firstID)
	require.NoError(t, err)
	assert.Equal(t, "dup@example.com", first.Email)
}

func TestCreateUser_AggregatesViolations(t *testing.T) {
	svc, _, _ := newUserService(t)

	_, err := svc.CreateUser(context.Background(), &request.CreateUserRequest{
		Roles: "ROLE_USER",
	})

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	require.Len(t, validationErr.Violations, 2)
	assert.Equal(t, "email", validationErr.Violations[0].Field)
	assert.Equal(t, "password", validationErr.Violations[1].Field)
	assert.Equal(t, "email: This value should not be blank.", err.Error())
}

func TestCreateUser_EmailTooLong(t *testing.T) {
	svc, _, _ := newUserService(t)

	_, err := svc.CreateUser(context.Background(), &request.CreateUserRequest{
		Email:    strings.Repeat("a", 175) + "@b.com",
		Password: "secret1",
		Roles:    "ROLE_USER",
	})

	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Contains(t, validationErr.Violations[0].Message, "180 characters or less")
}

func TestCreateUser_WithGroups(t *testing.T) {
	svc, groups, _ := newUserService(t)
	ctx := context.Background()

	staff, err := groups.CreateGroup(ctx, &request.CreateUserGroupRequest{Name: "Staff"})
	require.NoError(t, err)

	user, err := svc.CreateUser(ctx, &request.CreateUserRequest{
		Email:    "g@example.com",
		Password: "secret1",
		Roles:    "ROLE_USER",
		GroupIDs: []int64{staff.ID, staff.ID},
	})
	require.NoError(t, err)
	require.Len(t, user.Groups, 1)
	assert.Equal(t, "Staff", user.Groups[0].Name)

	_, err = svc.CreateUser(ctx, &request.CreateUserRequest{
		Email:    "h@example.com",
		Password: "secret1",
		Roles:    "ROLE_USER",
		GroupIDs: []int64{42},
	})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateUser_EmptyPatchIsNoOp(t *testing.T) {
	svc, _, store := newUserService(t)
	ctx := context.Background()

	id := createUser(t, svc, "keep@example.com")
	before := store.users[id]

	for _, patch := range []*request.UpdateUserRequest{
		{Email: ptr(""), Password: ptr(""), Roles: ptr("")},
		{},
	} {
		user, err := svc.UpdateUser(ctx, id, patch)
		require.NoError(t, err)
		assert.Equal(t, "keep@example.com", user.Email)
		assert.Equal(t, []string{"ROLE_USER"}, user.Roles)
		assert.Equal(t, before, store.users[id])
	}
}

func TestUpdateUser_AppliesPresentFields(t *testing.T) {
	svc, _, store := newUserService(t)
	ctx := context.Background()

	id := createUser(t, svc, "old@example.com")

	user, err := svc.UpdateUser(ctx, id, &request.UpdateUserRequest{
		Email:    ptr("new@example.com"),
		Password: ptr("changed"),
		Roles:    ptr("ROLE_ADMIN"),
	})
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", user.Email)
	assert.Equal(t, []string{"ROLE_ADMIN"}, user.Roles)
	assert.True(t, utils.CheckPasswordHash("changed", store.users[id].PasswordHash))
}

func TestUpdateUser_Failures(t *testing.T) {
	svc, _, _ := newUserService(t)
	ctx := context.Background()

	id := createUser(t, svc, "one@example.com")
	createUser(t, svc, "two@example.com")

	_, err := svc.UpdateUser(ctx, 999, &request.UpdateUserRequest{Email: ptr("x@example.com")})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.UpdateUser(ctx, id, &request.UpdateUserRequest{Roles: ptr("ROLE_GOD")})
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = svc.UpdateUser(ctx, id, &request.UpdateUserRequest{Email: ptr("two@example.com")})
	var validationErr *ValidationError
	assert.ErrorAs(t, err, &validationErr)

	user, err := svc.UpdateUser(ctx, id, &request.UpdateUserRequest{Email: ptr("one@example.com")})
	require.NoError(t, err, "keeping the own email is not a conflict")
	assert.Equal(t, "one@example.com", user.Email)
}

func TestUpdateUser_ReplacesGroups(t *testing.T) {
	svc, groups, _ := newUserService(t)
	ctx := context.Background()

	a, err := groups.CreateGroup(ctx, &request.CreateUserGroupRequest{Name: "A"})
	require.NoError(t, err)
	b, err := groups.CreateGroup(ctx, &request.CreateUserGroupRequest{Name: "B"})
	require.NoError(t, err)

	id := createUser(t, svc, "member@example.com")
	_, err = svc.AddGroup(ctx, id, a.ID)
	require.NoError(t, err)

	user, err := svc.UpdateUser(ctx, id, &request.UpdateUserRequest{GroupIDs: &[]int64{b.ID}})
	require.NoError(t, err)
	require.Len(t, user.Groups, 1)
	assert.Equal(t, b.ID, user.Groups[0].ID)

	user, err = svc.UpdateUser(ctx, id, &request.UpdateUserRequest{GroupIDs: &[]int64{}})
	require.NoError(t, err)
	assert.Empty(t, user.Groups)
}

func TestDeleteUser(t *testing.T) {
	svc, _, _ := newUserService(t)
	ctx := context.Background()

	err := svc.DeleteUser(ctx, 999)
	assert.ErrorIs(t, err, ErrNotFound)

	id := createUser(t, svc, "gone@example.com")
	require.NoError(t, svc.DeleteUser(ctx, id))

	_, err = svc.GetUser(ctx, id)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAddGroup_Twice(t *testing.T) {
	svc, groups, store := newUserService(t)
	ctx := context.Background()

	group, err := groups.CreateGroup(ctx, &request.CreateUserGroupRequest{Name: "Editors"})
	require.NoError(t, err)
	id := createUser(t, svc, "ed@example.com")

	user, err := svc.AddGroup(ctx, id, group.ID)
	require.NoError(t, err)
	require.Len(t, user.Groups, 1)

	_, err = svc.AddGroup(ctx, id, group.ID)
	assert.ErrorIs(t, err, ErrDuplicateRelation)

	assert.Len(t, store.groupsOf(id), 1)
}

func TestAddGroup_UnknownSides(t *testing.T) {
	svc, groups, _ := newUserService(t)
	ctx := context.Background()

	group, err := groups.CreateGroup(ctx, &request.CreateUserGroupRequest{Name: "Editors"})
	require.NoError(t, err)
	id := createUser(t, svc, "ed@example.com")

	_, err = svc.AddGroup(ctx, 999, group.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = svc.AddGroup(ctx, id, 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRemoveGroup_NotHeld(t *testing.T) {
	svc, groups, _ := newUserService(t)
	ctx := context.Background()

	group, err := groups.CreateGroup(ctx, &request.CreateUserGroupRequest{Name: "Editors"})
	require.NoError(t, err)
	id := createUser(t, svc, "ed@example.com")

	_, err = svc.RemoveGroup(ctx, id, group.ID)
	assert.ErrorIs(t, err, ErrRelationNotFound)

	_, err = svc.AddGroup(ctx, id, group.ID)
	require.NoError(t, err)

	user, err := svc.RemoveGroup(ctx, id, group.ID)
	require.NoError(t, err)
	assert.Empty(t, user.Groups)
}

func TestDeleteGroup_RemovesMembership(t *testing.T) {
	svc, groups, _ := newUserService(t)
	ctx := context.Background()

	group, err := groups.CreateGroup(ctx, &request.CreateUserGroupRequest{Name: "Temp"})
	require.NoError(t, err)
	id := createUser(t, svc, "member@example.com")
	_, err = svc.AddGroup(ctx, id, group.ID)
	require.NoError(t, err)

	require.NoError(t, groups.DeleteGroup(ctx, group.ID))

	user, err := svc.GetUser(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, user.Groups)
}

func TestListUsers_Pagination(t *testing.T) {
	svc, _, _ := newUserService(t)
	ctx := context.Background()

	for i := 1; i <= 7; i++ {
		createUser(t, svc, fmt.Sprintf("user%d@example.com", i))
	}

	page, err := svc.ListUsers(ctx, &request.ListUsersRequest{PaginatedRequest: request.PaginatedRequest{Page: 2}})
	require.NoError(t, err)
	require.Len(t, page.Data, 2)
	assert.Equal(t, int64(6), page.Data[0].ID)
	assert.Equal(t, int64(7), page.Data[1].ID)
	assert.Equal(t, int64(7), page.Pagination.Total)
	assert.Equal(t, 2, page.Pagination.TotalPages)
	assert.Equal(t, 5, page.Pagination.PerPage)

	page, err = svc.ListUsers(ctx, &request.ListUsersRequest{})
	require.NoError(t, err)
	assert.Len(t, page.Data, 5)
	assert.Equal(t, 1, page.Pagination.Page)
}

func TestListUsers_HugePageIsEmpty(t *testing.T) {
	svc, _, _ := newUserService(t)
	createUser(t, svc, "only@example.com")

	page, err := svc.ListUsers(context.Background(), &request.ListUsersRequest{
		PaginatedRequest: request.PaginatedRequest{Page: 1844674407370955163},
	})
	require.NoError(t, err)
	assert.Empty(t, page.Data)
	assert.Equal(t, int64(1), page.Pagination.Total)
	assert.False(t, page.Pagination.HasNext())
}

func TestListUsers_EmailFilter(t *testing.T) {
	svc, _, _ := newUserService(t)
	ctx := context.Background()

	createUser(t, svc, "alice@nesto.com")
	createUser(t, svc, "bob@example.com")
	createUser(t, svc, "carol@nesto.com")

	page, err := svc.ListUsers(ctx, &request.ListUsersRequest{Email: "nesto"})
	require.NoError(t, err)
	require.Len(t, page.Data, 2)
	assert.Equal(t, "alice@nesto.com", page.Data[0].Email)
	assert.Equal(t, "carol@nesto.com", page.Data[1].Email)
	assert.Equal(t, int64(2), page.Pagination.Total)
}

func TestFromRepository(t *testing.T) {
	err := fromRepository(&repository.UniqueViolation{Constraint: "user_groups_name_key"}, "create user group")
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Equal(t, "name", validationErr.Violations[0].Field)

	err = fromRepository(fmt.Errorf("delete: %w", repository.ErrNotFound), "user 3")
	assert.ErrorIs(t, err, ErrNotFound)

	boom := errors.New("boom")
	assert.ErrorIs(t, fromRepository(boom, "user 3"), boom)
}
