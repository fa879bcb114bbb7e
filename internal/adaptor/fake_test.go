package adaptor

import (
	"context"
	"fmt"
	"net/http"
	"slices"
	"strings"
	"testing"
	"time"

	"user-admin/internal/dto/request"
	"user-admin/internal/dto/response"
	"user-admin/internal/usecase"
	"user-admin/pkg/session"
	"user-admin/pkg/utils"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeUsers keeps just enough state for the handlers under test.
type fakeUsers struct {
	users   map[int64]*response.UserResponse
	nextID  int64
	created []*request.CreateUserRequest
	updated map[int64]*request.UpdateUserRequest
	deleted []int64
	removed [][2]int64
	failure error
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{
		users:   map[int64]*response.UserResponse{},
		nextID:  1,
		updated: map[int64]*request.UpdateUserRequest{},
	}
}

func (f *fakeUsers) add(email string, roles ...string) *response.UserResponse {
	u := &response.UserResponse{ID: f.nextID, Email: email, Roles: roles}
	f.users[u.ID] = u
	f.nextID++
	return u
}

func (f *fakeUsers) get(id int64) (*response.UserResponse, error) {
	if f.failure != nil {
		return nil, f.failure
	}
	u, ok := f.users[id]
	if !ok {
		return nil, fmt.Errorf("user %d: %w", id, usecase.ErrNotFound)
	}
	return u, nil
}

func (f *fakeUsers) GetUser(_ context.Context, id int64) (*response.UserResponse, error) {
	return f.get(id)
}

func (f *fakeUsers) ListUsers(_ context.Context, req *request.ListUsersRequest) (*response.PaginatedResponse[response.UserResponse], error) {
	var data []response.UserResponse
	for id := int64(1); id < f.nextID; id++ {
		if u, ok := f.users[id]; ok && strings.Contains(u.Email, req.Email) {
			data = append(data, *u)
		}
	}
	return response.NewPaginatedResponse(data, req.CurrentPage(), req.Limit(), int64(len(data))), nil
}

func (f *fakeUsers) CreateUser(_ context.Context, req *request.CreateUserRequest) (*response.UserResponse, error) {
	if f.failure != nil {
		return nil, f.failure
	}
	f.created = append(f.created, req)
	return f.add(req.Email, strings.Split(req.Roles, ",")...), nil
}

func (f *fakeUsers) UpdateUser(_ context.Context, id int64, req *request.UpdateUserRequest) (*response.UserResponse, error) {
	u, err := f.get(id)
	if err != nil {
		return nil, err
	}
	f.updated[id] = req
	return u, nil
}

func (f *fakeUsers) DeleteUser(_ context.Context, id int64) error {
	if _, err := f.get(id); err != nil {
		return err
	}
	delete(f.users, id)
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeUsers) AddGroup(_ context.Context, userID, groupID int64) (*response.UserResponse, error) {
	u, err := f.get(userID)
	if err != nil {
		return nil, err
	}
	for _, g := range u.Groups {
		if g.ID == groupID {
			return nil, fmt.Errorf("user %d group %d: %w", userID, groupID, usecase.ErrDuplicateRelation)
		}
	}
	u.Groups = append(u.Groups, response.UserGroupSummary{ID: groupID})
	return u, nil
}

func (f *fakeUsers) RemoveGroup(_ context.Context, userID, groupID int64) (*response.UserResponse, error) {
	u, err := f.get(userID)
	if err != nil {
		return nil, err
	}
	f.removed = append(f.removed, [2]int64{userID, groupID})
	u.Groups = slices.DeleteFunc(u.Groups, func(g response.UserGroupSummary) bool { return g.ID == groupID })
	return u, nil
}

func (f *fakeUsers) GroupOptions(context.Context) ([]response.UserGroupSummary, error) {
	return []response.UserGroupSummary{{ID: 1, Name: "staff"}}, nil
}

func (f *fakeUsers) CountUsers(context.Context) (int64, error) {
	return int64(len(f.users)), nil
}

type fakeGroups struct {
	groups  map[int64]*response.UserGroupResponse
	deleted []int64
	failure error
}

func newFakeGroups() *fakeGroups {
	return &fakeGroups{groups: map[int64]*response.UserGroupResponse{}}
}

func (f *fakeGroups) GetGroup(_ context.Context, id int64) (*response.UserGroupResponse, error) {
	g, ok := f.groups[id]
	if !ok {
		return nil, fmt.Errorf("user group %d: %w", id, usecase.ErrNotFound)
	}
	return g, nil
}

func (f *fakeGroups) ListGroups(_ context.Context, req *request.PaginatedRequest) (*response.PaginatedResponse[response.UserGroupResponse], error) {
	var data []response.UserGroupResponse
	for _, g := range f.groups {
		data = append(data, *g)
	}
	return response.NewPaginatedResponse(data, req.CurrentPage(), req.Limit(), int64(len(data))), nil
}

func (f *fakeGroups) CreateGroup(_ context.Context, req *request.CreateUserGroupRequest) (*response.UserGroupResponse, error) {
	if f.failure != nil {
		return nil, f.failure
	}
	g := &response.UserGroupResponse{ID: int64(len(f.groups) + 1), Name: req.Name}
	f.groups[g.ID] = g
	return g, nil
}

func (f *fakeGroups) UpdateGroup(ctx context.Context, id int64, req *request.UpdateUserGroupRequest) (*response.UserGroupResponse, error) {
	g, err := f.GetGroup(ctx, id)
	if err != nil {
		return nil, err
	}
	if f.failure != nil {
		return nil, f.failure
	}
	if req.Name != nil {
		g.Name = *req.Name
	}
	return g, nil
}

func (f *fakeGroups) DeleteGroup(ctx context.Context, id int64) error {
	if _, err := f.GetGroup(ctx, id); err != nil {
		return err
	}
	delete(f.groups, id)
	f.deleted = append(f.deleted, id)
	return nil
}

func (f *fakeGroups) CountGroups(context.Context) (int64, error) {
	return int64(len(f.groups)), nil
}

type fakeAuth struct {
	tokens  map[string]string
	revoked []string
}

func (f *fakeAuth) Login(_ context.Context, req *request.LoginRequest) (*response.AuthResponse, error) {
	password, ok := f.tokens[req.Email]
	if !ok {
		return nil, usecase.ErrEmailNotFound
	}
	if password != req.Password {
		return nil, usecase.ErrInvalidCredentials
	}
	return &response.AuthResponse{
		Token:     "token-for-" + req.Email,
		ExpiresAt: time.Now().Add(time.Hour),
		User:      response.UserResponse{Email: req.Email},
	}, nil
}

func (f *fakeAuth) Logout(_ context.Context, token string) error {
	f.revoked = append(f.revoked, token)
	return nil
}

func (f *fakeAuth) Authenticate(context.Context, string) (*utils.Principal, error) {
	return nil, usecase.ErrUnauthorized
}

func (f *fakeAuth) CleanExpiredSessions(context.Context) error { return nil }

type fixture struct {
	users   *fakeUsers
	groups  *fakeGroups
	auth    *fakeAuth
	intents *utils.IntentTokens
	handler *Handler
}

func newFixture(t *testing.T, debug bool) *fixture {
	t.Helper()
	log := zap.NewNop()

	views, err := NewViews(log)
	require.NoError(t, err)

	sessionConfig := utils.SessionConfig{Key: strings.Repeat("k", 32), TTL: time.Hour}
	sessions, err := session.NewManager(sessionConfig, log)
	require.NoError(t, err)

	f := &fixture{
		users:   newFakeUsers(),
		groups:  newFakeGroups(),
		auth:    &fakeAuth{tokens: map[string]string{"admin@example.com": "secret"}},
		intents: utils.NewIntentTokens([]byte(sessionConfig.Key), time.Hour),
	}
	service := &usecase.Service{Auth: f.auth, User: f.users, UserGroup: f.groups}
	config := &utils.Config{App: utils.AppConfig{Debug: debug}, Session: sessionConfig}
	f.handler = NewHandler(service, views, sessions, f.intents, config, log)
	return f
}

// asAdmin attaches a signed-in admin the way the session middleware would.
func asAdmin(r *http.Request) *http.Request {
	return r.WithContext(utils.SetPrincipal(r.Context(), &utils.Principal{
		UserID: 1,
		Email:  "admin@example.com",
		Roles:  []string{"ROLE_ADMIN", "ROLE_USER"},
		Token:  "admin-session",
	}))
}
