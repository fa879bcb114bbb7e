package usecase

import (
	"context"
	"errors"
	"slices"
	"strings"
	"time"

	"user-admin/internal/data/entity"
	"user-admin/internal/data/repository"

	"github.com/google/uuid"
)

// errNegativeOffset mirrors Postgres rejecting OFFSET below zero.
var errNegativeOffset = errors.New("OFFSET must not be negative")

// memStore emulates the schema: unique email and name, membership rows
// cascading on delete of either side.
type memStore struct {
	users     map[int64]entity.User
	groups    map[int64]entity.UserGroup
	members   map[[2]int64]bool
	sessions  map[uuid.UUID]entity.Session
	nextUser  int64
	nextGroup int64
}

func newStubRepository() (*repository.Repository, *memStore) {
	s := &memStore{
		users:    map[int64]entity.User{},
		groups:   map[int64]entity.UserGroup{},
		members:  map[[2]int64]bool{},
		sessions: map[uuid.UUID]entity.Session{},
	}
	return &repository.Repository{
		User:      &userStub{s},
		UserGroup: &groupStub{s},
		Session:   &sessionStub{s},
	}, s
}

func (s *memStore) groupsOf(userID int64) []*entity.UserGroup {
	groups := []*entity.UserGroup{}
	for _, id := range sortedKeys(s.groups) {
		if s.members[[2]int64{userID, id}] {
			g := s.groups[id]
			groups = append(groups, &g)
		}
	}
	return groups
}

func (s *memStore) usersOf(groupID int64) []*entity.User {
	users := []*entity.User{}
	for _, id := range sortedKeys(s.users) {
		if s.members[[2]int64{id, groupID}] {
			u := s.users[id]
			users = append(users, &u)
		}
	}
	return users
}

func (s *memStore) setMemberships(userID int64, groupIDs []int64) {
	for key := range s.members {
		if key[0] == userID {
			delete(s.members, key)
		}
	}
	for _, gid := range groupIDs {
		s.members[[2]int64{userID, gid}] = true
	}
}

func sortedKeys[V any](m map[int64]V) []int64 {
	keys := make([]int64, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

type userStub struct{ s *memStore }

func (r *userStub) emailUsed(email string, exceptID int64) bool {
	for id, u := range r.s.users {
		if u.Email == email && id != exceptID {
			return true
		}
	}
	return false
}

func (r *userStub) Create(_ context.Context, user *entity.User) error {
	if r.emailUsed(user.Email, 0) {
		return &repository.UniqueViolation{Constraint: "users_email_key"}
	}
	r.s.nextUser++
	user.ID = r.s.nextUser
	user.CreatedAt, user.UpdatedAt = time.Now(), time.Now()

	stored := *user
	stored.Groups = nil
	r.s.users[user.ID] = stored
	r.s.setMemberships(user.ID, user.GroupIDs())
	return nil
}

func (r *userStub) Save(_ context.Context, user *entity.User) error {
	if _, ok := r.s.users[user.ID]; !ok {
		return repository.ErrNotFound
	}
	if r.emailUsed(user.Email, user.ID) {
		return &repository.UniqueViolation{Constraint: "users_email_key"}
	}
	stored := *user
	stored.Groups = nil
	r.s.users[user.ID] = stored
	r.s.setMemberships(user.ID, user.GroupIDs())
	return nil
}

func (r *userStub) FindByID(_ context.Context, id int64) (*entity.User, error) {
	u, ok := r.s.users[id]
	if !ok {
		return nil, nil
	}
	u.Groups = r.s.groupsOf(id)
	return &u, nil
}

func (r *userStub) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	for _, u := range r.s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, nil
}

func (r *userStub) filtered(filter string) []int64 {
	var ids []int64
	for _, id := range sortedKeys(r.s.users) {
		if filter == "" || strings.Contains(r.s.users[id].Email, filter) {
			ids = append(ids, id)
		}
	}
	return ids
}

func (r *userStub) FindAll(_ context.Context, filter string, limit, offset int) ([]*entity.User, error) {
	if offset < 0 {
		return nil, errNegativeOffset
	}
	ids := r.filtered(filter)
	users := []*entity.User{}
	for i := offset; i < len(ids) && i < offset+limit; i++ {
		u := r.s.users[ids[i]]
		u.Groups = r.s.groupsOf(u.ID)
		users = append(users, &u)
	}
	return users, nil
}

func (r *userStub) Count(_ context.Context, filter string) (int64, error) {
	return int64(len(r.filtered(filter))), nil
}

func (r *userStub) Delete(_ context.Context, id int64) error {
	if _, ok := r.s.users[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.users, id)
	r.s.setMemberships(id, nil)
	return nil
}

type groupStub struct{ s *memStore }

func (r *groupStub) nameUsed(name string, exceptID int64) bool {
	for id, g := range r.s.groups {
		if g.Name == name && id != exceptID {
			return true
		}
	}
	return false
}

func (r *groupStub) Create(_ context.Context, group *entity.UserGroup) error {
	if r.nameUsed(group.Name, 0) {
		return &repository.UniqueViolation{Constraint: "user_groups_name_key"}
	}
	r.s.nextGroup++
	group.ID = r.s.nextGroup
	stored := *group
	stored.Users = nil
	r.s.groups[group.ID] = stored
	return nil
}

func (r *groupStub) Update(_ context.Context, group *entity.UserGroup) error {
	if _, ok := r.s.groups[group.ID]; !ok {
		return repository.ErrNotFound
	}
	if r.nameUsed(group.Name, group.ID) {
		return &repository.UniqueViolation{Constraint: "user_groups_name_key"}
	}
	stored := *group
	stored.Users = nil
	r.s.groups[group.ID] = stored
	return nil
}

func (r *groupStub) FindByID(_ context.Context, id int64) (*entity.UserGroup, error) {
	g, ok := r.s.groups[id]
	if !ok {
		return nil, nil
	}
	g.Users = r.s.usersOf(id)
	return &g, nil
}

func (r *groupStub) FindByName(_ context.Context, name string) (*entity.UserGroup, error) {
	for _, g := range r.s.groups {
		if g.Name == name {
			return &g, nil
		}
	}
	return nil, nil
}

func (r *groupStub) FindByIDs(_ context.Context, ids []int64) ([]*entity.UserGroup, error) {
	groups := []*entity.UserGroup{}
	for _, id := range sortedKeys(r.s.groups) {
		if slices.Contains(ids, id) {
			g := r.s.groups[id]
			groups = append(groups, &g)
		}
	}
	return groups, nil
}

func (r *groupStub) FindAll(_ context.Context, limit, offset int) ([]*entity.UserGroup, error) {
	if offset < 0 {
		return nil, errNegativeOffset
	}
	ids := sortedKeys(r.s.groups)
	groups := []*entity.UserGroup{}
	for i := offset; i < len(ids) && i < offset+limit; i++ {
		g := r.s.groups[ids[i]]
		g.Users = r.s.usersOf(g.ID)
		groups = append(groups, &g)
	}
	return groups, nil
}

func (r *groupStub) ListAll(_ context.Context) ([]*entity.UserGroup, error) {
	groups := []*entity.UserGroup{}
	for _, id := range sortedKeys(r.s.groups) {
		g := r.s.groups[id]
		groups = append(groups, &g)
	}
	return groups, nil
}

func (r *groupStub) Count(_ context.Context) (int64, error) {
	return int64(len(r.s.groups)), nil
}

func (r *groupStub) Delete(_ context.Context, id int64) error {
	if _, ok := r.s.groups[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.groups, id)
	for key := range r.s.members {
		if key[1] == id {
			delete(r.s.members, key)
		}
	}
	return nil
}

type sessionStub struct{ s *memStore }

func (r *sessionStub) Create(_ context.Context, session *entity.Session) error {
	r.s.sessions[session.Token] = *session
	return nil
}

func (r *sessionStub) FindValidSession(_ context.Context, token uuid.UUID) (*entity.Session, error) {
	session, ok := r.s.sessions[token]
	if !ok || session.RevokedAt != nil || !session.ExpiresAt.After(time.Now()) {
		return nil, nil
	}
	return &session, nil
}

func (r *sessionStub) Revoke(_ context.Context, token uuid.UUID) error {
	if session, ok := r.s.sessions[token]; ok {
		now := time.Now()
		session.RevokedAt = &now
		r.s.sessions[token] = session
	}
	return nil
}

func (r *sessionStub) CleanExpiredSessions(_ context.Context) (int64, error) {
	var n int64
	for token, session := range r.s.sessions {
		if session.ExpiresAt.Before(time.Now()) {
			delete(r.s.sessions, token)
			n++
		}
	}
	return n, nil
}
