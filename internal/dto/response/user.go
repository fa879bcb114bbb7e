package response

import (
	"time"

	"user-admin/internal/data/entity"
)

// UserResponse never carries the password hash.
type UserResponse struct {
	ID        int64              `json:"id"`
	Email     string             `json:"email"`
	Roles     []string           `json:"roles"`
	Groups    []UserGroupSummary `json:"groups"`
	CreatedAt time.Time          `json:"created_at"`
	UpdatedAt time.Time          `json:"updated_at"`
}

type UserSummary struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
}

type UserGroupResponse struct {
	ID        int64         `json:"id"`
	Name      string        `json:"name"`
	Users     []UserSummary `json:"users"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}

type UserGroupSummary struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func UserToResponse(user *entity.User) UserResponse {
	groups := make([]UserGroupSummary, 0, len(user.Groups))
	for _, g := range user.Groups {
		groups = append(groups, UserGroupSummary{ID: g.ID, Name: g.Name})
	}

	return UserResponse{
		ID:        user.ID,
		Email:     user.Email,
		Roles:     user.Roles.Strings(),
		Groups:    groups,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}

func UserGroupToResponse(group *entity.UserGroup) UserGroupResponse {
	users := make([]UserSummary, 0, len(group.Users))
	for _, u := range group.Users {
		users = append(users, UserSummary{ID: u.ID, Email: u.Email})
	}

	return UserGroupResponse{
		ID:        group.ID,
		Name:      group.Name,
		Users:     users,
		CreatedAt: group.CreatedAt,
		UpdatedAt: group.UpdatedAt,
	}
}

// HasGroup is used by the admin form to pre-check group boxes.
func (u UserResponse) HasGroup(id int64) bool {
	for _, g := range u.Groups {
		if g.ID == id {
			return true
		}
	}
	return false
}

func (u UserResponse) HasRole(role string) bool {
	for _, r := range u.Roles {
		if r == role {
			return true
		}
	}
	return false
}
