package response

import (
	"time"

	"user-admin/internal/data/entity"
)

type AuthResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      UserResponse `json:"user"`
}

func AuthToResponse(user *entity.User, session *entity.Session) AuthResponse {
	resp := AuthResponse{User: UserToResponse(user)}

	if session != nil {
		resp.Token = session.Token.String()
		resp.ExpiresAt = session.ExpiresAt
	}

	return resp
}

// DashboardResponse feeds the admin landing page.
type DashboardResponse struct {
	Users  int64 `json:"users"`
	Groups int64 `json:"groups"`
}
