package entity

import (
	"time"

	"github.com/google/uuid"
)

// Session backs both API bearer tokens and the admin cookie.
type Session struct {
	BaseSimple
	UserID    int64      `db:"user_id"`
	Token     uuid.UUID  `db:"token"`
	UserAgent *string    `db:"user_agent"`
	IPAddress *string    `db:"ip_address"`
	ExpiresAt time.Time  `db:"expires_at"`
	RevokedAt *time.Time `db:"revoked_at"`
}
