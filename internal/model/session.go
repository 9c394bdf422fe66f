package model

import (
	"time"
)

type Session struct {
	ID        string     `db:"id"`
	UserID    string     `db:"user_id"`
	ExpiresAt time.Time  `db:"expires_at"`
	RevokedAt *time.Time `db:"revoked_at"`
	CreatedAt time.Time  `db:"created_at"`

	// Computed fields (not in database)
	Token string `db:"-"`
	User  *User  `db:"-"`
}

func (s *Session) IsRevoked() bool {
	return s.RevokedAt != nil
}

type SessionEventType string

const (
	SessionSignedIn       SessionEventType = "signed_in"
	SessionSignedOut      SessionEventType = "signed_out"
	SessionTokenRefreshed SessionEventType = "token_refreshed"
)

// SessionEvent is published whenever a session starts, ends or gets a new token
type SessionEvent struct {
	Type    SessionEventType
	Session *Session
}
