package model

import "time"

// TokenTypeEmailConfirm marks the single-use links mailed after sign-up
const TokenTypeEmailConfirm = "email_confirm"

// Token is a single-use secret sent to a user. Consuming it stamps UsedAt;
// expiry and reuse are enforced by the repository query.
type Token struct {
	ID        string     `db:"id"`
	UserID    string     `db:"user_id"`
	Type      string     `db:"type"`
	Token     string     `db:"token"`
	ExpiresAt time.Time  `db:"expires_at"`
	UsedAt    *time.Time `db:"used_at"`
	CreatedAt time.Time  `db:"created_at"`
}
