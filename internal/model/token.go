package model

import "time"

// Token is a signed, expiring bearer credential issued at login
type Token struct {
	Signature string    `json:"signature"`
	Username  string    `json:"username"`
	ExpiresAt time.Time `json:"expires_at"`

	// User is resolved on validation and is never persisted
	User *User `json:"-"`
}

// Expired reports whether the token is no longer valid at now
func (t *Token) Expired(now time.Time) bool {
	return !t.ExpiresAt.After(now)
}
