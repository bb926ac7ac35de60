package auth

import "time"

// UserRecord is the stored account entry, keyed by username in the
// credential store. Records are created on registration and never mutated
// or deleted afterwards.
type UserRecord struct {
	// ID is allocated from the store's monotonic counter; unique per
	// username, strictly increasing across registrations, never reused.
	ID int64 `json:"id"`

	// PasswordHash is the bcrypt hash of the account password.
	PasswordHash string `json:"password_hash"`
}

// Identity is the authenticated principal a validated credential resolves to.
type Identity struct {
	UserID   int64  `json:"user_id"`
	Username string `json:"username"`
}

// Credential is an issued client credential: an opaque session identifier
// under the session strategy, a signed token under the token strategy.
type Credential struct {
	Value     string    `json:"value"`
	ExpiresAt time.Time `json:"expires_at"`
}

// LoginResult is returned on successful login.
type LoginResult struct {
	UserID     int64     `json:"user_id"`
	Credential string    `json:"credential"`
	ExpiresAt  time.Time `json:"expires_at"`
}
