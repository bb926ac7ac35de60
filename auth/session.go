package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"authbench.evalgo.org/kv"
)

const sessionKeyPrefix = "session:"

// SessionRecord is the server-side state behind an active session.
// Created on login, removed on logout or expiry; there is no archived state.
type SessionRecord struct {
	SessionID string    `json:"session_id"`
	UserID    int64     `json:"user_id"`
	Username  string    `json:"username"`
	ExpiresAt time.Time `json:"expires_at"`
}

// SessionStrategy implements server-tracked authentication: every login
// writes a SessionRecord into the key-value store and the opaque session
// identifier is the credential handed to the client.
type SessionStrategy struct {
	store kv.Store
	ttl   time.Duration
}

// NewSessionStrategy creates a session strategy with the given session TTL.
func NewSessionStrategy(store kv.Store, ttl time.Duration) *SessionStrategy {
	return &SessionStrategy{store: store, ttl: ttl}
}

// Name returns the strategy name.
func (s *SessionStrategy) Name() string { return StrategySession }

// Issue creates a session record and returns its identifier.
func (s *SessionStrategy) Issue(ctx context.Context, userID int64, username string) (*Credential, error) {
	sessionID, err := generateSessionID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate session id: %w", err)
	}

	record := SessionRecord{
		SessionID: sessionID,
		UserID:    userID,
		Username:  username,
		ExpiresAt: time.Now().Add(s.ttl),
	}

	data, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal session record: %w", err)
	}

	// The store-side TTL is a backstop; the expiry check in Validate is
	// authoritative.
	if err := s.store.SetIfAbsent(ctx, sessionKeyPrefix+sessionID, data, s.ttl); err != nil {
		return nil, fmt.Errorf("failed to store session record: %w", err)
	}

	return &Credential{Value: sessionID, ExpiresAt: record.ExpiresAt}, nil
}

// Validate looks up the session. An unknown identifier and an expired record
// are indistinguishable to the caller; expired records are purged on lookup.
func (s *SessionStrategy) Validate(ctx context.Context, sessionID string) (*Identity, error) {
	data, err := s.store.Get(ctx, sessionKeyPrefix+sessionID)
	if errors.Is(err, kv.ErrNotFound) {
		return nil, ErrInvalidCredential
	}
	if err != nil {
		return nil, err
	}

	var record SessionRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session record: %w", err)
	}

	if !time.Now().Before(record.ExpiresAt) {
		// Lazy expiry: a hit past expiry is treated as a miss.
		_ = s.store.Delete(ctx, sessionKeyPrefix+sessionID)
		return nil, ErrInvalidCredential
	}

	return &Identity{UserID: record.UserID, Username: record.Username}, nil
}

// Invalidate removes the session record immediately.
func (s *SessionStrategy) Invalidate(ctx context.Context, sessionID string) error {
	err := s.store.Delete(ctx, sessionKeyPrefix+sessionID)
	if errors.Is(err, kv.ErrNotFound) {
		return ErrNoActiveSession
	}
	return err
}

// generateSessionID returns a cryptographically random, unguessable
// identifier (256 bits, base64url).
func generateSessionID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
