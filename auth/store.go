package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"authbench.evalgo.org/kv"
)

const (
	userKeyPrefix  = "user:"
	userCounterKey = "next_user_id"
)

// CredentialStore persists username→UserRecord mappings and allocates user
// identifiers. It is the only shared mutable state in the core; all
// coordination happens through the key-value store's atomic primitives.
type CredentialStore struct {
	store kv.Store
}

// NewCredentialStore creates a credential store on top of a key-value store.
func NewCredentialStore(store kv.Store) *CredentialStore {
	return &CredentialStore{store: store}
}

// Exists reports whether a record for username is present.
func (s *CredentialStore) Exists(ctx context.Context, username string) (bool, error) {
	_, err := s.store.Get(ctx, userKeyPrefix+username)
	if errors.Is(err, kv.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Create allocates the next user id and stores a record for username.
// The write uses the store's create-if-absent primitive, so two concurrent
// registrations of the same username cannot both succeed: exactly one wins,
// the rest get ErrDuplicateUsername. An id allocated by a losing call is
// abandoned, never reused; the counter stays strictly increasing.
func (s *CredentialStore) Create(ctx context.Context, username, passwordHash string) (int64, error) {
	id, err := s.store.Incr(ctx, userCounterKey)
	if err != nil {
		return 0, fmt.Errorf("failed to allocate user id: %w", err)
	}

	data, err := json.Marshal(UserRecord{ID: id, PasswordHash: passwordHash})
	if err != nil {
		return 0, fmt.Errorf("failed to marshal user record: %w", err)
	}

	err = s.store.SetIfAbsent(ctx, userKeyPrefix+username, data, 0)
	if errors.Is(err, kv.ErrKeyExists) {
		return 0, ErrDuplicateUsername
	}
	if err != nil {
		return 0, fmt.Errorf("failed to store user record: %w", err)
	}

	return id, nil
}

// Get returns the record for username, or ErrUserNotFound.
func (s *CredentialStore) Get(ctx context.Context, username string) (*UserRecord, error) {
	data, err := s.store.Get(ctx, userKeyPrefix+username)
	if errors.Is(err, kv.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}

	var record UserRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal user record: %w", err)
	}

	return &record, nil
}
