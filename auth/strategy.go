package auth

import "context"

// Strategy issues and validates client credentials. The two implementations
// differ in where validity lives: SessionStrategy tracks it server-side in
// the session store, TokenStrategy embeds it in the signed credential itself.
type Strategy interface {
	// Name returns the strategy name ("session" or "token").
	Name() string

	// Issue creates a credential for the authenticated user.
	Issue(ctx context.Context, userID int64, username string) (*Credential, error)

	// Validate resolves a presented credential to an identity, or returns
	// ErrInvalidCredential if it is unknown, tampered with, or expired.
	Validate(ctx context.Context, credential string) (*Identity, error)

	// Invalidate revokes a credential. The session strategy removes the
	// server-side record and returns ErrNoActiveSession if there is none;
	// the token strategy has nothing to revoke and always succeeds.
	Invalidate(ctx context.Context, credential string) error
}
