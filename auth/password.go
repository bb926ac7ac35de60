package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

const (
	// DefaultBcryptCost is the default cost factor for bcrypt password hashing.
	// Cost factor of 10 provides a good balance between security and performance.
	DefaultBcryptCost = 10
)

// HashPassword creates a bcrypt hash of the provided password using the
// default cost factor. Bcrypt embeds a random per-call salt, so hashing the
// same password twice yields different outputs.
func HashPassword(password string) (string, error) {
	return HashPasswordWithCost(password, DefaultBcryptCost)
}

// HashPasswordWithCost creates a bcrypt hash with a custom cost factor.
// Hashing is deliberately slow; under heavy concurrent registration load
// this is the throughput bottleneck.
func HashPasswordWithCost(password string, cost int) (string, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return "", fmt.Errorf("invalid cost factor %d: must be between %d and %d", cost, bcrypt.MinCost, bcrypt.MaxCost)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hash), nil
}

// ValidatePassword checks if a password matches the hash. The comparison is
// constant-time; it does not leak where a mismatch occurs.
func ValidatePassword(password, hash string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}
