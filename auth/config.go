package auth

import "time"

// Strategy names
const (
	StrategySession = "session"
	StrategyToken   = "token"
)

// Config represents authentication core configuration. All values are
// injected at startup; nothing here is discovered or rotated at runtime.
type Config struct {
	// Strategy selects the active scheme: "session" or "token"
	Strategy string

	// JWTSecret signs tokens under the token strategy
	JWTSecret string

	// SessionTTL is the lifetime of an issued session
	SessionTTL time.Duration

	// TokenTTL is the lifetime of an issued token
	TokenTTL time.Duration

	// BcryptCost is the bcrypt cost factor for password hashing
	BcryptCost int
}

// DefaultConfig returns default configuration
func DefaultConfig() *Config {
	return &Config{
		Strategy:   StrategySession,
		SessionTTL: time.Hour,
		TokenTTL:   time.Hour,
		BcryptCost: DefaultBcryptCost,
	}
}
