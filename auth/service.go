package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
)

// AuthService provides registration, login and logout over one credential
// store, delegating credential issuance and validation to the active
// strategy. The three operations behave identically regardless of strategy;
// only the credential's nature differs.
type AuthService interface {
	Register(ctx context.Context, username, password string) (int64, error)
	Login(ctx context.Context, username, password string) (*LoginResult, error)
	Logout(ctx context.Context, credential string) error
	Validate(ctx context.Context, credential string) (*Identity, error)

	// Strategy returns the active strategy.
	Strategy() Strategy
}

// authService implements AuthService
type authService struct {
	config   *Config
	creds    *CredentialStore
	strategy Strategy
	log      logrus.FieldLogger
}

// NewService creates an auth service with the strategy the configuration
// selects.
func NewService(config *Config, creds *CredentialStore, strategy Strategy, logger logrus.FieldLogger) AuthService {
	if config == nil {
		config = DefaultConfig()
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	return &authService{
		config:   config,
		creds:    creds,
		strategy: strategy,
		log:      logger.WithField("strategy", strategy.Name()),
	}
}

// NewStrategy constructs the strategy named in the configuration.
func NewStrategy(config *Config, creds *CredentialStore) (Strategy, error) {
	switch config.Strategy {
	case StrategySession:
		return NewSessionStrategy(creds.store, config.SessionTTL), nil
	case StrategyToken:
		return NewTokenStrategy(config.JWTSecret, config.TokenTTL), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownStrategy, config.Strategy)
	}
}

// Register creates a new account and returns its id.
func (s *authService) Register(ctx context.Context, username, password string) (int64, error) {
	if username == "" || password == "" {
		return 0, ErrMissingField
	}

	hash, err := HashPasswordWithCost(password, s.config.BcryptCost)
	if err != nil {
		return 0, fmt.Errorf("failed to hash password: %w", err)
	}

	id, err := s.creds.Create(ctx, username, hash)
	if err != nil {
		return 0, err
	}

	s.log.WithFields(logrus.Fields{"username": username, "user_id": id}).Info("user registered")
	return id, nil
}

// Login verifies the credentials and issues a strategy credential. An
// unknown username and a wrong password fail with the same error, so the
// response does not reveal whether the username exists.
func (s *authService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	if username == "" || password == "" {
		return nil, ErrMissingField
	}

	record, err := s.creds.Get(ctx, username)
	if errors.Is(err, ErrUserNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}

	if err := ValidatePassword(password, record.PasswordHash); err != nil {
		return nil, ErrInvalidCredentials
	}

	credential, err := s.strategy.Issue(ctx, record.ID, username)
	if err != nil {
		return nil, fmt.Errorf("failed to issue credential: %w", err)
	}

	s.log.WithFields(logrus.Fields{"username": username, "user_id": record.ID}).Info("user logged in")

	return &LoginResult{
		UserID:     record.ID,
		Credential: credential.Value,
		ExpiresAt:  credential.ExpiresAt,
	}, nil
}

// Logout revokes the presented credential via the active strategy.
func (s *authService) Logout(ctx context.Context, credential string) error {
	if err := s.strategy.Invalidate(ctx, credential); err != nil {
		return err
	}
	s.log.Info("user logged out")
	return nil
}

// Validate resolves a presented credential to an identity.
func (s *authService) Validate(ctx context.Context, credential string) (*Identity, error) {
	return s.strategy.Validate(ctx, credential)
}

// Strategy returns the active strategy.
func (s *authService) Strategy() Strategy {
	return s.strategy
}
