package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"authbench.evalgo.org/auth"
	"authbench.evalgo.org/kv"
)

// Handlers carries the dependencies of the HTTP surface.
type Handlers struct {
	Auth auth.AuthService
}

type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type RegisterResponse struct {
	Message string `json:"message"`
	UserID  int64  `json:"user_id"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	Message    string    `json:"message"`
	UserID     int64     `json:"user_id"`
	Credential string    `json:"credential"`
	ExpiresAt  time.Time `json:"expires_at"`
}

type LogoutResponse struct {
	Message string `json:"message"`
}

// Register creates a new account.
func (h *Handlers) Register(c echo.Context) error {
	var req RegisterRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}

	id, err := h.Auth.Register(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return writeError(c, err, "Registration failed")
	}

	return c.JSON(http.StatusCreated, RegisterResponse{
		Message: fmt.Sprintf("User %s registered successfully", req.Username),
		UserID:  id,
	})
}

// Login verifies credentials and issues a session or token.
func (h *Handlers) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Invalid request"})
	}

	result, err := h.Auth.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return writeError(c, err, "Login failed")
	}

	return c.JSON(http.StatusOK, LoginResponse{
		Message:    "Login successful",
		UserID:     result.UserID,
		Credential: result.Credential,
		ExpiresAt:  result.ExpiresAt,
	})
}

// Logout revokes the presented credential. Under the token strategy this is
// a server-side no-op and always succeeds.
func (h *Handlers) Logout(c echo.Context) error {
	credential := bearerCredential(c)

	if err := h.Auth.Logout(c.Request().Context(), credential); err != nil {
		return writeError(c, err, "Logout failed")
	}

	return c.JSON(http.StatusOK, LogoutResponse{Message: "Logout successful"})
}

// WhoAmI reports the identity behind the presented credential. The auth
// middleware has already validated it and stored the identity in the
// request context.
func (h *Handlers) WhoAmI(c echo.Context) error {
	identity, ok := c.Get(identityContextKey).(*auth.Identity)
	if !ok {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	}
	return c.JSON(http.StatusOK, identity)
}

// writeError maps core errors to HTTP status codes. Validation failures are
// the client's fault; anything unexpected (including an unreachable store)
// is a 500 with a generic message so internals do not leak.
func writeError(c echo.Context, err error, fallback string) error {
	switch {
	case errors.Is(err, auth.ErrMissingField):
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Username and password are required"})
	case errors.Is(err, auth.ErrDuplicateUsername):
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "Username already exists"})
	case errors.Is(err, auth.ErrInvalidCredentials):
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid username or password"})
	case errors.Is(err, auth.ErrNoActiveSession):
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Not logged in"})
	case errors.Is(err, auth.ErrInvalidCredential):
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
	case errors.Is(err, kv.ErrUnavailable):
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": fallback})
	default:
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": fallback})
	}
}
