package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"

	"authbench.evalgo.org/auth"
	"authbench.evalgo.org/kv"
)

const identityContextKey = "identity"

// bearerCredential extracts the credential from the Authorization header.
func bearerCredential(c echo.Context) string {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	return strings.TrimPrefix(header, "Bearer ")
}

// sessionAuth validates the presented session identifier against the
// session store and stores the resolved identity in the request context.
func (h *Handlers) sessionAuth() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			credential := bearerCredential(c)
			if credential == "" {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "No credential provided"})
			}

			identity, err := h.Auth.Validate(c.Request().Context(), credential)
			if errors.Is(err, kv.ErrUnavailable) {
				return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Validation failed"})
			}
			if err != nil {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
			}

			c.Set(identityContextKey, identity)
			return next(c)
		}
	}
}

// tokenAuth verifies the token signature and expiry via echo-jwt, then maps
// the claims to an identity in the request context.
func tokenAuth(secret string) echo.MiddlewareFunc {
	return echojwt.WithConfig(echojwt.Config{
		SigningKey:  []byte(secret),
		TokenLookup: "header:Authorization:Bearer ",
		NewClaimsFunc: func(c echo.Context) jwt.Claims {
			return new(auth.Claims)
		},
		SuccessHandler: func(c echo.Context) {
			token, ok := c.Get("user").(*jwt.Token)
			if !ok {
				return
			}
			claims, ok := token.Claims.(*auth.Claims)
			if !ok {
				return
			}
			c.Set(identityContextKey, &auth.Identity{
				UserID:   claims.UserID,
				Username: claims.Username,
			})
		},
	})
}
