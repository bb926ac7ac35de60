package api

import (
	"github.com/labstack/echo/v4"

	"authbench.evalgo.org/auth"
)

// SetupRoutes mounts the service routes. Registration, login and logout are
// public; the identity probe under /api requires a valid credential, checked
// by the middleware matching the active strategy.
func SetupRoutes(e *echo.Echo, h *Handlers, jwtSecret string) {
	// Public routes
	e.POST("/register", h.Register)
	e.POST("/login", h.Login)
	e.POST("/logout", h.Logout)

	// Protected routes
	protected := e.Group("/api")
	if h.Auth.Strategy().Name() == auth.StrategyToken {
		protected.Use(tokenAuth(jwtSecret))
	} else {
		protected.Use(h.sessionAuth())
	}

	protected.GET("/whoami", h.WhoAmI)
}
