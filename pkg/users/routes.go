package users

import (
	"github.com/ArinaZlatko/nonfiction-server/pkg/auth"
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"
)

// RegisterRoutes registers all user routes.
func RegisterRoutes(e *echo.Echo, db *bun.DB, authMiddleware *auth.Middleware) *Service {
	userService := NewService(db)

	h := &handler{
		userService: userService,
	}

	e.GET("/users/me", h.me, authMiddleware.Authenticate)
	e.GET("/writers", h.listWriters)

	return userService
}
