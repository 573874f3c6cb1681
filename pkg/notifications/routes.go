package notifications

import (
	"github.com/ArinaZlatko/nonfiction-server/pkg/auth"
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"
)

// RegisterRoutes registers all notification routes.
func RegisterRoutes(e *echo.Echo, db *bun.DB, authMiddleware *auth.Middleware) *Service {
	notificationService := NewService(db)

	h := &handler{
		notificationService: notificationService,
	}

	e.GET("/notifications", h.list, authMiddleware.Authenticate)
	e.POST("/notifications/:id/read", h.markRead, authMiddleware.Authenticate)

	return notificationService
}
