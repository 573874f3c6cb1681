package comments

import (
	"github.com/ArinaZlatko/nonfiction-server/pkg/auth"
	"github.com/ArinaZlatko/nonfiction-server/pkg/books"
	"github.com/ArinaZlatko/nonfiction-server/pkg/notifications"
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"
)

// RegisterRoutes registers all comment routes.
func RegisterRoutes(e *echo.Echo, db *bun.DB, bookService *books.Service, notificationService *notifications.Service, authMiddleware *auth.Middleware) *Service {
	commentService := NewService(db, notificationService)

	h := &handler{
		commentService: commentService,
		bookService:    bookService,
	}

	e.GET("/books/:id/comments", h.list, authMiddleware.AuthenticateOptional)
	e.POST("/books/:id/comment/upload", h.create, authMiddleware.Authenticate)
	e.PATCH("/books/:id/comment/:comment_id", h.update, authMiddleware.Authenticate)
	e.DELETE("/books/:id/comment/:comment_id", h.delete, authMiddleware.Authenticate)

	return commentService
}
