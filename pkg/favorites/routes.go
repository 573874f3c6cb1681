package favorites

import (
	"github.com/ArinaZlatko/nonfiction-server/pkg/auth"
	"github.com/ArinaZlatko/nonfiction-server/pkg/books"
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"
)

// RegisterRoutes registers all favorite routes.
func RegisterRoutes(e *echo.Echo, db *bun.DB, bookService *books.Service, authMiddleware *auth.Middleware) *Service {
	favoriteService := NewService(db)

	h := &handler{
		favoriteService: favoriteService,
		bookService:     bookService,
	}

	e.POST("/books/:id/favorite", h.add, authMiddleware.Authenticate)
	e.DELETE("/books/:id/favorite", h.remove, authMiddleware.Authenticate)
	e.GET("/favorites", h.list, authMiddleware.Authenticate)

	return favoriteService
}
