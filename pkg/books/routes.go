package books

import (
	"github.com/ArinaZlatko/nonfiction-server/pkg/auth"
	"github.com/ArinaZlatko/nonfiction-server/pkg/genres"
	"github.com/ArinaZlatko/nonfiction-server/pkg/mediastore"
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"
)

// RegisterRoutes registers all book routes.
func RegisterRoutes(e *echo.Echo, db *bun.DB, media *mediastore.Store, genreService *genres.Service, authMiddleware *auth.Middleware) *Service {
	bookService := NewService(db, media, genreService)

	h := &handler{
		bookService: bookService,
	}

	e.GET("/books", h.list)
	e.GET("/books/:id", h.retrieve, authMiddleware.AuthenticateOptional)
	e.POST("/books/upload", h.upload, authMiddleware.Authenticate, authMiddleware.RequireWriter)
	e.PATCH("/books/:id/edit", h.update, authMiddleware.Authenticate, authMiddleware.RequireWriter)
	e.DELETE("/books/:id/delete", h.delete, authMiddleware.Authenticate, authMiddleware.RequireWriter)
	e.GET("/mybooks", h.myBooks, authMiddleware.Authenticate, authMiddleware.RequireWriter)
	e.POST("/books/:id/hide", h.hide, authMiddleware.Authenticate, authMiddleware.RequireStaff)
	e.POST("/books/:id/unhide", h.unhide, authMiddleware.Authenticate, authMiddleware.RequireStaff)

	return bookService
}
