package chapters

import (
	"github.com/ArinaZlatko/nonfiction-server/pkg/auth"
	"github.com/ArinaZlatko/nonfiction-server/pkg/books"
	"github.com/ArinaZlatko/nonfiction-server/pkg/mediastore"
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"
)

// RegisterRoutes registers all chapter routes.
func RegisterRoutes(e *echo.Echo, db *bun.DB, media *mediastore.Store, bookService *books.Service, authMiddleware *auth.Middleware) *Service {
	chapterService := NewService(db, media)

	h := &handler{
		chapterService: chapterService,
		bookService:    bookService,
	}

	e.POST("/books/:id/chapter/upload", h.upload, authMiddleware.Authenticate, authMiddleware.RequireWriter)
	e.GET("/books/:book_id/chapter/:chapter_id", h.retrieve, authMiddleware.AuthenticateOptional)
	e.PATCH("/books/:book_id/chapter/:chapter_id/edit", h.update, authMiddleware.Authenticate, authMiddleware.RequireWriter)
	e.DELETE("/books/:book_id/chapter/:chapter_id/delete", h.delete, authMiddleware.Authenticate, authMiddleware.RequireWriter)

	return chapterService
}
