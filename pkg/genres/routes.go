package genres

import (
	"github.com/labstack/echo/v4"
	"github.com/uptrace/bun"
)

// RegisterRoutes registers all genre routes.
func RegisterRoutes(e *echo.Echo, db *bun.DB) *Service {
	genreService := NewService(db)

	h := &handler{
		genreService: genreService,
	}

	e.GET("/genres", h.list)

	return genreService
}
