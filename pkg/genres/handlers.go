package genres

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type handler struct {
	genreService *Service
}

func (h *handler) list(c echo.Context) error {
	genres, err := h.genreService.ListActive(c.Request().Context())
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, genres)
}
