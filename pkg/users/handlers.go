package users

import (
	"net/http"

	"github.com/ArinaZlatko/nonfiction-server/pkg/auth"
	"github.com/labstack/echo/v4"
)

type handler struct {
	userService *Service
}

func (h *handler) me(c echo.Context) error {
	return c.JSON(http.StatusOK, auth.UserFromContext(c))
}

func (h *handler) listWriters(c echo.Context) error {
	writers, err := h.userService.ListWriters(c.Request().Context())
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, writers)
}
