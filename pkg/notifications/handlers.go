package notifications

import (
	"net/http"
	"strconv"

	"github.com/ArinaZlatko/nonfiction-server/pkg/auth"
	"github.com/ArinaZlatko/nonfiction-server/pkg/errcodes"
	"github.com/labstack/echo/v4"
)

type handler struct {
	notificationService *Service
}

func (h *handler) list(c echo.Context) error {
	user := auth.UserFromContext(c)

	notifications, err := h.notificationService.List(c.Request().Context(), user.ID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, notifications)
}

func (h *handler) markRead(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return errcodes.ValidationTypeError(`"id" should be of type int`)
	}

	user := auth.UserFromContext(c)

	notification, err := h.notificationService.MarkRead(c.Request().Context(), user.ID, id)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, notification)
}
