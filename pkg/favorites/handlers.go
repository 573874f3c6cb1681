package favorites

import (
	"net/http"
	"strconv"

	"github.com/ArinaZlatko/nonfiction-server/pkg/auth"
	"github.com/ArinaZlatko/nonfiction-server/pkg/books"
	"github.com/ArinaZlatko/nonfiction-server/pkg/errcodes"
	"github.com/labstack/echo/v4"
)

type handler struct {
	favoriteService *Service
	bookService     *books.Service
}

func pathID(c echo.Context, name string) (int, error) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil {
		return 0, errcodes.ValidationTypeError(strconv.Quote(name) + " should be of type int")
	}
	return id, nil
}

func (h *handler) add(c echo.Context) error {
	bookID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	ctx := c.Request().Context()

	// The book must exist and be visible before it can be favorited.
	book, err := h.bookService.RetrieveBook(ctx, books.RetrieveBookOptions{ID: &bookID})
	if err != nil {
		return err
	}

	user := auth.UserFromContext(c)
	if !book.IsVisible && !user.CanEditBook(book) && !user.CanModerateBook() {
		return errcodes.NotFound("Book")
	}

	favorite, err := h.favoriteService.Add(ctx, user.ID, bookID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, favorite)
}

func (h *handler) remove(c echo.Context) error {
	bookID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	user := auth.UserFromContext(c)

	err = h.favoriteService.Remove(c.Request().Context(), user.ID, bookID)
	if err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}

func (h *handler) list(c echo.Context) error {
	user := auth.UserFromContext(c)

	favorites, err := h.favoriteService.List(c.Request().Context(), user.ID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, favorites)
}
