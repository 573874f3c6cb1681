package books

import (
	"io"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/ArinaZlatko/nonfiction-server/pkg/auth"
	"github.com/ArinaZlatko/nonfiction-server/pkg/errcodes"
	"github.com/ArinaZlatko/nonfiction-server/pkg/models"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

type handler struct {
	bookService *Service
}

type bookResponse struct {
	*models.Book
	IsOwner bool `json:"is_owner"`
}

type uploadBookResponse struct {
	BookID int `json:"book_id"`
}

func pathID(c echo.Context, name string) (int, error) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil {
		return 0, errcodes.ValidationTypeError(strconv.Quote(name) + " should be of type int")
	}
	return id, nil
}

// coverReader pulls the uploaded cover part out of the multipart form, or
// returns nil when no cover was sent.
func coverReader(files map[string][]*multipart.FileHeader) (io.ReadCloser, error) {
	headers := files["cover"]
	if len(headers) == 0 {
		return nil, nil
	}
	f, err := headers[0].Open()
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return f, nil
}

func (h *handler) list(c echo.Context) error {
	q := listBooksQuery{}
	err := c.Bind(&q)
	if err != nil {
		return err
	}

	visible := true
	books, err := h.bookService.ListBooks(c.Request().Context(), ListBooksOptions{
		GenreIDs:      q.Genre,
		AuthorID:      q.Author,
		Search:        q.Search,
		SortField:     &q.SortField,
		SortDirection: &q.SortDirection,
		IsVisible:     &visible,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, books)
}

func (h *handler) retrieve(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	book, err := h.bookService.RetrieveBook(c.Request().Context(), RetrieveBookOptions{
		ID:              &id,
		IncludeChapters: true,
	})
	if err != nil {
		return err
	}

	user := auth.UserFromContext(c)
	isOwner := user != nil && user.CanEditBook(book)

	// Hidden books only exist for their author and for staff.
	if !book.IsVisible && !isOwner && (user == nil || !user.CanModerateBook()) {
		return errcodes.NotFound("Book")
	}

	return c.JSON(http.StatusOK, bookResponse{Book: book, IsOwner: isOwner})
}

func (h *handler) upload(c echo.Context) error {
	p := uploadBookPayload{}
	err := c.Bind(&p)
	if err != nil {
		return err
	}

	cover, err := coverReader(p.FormFiles)
	if err != nil {
		return err
	}
	if cover != nil {
		defer cover.Close()
	}

	user := auth.UserFromContext(c)

	opts := CreateBookOptions{
		AuthorID:    user.ID,
		Title:       p.Title,
		Description: p.Description,
		GenreIDs:    p.GenreIDs,
	}
	if cover != nil {
		opts.Cover = cover
	}

	book, err := h.bookService.CreateBook(c.Request().Context(), opts)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, uploadBookResponse{BookID: book.ID})
}

func (h *handler) update(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	p := updateBookPayload{}
	err = c.Bind(&p)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()

	book, err := h.bookService.RetrieveBook(ctx, RetrieveBookOptions{ID: &id})
	if err != nil {
		return err
	}

	user := auth.UserFromContext(c)
	if !user.CanEditBook(book) {
		return errcodes.Forbidden("Editing someone else's book")
	}

	opts := UpdateBookOptions{}
	if p.Title != nil {
		book.Title = *p.Title
		opts.Columns = append(opts.Columns, "title")
	}
	if p.Description != nil {
		book.Description = *p.Description
		opts.Columns = append(opts.Columns, "description")
	}
	if len(p.GenreIDs) > 0 {
		opts.GenreIDs = p.GenreIDs
		opts.UpdateGenres = true
	}

	cover, err := coverReader(p.FormFiles)
	if err != nil {
		return err
	}
	if cover != nil {
		defer cover.Close()
		opts.Cover = cover
	}

	err = h.bookService.UpdateBook(ctx, book, opts)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, bookResponse{Book: book, IsOwner: true})
}

func (h *handler) delete(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	ctx := c.Request().Context()

	book, err := h.bookService.RetrieveBook(ctx, RetrieveBookOptions{ID: &id})
	if err != nil {
		return err
	}

	user := auth.UserFromContext(c)
	if !user.CanEditBook(book) {
		return errcodes.Forbidden("Deleting someone else's book")
	}

	err = h.bookService.DeleteBook(ctx, book)
	if err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}

func (h *handler) myBooks(c echo.Context) error {
	user := auth.UserFromContext(c)

	books, err := h.bookService.ListBooks(c.Request().Context(), ListBooksOptions{
		AuthorID: &user.ID,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, books)
}

func (h *handler) hide(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	p := hideBookPayload{}
	err = c.Bind(&p)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()

	book, err := h.bookService.RetrieveBook(ctx, RetrieveBookOptions{ID: &id})
	if err != nil {
		return err
	}

	err = h.bookService.SetVisibility(ctx, book, false, p.HiddenComment)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, book)
}

func (h *handler) unhide(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	ctx := c.Request().Context()

	book, err := h.bookService.RetrieveBook(ctx, RetrieveBookOptions{ID: &id})
	if err != nil {
		return err
	}

	err = h.bookService.SetVisibility(ctx, book, true, "")
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, book)
}
