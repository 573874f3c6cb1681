package chapters

import (
	"net/http"
	"strconv"

	"github.com/ArinaZlatko/nonfiction-server/pkg/auth"
	"github.com/ArinaZlatko/nonfiction-server/pkg/books"
	"github.com/ArinaZlatko/nonfiction-server/pkg/errcodes"
	"github.com/ArinaZlatko/nonfiction-server/pkg/models"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

type handler struct {
	chapterService *Service
	bookService    *books.Service
}

func pathID(c echo.Context, name string) (int, error) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil {
		return 0, errcodes.ValidationTypeError(strconv.Quote(name) + " should be of type int")
	}
	return id, nil
}

// parseImageOrder reads a positional orders[] entry. Blank and non-numeric
// entries mean the next free value gets assigned.
func parseImageOrder(s string) *int {
	order, err := strconv.Atoi(s)
	if err != nil {
		return nil
	}
	return &order
}

// editableBook loads the book and verifies the current user may change it.
func (h *handler) editableBook(c echo.Context, bookID int) (*models.Book, error) {
	book, err := h.bookService.RetrieveBook(c.Request().Context(), books.RetrieveBookOptions{ID: &bookID})
	if err != nil {
		return nil, err
	}

	user := auth.UserFromContext(c)
	if !user.CanEditBook(book) {
		return nil, errcodes.Forbidden("Changing someone else's book")
	}

	return book, nil
}

func (h *handler) upload(c echo.Context) error {
	bookID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	p := uploadChapterPayload{}
	err = c.Bind(&p)
	if err != nil {
		return err
	}

	_, err = h.editableBook(c, bookID)
	if err != nil {
		return err
	}

	imageHeaders := p.FormFiles["images"]
	imageOpts := make([]CreateChapterImageOptions, 0, len(imageHeaders))
	for i, header := range imageHeaders {
		f, err := header.Open()
		if err != nil {
			return errors.WithStack(err)
		}
		defer f.Close()

		opt := CreateChapterImageOptions{File: f}
		if i < len(p.Captions) {
			opt.Caption = p.Captions[i]
		}
		if i < len(p.Orders) {
			opt.Order = parseImageOrder(p.Orders[i])
		}
		imageOpts = append(imageOpts, opt)
	}

	chapter, err := h.chapterService.CreateChapter(c.Request().Context(), CreateChapterOptions{
		BookID:  bookID,
		Title:   p.Title,
		Content: p.Content,
		Images:  imageOpts,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, chapter)
}

func (h *handler) retrieve(c echo.Context) error {
	bookID, err := pathID(c, "book_id")
	if err != nil {
		return err
	}
	chapterID, err := pathID(c, "chapter_id")
	if err != nil {
		return err
	}

	ctx := c.Request().Context()

	book, err := h.bookService.RetrieveBook(ctx, books.RetrieveBookOptions{ID: &bookID})
	if err != nil {
		return err
	}

	user := auth.UserFromContext(c)
	if !book.IsVisible {
		isOwner := user != nil && user.CanEditBook(book)
		if !isOwner && (user == nil || !user.CanModerateBook()) {
			return errcodes.NotFound("Book")
		}
	}

	chapter, err := h.chapterService.RetrieveChapter(ctx, RetrieveChapterOptions{
		ID:     &chapterID,
		BookID: &bookID,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, chapter)
}

func (h *handler) update(c echo.Context) error {
	bookID, err := pathID(c, "book_id")
	if err != nil {
		return err
	}
	chapterID, err := pathID(c, "chapter_id")
	if err != nil {
		return err
	}

	p := updateChapterPayload{}
	err = c.Bind(&p)
	if err != nil {
		return err
	}

	_, err = h.editableBook(c, bookID)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()

	chapter, err := h.chapterService.RetrieveChapter(ctx, RetrieveChapterOptions{
		ID:     &chapterID,
		BookID: &bookID,
	})
	if err != nil {
		return err
	}

	opts := UpdateChapterOptions{}
	if p.Title != nil {
		chapter.Title = *p.Title
		opts.Columns = append(opts.Columns, "title")
	}
	if p.Content != nil {
		chapter.Content = *p.Content
		opts.Columns = append(opts.Columns, "content")
	}
	for _, img := range p.Images {
		opts.Images = append(opts.Images, UpdateChapterImageOptions{
			ID:      img.ID,
			Caption: img.Caption,
			Order:   img.Order,
		})
	}

	err = h.chapterService.UpdateChapter(ctx, chapter, opts)
	if err != nil {
		return err
	}

	chapter, err = h.chapterService.RetrieveChapter(ctx, RetrieveChapterOptions{
		ID:     &chapterID,
		BookID: &bookID,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, chapter)
}

func (h *handler) delete(c echo.Context) error {
	bookID, err := pathID(c, "book_id")
	if err != nil {
		return err
	}
	chapterID, err := pathID(c, "chapter_id")
	if err != nil {
		return err
	}

	_, err = h.editableBook(c, bookID)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()

	chapter, err := h.chapterService.RetrieveChapter(ctx, RetrieveChapterOptions{
		ID:     &chapterID,
		BookID: &bookID,
	})
	if err != nil {
		return err
	}

	err = h.chapterService.DeleteChapter(ctx, chapter)
	if err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}
