package comments

import (
	"net/http"
	"strconv"

	"github.com/ArinaZlatko/nonfiction-server/pkg/auth"
	"github.com/ArinaZlatko/nonfiction-server/pkg/books"
	"github.com/ArinaZlatko/nonfiction-server/pkg/errcodes"
	"github.com/ArinaZlatko/nonfiction-server/pkg/models"
	"github.com/labstack/echo/v4"
)

type handler struct {
	commentService *Service
	bookService    *books.Service
}

func pathID(c echo.Context, name string) (int, error) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil {
		return 0, errcodes.ValidationTypeError(strconv.Quote(name) + " should be of type int")
	}
	return id, nil
}

// visibleBook loads the book and hides it from users who shouldn't see it.
func (h *handler) visibleBook(c echo.Context, bookID int) (*models.Book, error) {
	book, err := h.bookService.RetrieveBook(c.Request().Context(), books.RetrieveBookOptions{ID: &bookID})
	if err != nil {
		return nil, err
	}

	user := auth.UserFromContext(c)
	if !book.IsVisible {
		isOwner := user != nil && user.CanEditBook(book)
		if !isOwner && (user == nil || !user.CanModerateBook()) {
			return nil, errcodes.NotFound("Book")
		}
	}

	return book, nil
}

func (h *handler) list(c echo.Context) error {
	bookID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	_, err = h.visibleBook(c, bookID)
	if err != nil {
		return err
	}

	comments, err := h.commentService.ListComments(c.Request().Context(), bookID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, comments)
}

func (h *handler) create(c echo.Context) error {
	bookID, err := pathID(c, "id")
	if err != nil {
		return err
	}

	p := createCommentPayload{}
	err = c.Bind(&p)
	if err != nil {
		return err
	}

	_, err = h.visibleBook(c, bookID)
	if err != nil {
		return err
	}

	user := auth.UserFromContext(c)

	comment, err := h.commentService.CreateComment(c.Request().Context(), CreateCommentOptions{
		UserID:  user.ID,
		BookID:  bookID,
		Content: p.Content,
		Rating:  p.Rating,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, comment)
}

func (h *handler) update(c echo.Context) error {
	bookID, err := pathID(c, "id")
	if err != nil {
		return err
	}
	commentID, err := pathID(c, "comment_id")
	if err != nil {
		return err
	}

	p := updateCommentPayload{}
	err = c.Bind(&p)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()

	comment, err := h.commentService.RetrieveComment(ctx, RetrieveCommentOptions{
		ID:     &commentID,
		BookID: &bookID,
	})
	if err != nil {
		return err
	}

	user := auth.UserFromContext(c)
	if comment.UserID != user.ID {
		return errcodes.Forbidden("Editing someone else's comment")
	}

	opts := UpdateCommentOptions{}
	if p.Content != nil {
		comment.Content = *p.Content
		opts.Columns = append(opts.Columns, "content")
	}
	if p.Rating != nil {
		comment.Rating = *p.Rating
		opts.Columns = append(opts.Columns, "rating")
	}

	err = h.commentService.UpdateComment(ctx, comment, opts)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, comment)
}

func (h *handler) delete(c echo.Context) error {
	bookID, err := pathID(c, "id")
	if err != nil {
		return err
	}
	commentID, err := pathID(c, "comment_id")
	if err != nil {
		return err
	}

	ctx := c.Request().Context()

	comment, err := h.commentService.RetrieveComment(ctx, RetrieveCommentOptions{
		ID:     &commentID,
		BookID: &bookID,
	})
	if err != nil {
		return err
	}

	user := auth.UserFromContext(c)
	if comment.UserID != user.ID {
		return errcodes.Forbidden("Deleting someone else's comment")
	}

	err = h.commentService.DeleteComment(ctx, comment)
	if err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}
