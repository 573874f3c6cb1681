package comments

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ArinaZlatko/nonfiction-server/pkg/database"
	"github.com/ArinaZlatko/nonfiction-server/pkg/errcodes"
	"github.com/ArinaZlatko/nonfiction-server/pkg/models"
	"github.com/ArinaZlatko/nonfiction-server/pkg/notifications"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

type CreateCommentOptions struct {
	UserID  int
	BookID  int
	Content string
	Rating  int
}

type UpdateCommentOptions struct {
	Columns []string
}

type Service struct {
	db                  *bun.DB
	notificationService *notifications.Service
}

func NewService(db *bun.DB, notificationService *notifications.Service) *Service {
	return &Service{db, notificationService}
}

// CreateComment records a reader's comment and rating and notifies the
// book's author. One comment per user per book; the unique index backs
// that up against races.
func (svc *Service) CreateComment(ctx context.Context, opts CreateCommentOptions) (*models.Comment, error) {
	exists, err := svc.db.NewSelect().
		Model((*models.Comment)(nil)).
		Where("cm.user_id = ?", opts.UserID).
		Where("cm.book_id = ?", opts.BookID).
		Exists(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	if exists {
		return nil, errcodes.ValidationError("You have already commented on this book.")
	}

	now := time.Now()
	comment := &models.Comment{
		CreatedAt: now,
		UpdatedAt: now,
		UserID:    opts.UserID,
		BookID:    opts.BookID,
		Content:   opts.Content,
		Rating:    opts.Rating,
	}

	_, err = svc.db.NewInsert().Model(comment).Returning("*").Exec(ctx)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, errcodes.ValidationError("You have already commented on this book.")
		}
		return nil, errors.WithStack(err)
	}

	book := &models.Book{}
	err = svc.db.NewSelect().
		Model(book).
		Relation("Author").
		Where("b.id = ?", opts.BookID).
		Scan(ctx)
	if err == nil && book.AuthorID != opts.UserID {
		msg := fmt.Sprintf("New comment on %q", book.Title)
		_, _ = svc.notificationService.Notify(ctx, book.AuthorID, msg)
	}

	return comment, nil
}

// ListComments lists a book's comments, newest first, with the commenter
// embedded.
func (svc *Service) ListComments(ctx context.Context, bookID int) ([]*models.Comment, error) {
	comments := []*models.Comment{}

	err := svc.db.NewSelect().
		Model(&comments).
		Relation("User").
		Where("cm.book_id = ?", bookID).
		Order("cm.created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return comments, nil
}

type RetrieveCommentOptions struct {
	ID     *int
	BookID *int
}

func (svc *Service) RetrieveComment(ctx context.Context, opts RetrieveCommentOptions) (*models.Comment, error) {
	comment := &models.Comment{}

	q := svc.db.NewSelect().
		Model(comment).
		Relation("User")

	if opts.ID != nil {
		q = q.Where("cm.id = ?", *opts.ID)
	}
	if opts.BookID != nil {
		q = q.Where("cm.book_id = ?", *opts.BookID)
	}

	err := q.Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Comment")
		}
		return nil, errors.WithStack(err)
	}

	return comment, nil
}

func (svc *Service) UpdateComment(ctx context.Context, comment *models.Comment, opts UpdateCommentOptions) error {
	if len(opts.Columns) == 0 {
		return nil
	}

	comment.UpdatedAt = time.Now()
	columns := append(opts.Columns, "updated_at")

	_, err := svc.db.NewUpdate().
		Model(comment).
		Column(columns...).
		WherePK().
		Exec(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	return nil
}

func (svc *Service) DeleteComment(ctx context.Context, comment *models.Comment) error {
	_, err := svc.db.NewDelete().
		Model(comment).
		WherePK().
		Exec(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	return nil
}
