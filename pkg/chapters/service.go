package chapters

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/ArinaZlatko/nonfiction-server/pkg/database"
	"github.com/ArinaZlatko/nonfiction-server/pkg/errcodes"
	"github.com/ArinaZlatko/nonfiction-server/pkg/mediastore"
	"github.com/ArinaZlatko/nonfiction-server/pkg/models"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

// maxOrderRetries bounds how many times a chapter insert is retried when a
// concurrent insert claims the same order value.
const maxOrderRetries = 3

type CreateChapterImageOptions struct {
	File    io.Reader
	Caption string
	// Explicit display order. When nil the next free value is assigned.
	Order *int
}

type CreateChapterOptions struct {
	BookID  int
	Title   string
	Content string
	Images  []CreateChapterImageOptions
}

type RetrieveChapterOptions struct {
	ID     *int
	BookID *int
}

type UpdateChapterImageOptions struct {
	ID      int
	Caption *string
	Order   *int
}

type UpdateChapterOptions struct {
	Columns []string
	Images  []UpdateChapterImageOptions
}

type Service struct {
	db    *bun.DB
	media *mediastore.Store
}

func NewService(db *bun.DB, media *mediastore.Store) *Service {
	return &Service{db, media}
}

func chapterScope(bookID, chapterID int) string {
	return fmt.Sprintf("books/%d/chapters/%d", bookID, chapterID)
}

// CreateChapter inserts a chapter and its images. The chapter's order is
// assigned inside the transaction; when a concurrent insert wins the race
// for the same value, the unique index rejects the row and the whole
// transaction is retried from scratch with a fresh order.
func (svc *Service) CreateChapter(ctx context.Context, opts CreateChapterOptions) (*models.Chapter, error) {
	seen := map[int]struct{}{}
	for _, img := range opts.Images {
		if img.Order == nil {
			continue
		}
		if *img.Order < 0 {
			return nil, errcodes.ValidationError("Image order values must not be negative.")
		}
		if _, ok := seen[*img.Order]; ok {
			return nil, errcodes.ValidationError("Image order values must be unique.")
		}
		seen[*img.Order] = struct{}{}
	}

	// Image readers can only be consumed once, so buffer them up front in
	// case the transaction has to be retried.
	buffered := make([][]byte, len(opts.Images))
	for i, img := range opts.Images {
		data, err := io.ReadAll(img.File)
		if err != nil {
			return nil, errors.WithStack(err)
		}
		buffered[i] = data
	}

	var chapter *models.Chapter
	var err error
	for attempt := 0; attempt < maxOrderRetries; attempt++ {
		chapter, err = svc.createChapterOnce(ctx, opts, buffered)
		if err == nil {
			return chapter, nil
		}
		if !database.IsUniqueViolation(errors.Cause(err)) {
			return nil, err
		}
		// An image-order collision replays identically on every attempt:
		// an explicit value clashed with one the assigner handed out.
		if strings.Contains(err.Error(), "chapter_images") {
			return nil, errcodes.ValidationError("Image order values must be unique.")
		}
	}

	return nil, err
}

func (svc *Service) createChapterOnce(ctx context.Context, opts CreateChapterOptions, buffered [][]byte) (*models.Chapter, error) {
	now := time.Now()
	chapter := &models.Chapter{
		CreatedAt: now,
		UpdatedAt: now,
		BookID:    opts.BookID,
		Title:     opts.Title,
		Content:   opts.Content,
	}

	storedFiles := []string{}
	err := svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		order, err := svc.nextChapterOrder(ctx, tx, opts.BookID)
		if err != nil {
			return err
		}
		chapter.Order = order

		_, err = tx.
			NewInsert().
			Model(chapter).
			Returning("*").
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}

		chapter.Images = make([]*models.ChapterImage, 0, len(opts.Images))
		for i, img := range opts.Images {
			imageOrder := 0
			if img.Order != nil {
				imageOrder = *img.Order
			} else {
				imageOrder, err = svc.nextImageOrder(ctx, tx, chapter.ID)
				if err != nil {
					return err
				}
			}

			name, err := uuid.NewRandom()
			if err != nil {
				return errors.WithStack(err)
			}
			url, err := svc.media.Store(chapterScope(opts.BookID, chapter.ID), name.String(), bytes.NewReader(buffered[i]))
			if err != nil {
				return err
			}
			storedFiles = append(storedFiles, url)

			image := &models.ChapterImage{
				ChapterID: chapter.ID,
				ImagePath: url,
				Caption:   img.Caption,
				Order:     imageOrder,
			}
			_, err = tx.
				NewInsert().
				Model(image).
				Returning("*").
				Exec(ctx)
			if err != nil {
				return errors.WithStack(err)
			}

			chapter.Images = append(chapter.Images, image)
		}

		return nil
	})
	if err != nil {
		// No orphan files: whatever was written before the rollback goes too.
		for _, url := range storedFiles {
			_ = svc.media.Remove(url)
		}
		return nil, err
	}

	return chapter, nil
}

func (svc *Service) nextChapterOrder(ctx context.Context, tx bun.Tx, bookID int) (int, error) {
	var next int
	err := tx.
		NewSelect().
		Model((*models.Chapter)(nil)).
		ColumnExpr(`COALESCE(MAX(ch."order"), 0) + 1`).
		Where("ch.book_id = ?", bookID).
		Scan(ctx, &next)
	if err != nil {
		return 0, errors.WithStack(err)
	}
	return next, nil
}

func (svc *Service) nextImageOrder(ctx context.Context, tx bun.Tx, chapterID int) (int, error) {
	var next int
	err := tx.
		NewSelect().
		Model((*models.ChapterImage)(nil)).
		ColumnExpr(`COALESCE(MAX(ci."order"), 0) + 1`).
		Where("ci.chapter_id = ?", chapterID).
		Scan(ctx, &next)
	if err != nil {
		return 0, errors.WithStack(err)
	}
	return next, nil
}

func (svc *Service) RetrieveChapter(ctx context.Context, opts RetrieveChapterOptions) (*models.Chapter, error) {
	chapter := &models.Chapter{}

	q := svc.db.
		NewSelect().
		Model(chapter).
		Relation("Images", func(sq *bun.SelectQuery) *bun.SelectQuery {
			return sq.OrderExpr(`ci."order" ASC`)
		})

	if opts.ID != nil {
		q = q.Where("ch.id = ?", *opts.ID)
	}
	if opts.BookID != nil {
		q = q.Where("ch.book_id = ?", *opts.BookID)
	}

	err := q.Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Chapter")
		}
		return nil, errors.WithStack(err)
	}

	return chapter, nil
}

// UpdateChapter applies a partial update to the chapter and per-image
// caption/order edits. Edits addressed at image ids that don't belong to
// the chapter are skipped.
func (svc *Service) UpdateChapter(ctx context.Context, chapter *models.Chapter, opts UpdateChapterOptions) error {
	if len(opts.Columns) == 0 && len(opts.Images) == 0 {
		return nil
	}

	err := svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if len(opts.Columns) > 0 {
			chapter.UpdatedAt = time.Now()
			columns := append(opts.Columns, "updated_at")

			_, err := tx.
				NewUpdate().
				Model(chapter).
				Column(columns...).
				WherePK().
				Exec(ctx)
			if err != nil {
				return errors.WithStack(err)
			}
		}

		for _, img := range opts.Images {
			q := tx.
				NewUpdate().
				Model((*models.ChapterImage)(nil)).
				Where("id = ?", img.ID).
				Where("chapter_id = ?", chapter.ID)

			set := false
			if img.Caption != nil {
				q = q.Set("caption = ?", *img.Caption)
				set = true
			}
			if img.Order != nil {
				q = q.Set(`"order" = ?`, *img.Order)
				set = true
			}
			if !set {
				continue
			}

			_, err := q.Exec(ctx)
			if err != nil {
				return errors.WithStack(err)
			}
		}

		return nil
	})
	if err != nil {
		if database.IsUniqueViolation(errors.Cause(err)) {
			return errcodes.ValidationError("Image order values must be unique.")
		}
		return err
	}

	return nil
}

// DeleteChapter removes the chapter row, its image rows via cascade, and
// the image files.
func (svc *Service) DeleteChapter(ctx context.Context, chapter *models.Chapter) error {
	_, err := svc.db.
		NewDelete().
		Model(chapter).
		WherePK().
		Exec(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	return svc.media.RemoveScope(chapterScope(chapter.BookID, chapter.ID))
}
