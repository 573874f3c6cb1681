package books

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/ArinaZlatko/nonfiction-server/pkg/errcodes"
	"github.com/ArinaZlatko/nonfiction-server/pkg/genres"
	"github.com/ArinaZlatko/nonfiction-server/pkg/mediastore"
	"github.com/ArinaZlatko/nonfiction-server/pkg/models"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

const (
	SortFieldTitle  = "title"
	SortFieldDate   = "date"
	SortFieldRating = "rating"

	SortDirectionAsc  = "asc"
	SortDirectionDesc = "desc"
)

type CreateBookOptions struct {
	AuthorID    int
	Title       string
	Description string
	GenreIDs    []int
	Cover       io.Reader
}

type RetrieveBookOptions struct {
	ID              *int
	IncludeChapters bool
}

type ListBooksOptions struct {
	GenreIDs      []int
	AuthorID      *int
	Search        *string
	SortField     *string
	SortDirection *string
	IsVisible     *bool
}

type UpdateBookOptions struct {
	Columns      []string
	GenreIDs     []int
	UpdateGenres bool
	Cover        io.Reader
}

type Service struct {
	db           *bun.DB
	media        *mediastore.Store
	genreService *genres.Service
}

func NewService(db *bun.DB, media *mediastore.Store, genreService *genres.Service) *Service {
	return &Service{db, media, genreService}
}

func bookScope(bookID int) string {
	return fmt.Sprintf("books/%d", bookID)
}

// CreateBook inserts the book, its genre memberships, and the cover file.
// The row writes share one transaction; a cover written before the
// transaction fails is removed again so no orphan file survives.
func (svc *Service) CreateBook(ctx context.Context, opts CreateBookOptions) (*models.Book, error) {
	activeGenres, err := svc.genreService.ResolveActive(ctx, opts.GenreIDs)
	if err != nil {
		return nil, err
	}
	if len(activeGenres) == 0 {
		return nil, errcodes.ValidationError("At least one active genre is required.")
	}

	now := time.Now()
	book := &models.Book{
		CreatedAt:   now,
		UpdatedAt:   now,
		Title:       opts.Title,
		Description: opts.Description,
		AuthorID:    opts.AuthorID,
		IsVisible:   true,
	}

	var storedCover string
	err = svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		_, err := tx.
			NewInsert().
			Model(book).
			Returning("*").
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}

		bookGenres := make([]*models.BookGenre, 0, len(activeGenres))
		for _, genre := range activeGenres {
			bookGenres = append(bookGenres, &models.BookGenre{
				BookID:  book.ID,
				GenreID: genre.ID,
			})
		}
		_, err = tx.
			NewInsert().
			Model(&bookGenres).
			Exec(ctx)
		if err != nil {
			return errors.WithStack(err)
		}

		if opts.Cover != nil {
			url, err := svc.media.Store(bookScope(book.ID), "cover", opts.Cover)
			if err != nil {
				return err
			}
			storedCover = url
			book.CoverPath = &url

			_, err = tx.
				NewUpdate().
				Model(book).
				Column("cover_path").
				WherePK().
				Exec(ctx)
			if err != nil {
				return errors.WithStack(err)
			}
		}

		return nil
	})
	if err != nil {
		if storedCover != "" {
			_ = svc.media.Remove(storedCover)
		}
		return nil, errors.WithStack(err)
	}

	book.Genres = activeGenres
	return book, nil
}

func (svc *Service) RetrieveBook(ctx context.Context, opts RetrieveBookOptions) (*models.Book, error) {
	book := &models.Book{}

	q := svc.db.
		NewSelect().
		Model(book).
		Relation("Author").
		Relation("Genres", func(sq *bun.SelectQuery) *bun.SelectQuery {
			return sq.Order("name ASC")
		})

	if opts.IncludeChapters {
		q = q.Relation("Chapters", func(sq *bun.SelectQuery) *bun.SelectQuery {
			return sq.ExcludeColumn("content").OrderExpr(`ch."order" ASC`)
		})
	}

	if opts.ID != nil {
		q = q.Where("b.id = ?", *opts.ID)
	}

	err := q.Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Book")
		}
		return nil, errors.WithStack(err)
	}

	return book, nil
}

// ListBooks lists books with catalog filtering. Genre filtering is an
// intersection: a book qualifies only when it carries every requested
// genre. Rating sorting joins comments, so books nobody has rated drop
// out of a rating-sorted listing.
func (svc *Service) ListBooks(ctx context.Context, opts ListBooksOptions) ([]*models.Book, error) {
	books := []*models.Book{}

	q := svc.db.
		NewSelect().
		Model(&books).
		Relation("Author").
		Relation("Genres", func(sq *bun.SelectQuery) *bun.SelectQuery {
			return sq.Order("name ASC")
		})

	if opts.IsVisible != nil {
		q = q.Where("b.is_visible = ?", *opts.IsVisible)
	}
	if opts.AuthorID != nil {
		q = q.Where("b.author_id = ?", *opts.AuthorID)
	}
	if opts.Search != nil && *opts.Search != "" {
		pattern := "%" + strings.ToLower(*opts.Search) + "%"
		q = q.
			Join("JOIN users AS au ON au.id = b.author_id").
			Where(
				"(LOWER(b.title) LIKE ? OR LOWER(au.first_name) LIKE ? OR LOWER(au.last_name) LIKE ? OR LOWER(au.surname) LIKE ?)",
				pattern, pattern, pattern, pattern,
			)
	}

	grouped := false
	if len(opts.GenreIDs) > 0 {
		genreIDs := dedupeInts(opts.GenreIDs)
		q = q.
			Join("JOIN book_genres AS bg ON bg.book_id = b.id").
			Where("bg.genre_id IN (?)", bun.In(genreIDs)).
			Group("b.id").
			Having("COUNT(DISTINCT bg.genre_id) = ?", len(genreIDs))
		grouped = true
	}

	direction := "ASC"
	if opts.SortDirection != nil && *opts.SortDirection == SortDirectionDesc {
		direction = "DESC"
	}

	orderExpr := "b.created_at"
	if opts.SortField != nil {
		switch *opts.SortField {
		case SortFieldTitle:
			orderExpr = "LOWER(b.title)"
		case SortFieldRating:
			q = q.
				ColumnExpr("b.*").
				ColumnExpr("AVG(cm.rating) AS avg_rating").
				Join("JOIN comments AS cm ON cm.book_id = b.id")
			if !grouped {
				q = q.Group("b.id")
			}
			orderExpr = "avg_rating"
		}
	}

	err := q.OrderExpr(orderExpr + " " + direction).Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return books, nil
}

// UpdateBook applies a partial update. When UpdateGenres is set, the genre
// set is replaced wholesale and must still resolve to at least one active
// genre. A new cover replaces the old file after the row update commits.
func (svc *Service) UpdateBook(ctx context.Context, book *models.Book, opts UpdateBookOptions) error {
	var activeGenres []*models.Genre
	if opts.UpdateGenres {
		var err error
		activeGenres, err = svc.genreService.ResolveActive(ctx, opts.GenreIDs)
		if err != nil {
			return err
		}
		if len(activeGenres) == 0 {
			return errcodes.ValidationError("At least one active genre is required.")
		}
	}

	var oldCover string
	if book.CoverPath != nil {
		oldCover = *book.CoverPath
	}

	var storedCover string
	if opts.Cover != nil {
		url, err := svc.media.Store(bookScope(book.ID), "cover", opts.Cover)
		if err != nil {
			return err
		}
		storedCover = url
		book.CoverPath = &url
		opts.Columns = append(opts.Columns, "cover_path")
	}

	if len(opts.Columns) == 0 && !opts.UpdateGenres {
		return nil
	}

	err := svc.db.RunInTx(ctx, &sql.TxOptions{}, func(ctx context.Context, tx bun.Tx) error {
		if opts.UpdateGenres {
			_, err := tx.
				NewDelete().
				Model((*models.BookGenre)(nil)).
				Where("book_id = ?", book.ID).
				Exec(ctx)
			if err != nil {
				return errors.WithStack(err)
			}

			bookGenres := make([]*models.BookGenre, 0, len(activeGenres))
			for _, genre := range activeGenres {
				bookGenres = append(bookGenres, &models.BookGenre{
					BookID:  book.ID,
					GenreID: genre.ID,
				})
			}
			_, err = tx.
				NewInsert().
				Model(&bookGenres).
				Exec(ctx)
			if err != nil {
				return errors.WithStack(err)
			}
		}

		if len(opts.Columns) > 0 {
			book.UpdatedAt = time.Now()
			columns := append(opts.Columns, "updated_at")

			_, err := tx.
				NewUpdate().
				Model(book).
				Column(columns...).
				WherePK().
				Exec(ctx)
			if err != nil {
				return errors.WithStack(err)
			}
		}

		return nil
	})
	if err != nil {
		if storedCover != "" && storedCover != oldCover {
			_ = svc.media.Remove(storedCover)
		}
		return errors.WithStack(err)
	}

	if opts.UpdateGenres {
		book.Genres = activeGenres
	}
	if storedCover != "" && oldCover != "" && storedCover != oldCover {
		_ = svc.media.Remove(oldCover)
	}

	return nil
}

// DeleteBook removes the book row, everything hanging off it via cascade,
// and the book's media directory.
func (svc *Service) DeleteBook(ctx context.Context, book *models.Book) error {
	_, err := svc.db.
		NewDelete().
		Model(book).
		WherePK().
		Exec(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	return svc.media.RemoveScope(bookScope(book.ID))
}

// SetVisibility flips the moderation flag. The hidden comment is stored
// alongside so the author can see why their book was pulled.
func (svc *Service) SetVisibility(ctx context.Context, book *models.Book, visible bool, hiddenComment string) error {
	book.IsVisible = visible
	book.HiddenComment = hiddenComment
	book.UpdatedAt = time.Now()

	_, err := svc.db.
		NewUpdate().
		Model(book).
		Column("is_visible", "hidden_comment", "updated_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	return nil
}

func dedupeInts(in []int) []int {
	seen := make(map[int]struct{}, len(in))
	out := make([]int, 0, len(in))
	for _, v := range in {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
