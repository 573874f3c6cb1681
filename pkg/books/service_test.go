package books

import (
	"bytes"
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ArinaZlatko/nonfiction-server/pkg/database"
	"github.com/ArinaZlatko/nonfiction-server/pkg/genres"
	"github.com/ArinaZlatko/nonfiction-server/pkg/mediastore"
	"github.com/ArinaZlatko/nonfiction-server/pkg/migrations"
	"github.com/ArinaZlatko/nonfiction-server/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

// Enough of a PNG for content sniffing to identify it.
var pngBytes = append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 16)...)

func newTestDB(t *testing.T) *bun.DB {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)
	// A second pool connection would see a different empty database.
	sqldb.SetMaxOpenConns(1)

	db := bun.NewDB(sqldb, sqlitedialect.New())
	database.RegisterModels(db)

	_, err = db.Exec("PRAGMA foreign_keys = ON")
	require.NoError(t, err)

	_, err = migrations.BringUpToDate(context.Background(), db)
	require.NoError(t, err)

	t.Cleanup(func() {
		db.Close()
	})

	return db
}

func newTestService(t *testing.T) (*Service, *bun.DB, *mediastore.Store) {
	t.Helper()

	db := newTestDB(t)
	media, err := mediastore.New(t.TempDir())
	require.NoError(t, err)

	return NewService(db, media, genres.NewService(db)), db, media
}

func insertUser(ctx context.Context, t *testing.T, db *bun.DB, username, role string) *models.User {
	t.Helper()

	now := time.Now()
	user := &models.User{
		CreatedAt:    now,
		UpdatedAt:    now,
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "x",
		FirstName:    "First",
		LastName:     username,
		Role:         role,
		IsActive:     true,
	}
	_, err := db.NewInsert().Model(user).Exec(ctx)
	require.NoError(t, err)

	return user
}

func insertGenre(ctx context.Context, t *testing.T, db *bun.DB, name string, isActive bool) *models.Genre {
	t.Helper()

	genre := &models.Genre{Name: name, IsActive: isActive}
	_, err := db.NewInsert().Model(genre).Exec(ctx)
	require.NoError(t, err)

	return genre
}

func insertComment(ctx context.Context, t *testing.T, db *bun.DB, userID, bookID, rating int) {
	t.Helper()

	now := time.Now()
	comment := &models.Comment{
		CreatedAt: now,
		UpdatedAt: now,
		UserID:    userID,
		BookID:    bookID,
		Content:   "fine",
		Rating:    rating,
	}
	_, err := db.NewInsert().Model(comment).Exec(ctx)
	require.NoError(t, err)
}

func TestServiceCreateBook(t *testing.T) {
	t.Parallel()

	svc, db, media := newTestService(t)
	ctx := context.Background()

	writer := insertUser(ctx, t, db, "writer", models.RoleWriter)
	science := insertGenre(ctx, t, db, "Science", true)
	retired := insertGenre(ctx, t, db, "Retired", false)

	t.Run("creates a visible book with genres and cover", func(tt *testing.T) {
		book, err := svc.CreateBook(ctx, CreateBookOptions{
			AuthorID:    writer.ID,
			Title:       "Thinking in Systems",
			Description: "A primer.",
			GenreIDs:    []int{science.ID},
			Cover:       bytes.NewReader(pngBytes),
		})
		require.NoError(tt, err)
		assert.True(tt, book.IsVisible)
		require.Len(tt, book.Genres, 1)
		require.NotNil(tt, book.CoverPath)
		assert.Equal(tt, "/media/books/", (*book.CoverPath)[:13])

		rel := (*book.CoverPath)[len("/media/"):]
		_, err = os.Stat(filepath.Join(media.Root(), filepath.FromSlash(rel)))
		assert.NoError(tt, err)
	})

	t.Run("rejects a genre set with no active genres", func(tt *testing.T) {
		_, err := svc.CreateBook(ctx, CreateBookOptions{
			AuthorID:    writer.ID,
			Title:       "No Genres",
			Description: "x",
			GenreIDs:    []int{retired.ID},
		})
		require.Error(tt, err)
		assert.Contains(tt, err.Error(), "active genre")
	})

	t.Run("rejects a non-image cover and leaves no rows behind", func(tt *testing.T) {
		_, err := svc.CreateBook(ctx, CreateBookOptions{
			AuthorID:    writer.ID,
			Title:       "Broken Cover",
			Description: "x",
			GenreIDs:    []int{science.ID},
			Cover:       bytes.NewReader([]byte("just text")),
		})
		require.Error(tt, err)

		exists, err := db.NewSelect().
			Model((*models.Book)(nil)).
			Where("b.title = ?", "Broken Cover").
			Exists(ctx)
		require.NoError(tt, err)
		assert.False(tt, exists)
	})
}

func TestServiceListBooks(t *testing.T) {
	t.Parallel()

	svc, db, _ := newTestService(t)
	ctx := context.Background()

	tolstoy := insertUser(ctx, t, db, "tolstoy", models.RoleWriter)
	orwell := insertUser(ctx, t, db, "orwell", models.RoleWriter)
	reader := insertUser(ctx, t, db, "reader", models.RoleReader)

	history := insertGenre(ctx, t, db, "History", true)
	science := insertGenre(ctx, t, db, "Science", true)
	memoir := insertGenre(ctx, t, db, "Memoir", true)

	warBook, err := svc.CreateBook(ctx, CreateBookOptions{
		AuthorID: tolstoy.ID, Title: "Sevastopol Sketches", Description: "x",
		GenreIDs: []int{history.ID, memoir.ID},
	})
	require.NoError(t, err)

	essays, err := svc.CreateBook(ctx, CreateBookOptions{
		AuthorID: orwell.ID, Title: "Essays on Science", Description: "x",
		GenreIDs: []int{history.ID, science.ID},
	})
	require.NoError(t, err)

	hidden, err := svc.CreateBook(ctx, CreateBookOptions{
		AuthorID: orwell.ID, Title: "Pulled Down", Description: "x",
		GenreIDs: []int{history.ID},
	})
	require.NoError(t, err)
	require.NoError(t, svc.SetVisibility(ctx, hidden, false, "plagiarism report"))

	visible := true

	t.Run("visibility filter excludes hidden books", func(tt *testing.T) {
		books, err := svc.ListBooks(ctx, ListBooksOptions{IsVisible: &visible})
		require.NoError(tt, err)
		require.Len(tt, books, 2)
	})

	t.Run("genre filter is an intersection, not a union", func(tt *testing.T) {
		books, err := svc.ListBooks(ctx, ListBooksOptions{
			GenreIDs:  []int{history.ID, memoir.ID},
			IsVisible: &visible,
		})
		require.NoError(tt, err)
		require.Len(tt, books, 1)
		assert.Equal(tt, warBook.ID, books[0].ID)
	})

	t.Run("unmatched genre combination yields an empty result", func(tt *testing.T) {
		books, err := svc.ListBooks(ctx, ListBooksOptions{
			GenreIDs:  []int{science.ID, memoir.ID},
			IsVisible: &visible,
		})
		require.NoError(tt, err)
		assert.Empty(tt, books)
	})

	t.Run("duplicated genre ids do not break the membership count", func(tt *testing.T) {
		books, err := svc.ListBooks(ctx, ListBooksOptions{
			GenreIDs:  []int{history.ID, history.ID},
			IsVisible: &visible,
		})
		require.NoError(tt, err)
		assert.Len(tt, books, 2)
	})

	t.Run("search matches the author's last name case-insensitively", func(tt *testing.T) {
		search := "TOLST"
		books, err := svc.ListBooks(ctx, ListBooksOptions{
			Search:    &search,
			IsVisible: &visible,
		})
		require.NoError(tt, err)
		require.Len(tt, books, 1)
		assert.Equal(tt, warBook.ID, books[0].ID)
	})

	t.Run("search matches the title too", func(tt *testing.T) {
		search := "essays"
		books, err := svc.ListBooks(ctx, ListBooksOptions{
			Search:    &search,
			IsVisible: &visible,
		})
		require.NoError(tt, err)
		require.Len(tt, books, 1)
		assert.Equal(tt, essays.ID, books[0].ID)
	})

	t.Run("author filter is exact", func(tt *testing.T) {
		books, err := svc.ListBooks(ctx, ListBooksOptions{
			AuthorID:  &tolstoy.ID,
			IsVisible: &visible,
		})
		require.NoError(tt, err)
		require.Len(tt, books, 1)
		assert.Equal(tt, warBook.ID, books[0].ID)
	})

	t.Run("rating sort averages comments and drops unrated books", func(tt *testing.T) {
		insertComment(ctx, tt, db, reader.ID, warBook.ID, 2)
		insertComment(ctx, tt, db, tolstoy.ID, essays.ID, 5)
		insertComment(ctx, tt, db, reader.ID, essays.ID, 4)

		sortField := SortFieldRating
		desc := SortDirectionDesc
		books, err := svc.ListBooks(ctx, ListBooksOptions{
			SortField:     &sortField,
			SortDirection: &desc,
			IsVisible:     &visible,
		})
		require.NoError(tt, err)
		require.Len(tt, books, 2)
		assert.Equal(tt, essays.ID, books[0].ID)
		assert.InDelta(tt, 4.5, books[0].AvgRating, 0.001)
		assert.Equal(tt, warBook.ID, books[1].ID)

		unrated, err := svc.CreateBook(ctx, CreateBookOptions{
			AuthorID: orwell.ID, Title: "Nobody Read This", Description: "x",
			GenreIDs: []int{history.ID},
		})
		require.NoError(tt, err)

		books, err = svc.ListBooks(ctx, ListBooksOptions{
			SortField: &sortField,
			IsVisible: &visible,
		})
		require.NoError(tt, err)
		for _, b := range books {
			assert.NotEqual(tt, unrated.ID, b.ID)
		}
	})

	t.Run("title sort is case-insensitive", func(tt *testing.T) {
		sortField := SortFieldTitle
		books, err := svc.ListBooks(ctx, ListBooksOptions{
			SortField: &sortField,
			IsVisible: &visible,
		})
		require.NoError(tt, err)
		require.NotEmpty(tt, books)
		assert.Equal(tt, essays.ID, books[0].ID)
	})
}

func TestServiceUpdateBook(t *testing.T) {
	t.Parallel()

	svc, db, _ := newTestService(t)
	ctx := context.Background()

	writer := insertUser(ctx, t, db, "writer", models.RoleWriter)
	history := insertGenre(ctx, t, db, "History", true)
	science := insertGenre(ctx, t, db, "Science", true)
	retired := insertGenre(ctx, t, db, "Retired", false)

	book, err := svc.CreateBook(ctx, CreateBookOptions{
		AuthorID: writer.ID, Title: "Draft", Description: "x",
		GenreIDs: []int{history.ID},
	})
	require.NoError(t, err)

	t.Run("replaces the genre set wholesale", func(tt *testing.T) {
		err := svc.UpdateBook(ctx, book, UpdateBookOptions{
			GenreIDs:     []int{science.ID},
			UpdateGenres: true,
		})
		require.NoError(tt, err)

		memberships := []*models.BookGenre{}
		err = db.NewSelect().
			Model(&memberships).
			Where("bg.book_id = ?", book.ID).
			Scan(ctx)
		require.NoError(tt, err)
		require.Len(tt, memberships, 1)
		assert.Equal(tt, science.ID, memberships[0].GenreID)
	})

	t.Run("refuses to leave the genre set empty", func(tt *testing.T) {
		err := svc.UpdateBook(ctx, book, UpdateBookOptions{
			GenreIDs:     []int{retired.ID},
			UpdateGenres: true,
		})
		require.Error(tt, err)
		assert.Contains(tt, err.Error(), "active genre")
	})

	t.Run("partial column update leaves other fields alone", func(tt *testing.T) {
		book.Title = "Published"
		err := svc.UpdateBook(ctx, book, UpdateBookOptions{Columns: []string{"title"}})
		require.NoError(tt, err)

		got, err := svc.RetrieveBook(ctx, RetrieveBookOptions{ID: &book.ID})
		require.NoError(tt, err)
		assert.Equal(tt, "Published", got.Title)
		assert.Equal(tt, "x", got.Description)
	})
}

func TestServiceDeleteBook(t *testing.T) {
	t.Parallel()

	svc, db, media := newTestService(t)
	ctx := context.Background()

	writer := insertUser(ctx, t, db, "writer", models.RoleWriter)
	history := insertGenre(ctx, t, db, "History", true)

	book, err := svc.CreateBook(ctx, CreateBookOptions{
		AuthorID: writer.ID, Title: "Doomed", Description: "x",
		GenreIDs: []int{history.ID},
		Cover:    bytes.NewReader(pngBytes),
	})
	require.NoError(t, err)

	now := time.Now()
	chapter := &models.Chapter{
		CreatedAt: now, UpdatedAt: now,
		BookID: book.ID, Title: "One", Content: "...", Order: 1,
	}
	_, err = db.NewInsert().Model(chapter).Exec(ctx)
	require.NoError(t, err)

	image := &models.ChapterImage{
		ChapterID: chapter.ID, ImagePath: "/media/x", Order: 1,
	}
	_, err = db.NewInsert().Model(image).Exec(ctx)
	require.NoError(t, err)

	require.NoError(t, svc.DeleteBook(ctx, book))

	_, err = svc.RetrieveBook(ctx, RetrieveBookOptions{ID: &book.ID})
	assert.Error(t, err)

	count, err := db.NewSelect().Model((*models.ChapterImage)(nil)).Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)

	_, err = os.Stat(filepath.Join(media.Root(), "books"))
	if err == nil {
		entries, err := os.ReadDir(filepath.Join(media.Root(), "books"))
		require.NoError(t, err)
		assert.Empty(t, entries)
	}
}
