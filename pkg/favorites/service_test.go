package favorites

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/ArinaZlatko/nonfiction-server/pkg/database"
	"github.com/ArinaZlatko/nonfiction-server/pkg/migrations"
	"github.com/ArinaZlatko/nonfiction-server/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

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

func insertUser(ctx context.Context, t *testing.T, db *bun.DB, username, role string) *models.User {
	t.Helper()

	now := time.Now()
	user := &models.User{
		CreatedAt: now, UpdatedAt: now,
		Username: username, Email: username + "@example.com", PasswordHash: "x",
		FirstName: "First", LastName: username, Role: role, IsActive: true,
	}
	_, err := db.NewInsert().Model(user).Exec(ctx)
	require.NoError(t, err)

	return user
}

func insertBook(ctx context.Context, t *testing.T, db *bun.DB, authorID int, title string) *models.Book {
	t.Helper()

	now := time.Now()
	book := &models.Book{
		CreatedAt: now, UpdatedAt: now,
		Title: title, Description: "x", AuthorID: authorID, IsVisible: true,
	}
	_, err := db.NewInsert().Model(book).Exec(ctx)
	require.NoError(t, err)

	return book
}

func TestServiceAddRemoveList(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	writer := insertUser(ctx, t, db, "writer", models.RoleWriter)
	reader := insertUser(ctx, t, db, "reader", models.RoleReader)
	first := insertBook(ctx, t, db, writer.ID, "First")
	second := insertBook(ctx, t, db, writer.ID, "Second")

	_, err := svc.Add(ctx, reader.ID, first.ID)
	require.NoError(t, err)

	t.Run("duplicates are rejected", func(tt *testing.T) {
		_, err := svc.Add(ctx, reader.ID, first.ID)
		require.Error(tt, err)
		assert.Contains(tt, err.Error(), "already in your favorites")
	})

	t.Run("list embeds the book and author, newest first", func(tt *testing.T) {
		_, err := svc.Add(ctx, reader.ID, second.ID)
		require.NoError(tt, err)

		favorites, err := svc.List(ctx, reader.ID)
		require.NoError(tt, err)
		require.Len(tt, favorites, 2)
		assert.Equal(tt, "Second", favorites[0].Book.Title)
		require.NotNil(tt, favorites[0].Book.Author)
		assert.Equal(tt, "writer", favorites[0].Book.Author.Username)
	})

	t.Run("remove deletes the pair", func(tt *testing.T) {
		require.NoError(tt, svc.Remove(ctx, reader.ID, first.ID))

		favorites, err := svc.List(ctx, reader.ID)
		require.NoError(tt, err)
		assert.Len(tt, favorites, 1)
	})

	t.Run("removing a non-favorite is a 404", func(tt *testing.T) {
		err := svc.Remove(ctx, reader.ID, first.ID)
		require.Error(tt, err)
		assert.Contains(tt, err.Error(), "not found")
	})
}
