package genres

import (
	"context"
	"database/sql"
	"testing"

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

func insertGenre(ctx context.Context, t *testing.T, db *bun.DB, name string, isActive bool) *models.Genre {
	t.Helper()

	genre := &models.Genre{Name: name, IsActive: isActive}
	_, err := db.NewInsert().Model(genre).Exec(ctx)
	require.NoError(t, err)

	return genre
}

func TestServiceListActive(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	insertGenre(ctx, t, db, "Science", true)
	insertGenre(ctx, t, db, "Biography", true)
	insertGenre(ctx, t, db, "Retired", false)

	genres, err := svc.ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, genres, 2)
	assert.Equal(t, "Biography", genres[0].Name)
	assert.Equal(t, "Science", genres[1].Name)
}

func TestServiceResolveActive(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	science := insertGenre(ctx, t, db, "Science", true)
	retired := insertGenre(ctx, t, db, "Retired", false)

	t.Run("drops inactive and unknown ids", func(tt *testing.T) {
		genres, err := svc.ResolveActive(ctx, []int{science.ID, retired.ID, 9999})
		require.NoError(tt, err)
		require.Len(tt, genres, 1)
		assert.Equal(tt, science.ID, genres[0].ID)
	})

	t.Run("empty input resolves to empty output", func(tt *testing.T) {
		genres, err := svc.ResolveActive(ctx, nil)
		require.NoError(tt, err)
		assert.Empty(tt, genres)
	})
}
