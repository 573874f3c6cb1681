package users

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

func insertTestUser(ctx context.Context, t *testing.T, db *bun.DB, username, role string, isActive bool) *models.User {
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
		IsActive:     isActive,
	}
	_, err := db.NewInsert().Model(user).Exec(ctx)
	require.NoError(t, err)

	return user
}

func TestServiceRetrieveUser(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	active := insertTestUser(ctx, t, db, "alice", models.RoleReader, true)
	inactive := insertTestUser(ctx, t, db, "bob", models.RoleReader, false)

	got, err := svc.RetrieveUser(ctx, RetrieveUserOptions{ID: &active.ID})
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)

	_, err = svc.RetrieveUser(ctx, RetrieveUserOptions{ID: &inactive.ID})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestServiceListWriters(t *testing.T) {
	t.Parallel()

	db := newTestDB(t)
	svc := NewService(db)
	ctx := context.Background()

	insertTestUser(ctx, t, db, "zoe", models.RoleWriter, true)
	insertTestUser(ctx, t, db, "adam", models.RoleWriter, true)
	insertTestUser(ctx, t, db, "carol", models.RoleReader, true)
	insertTestUser(ctx, t, db, "dave", models.RoleWriter, false)

	writers, err := svc.ListWriters(ctx)
	require.NoError(t, err)
	require.Len(t, writers, 2)
	assert.Equal(t, "adam", writers[0].Username)
	assert.Equal(t, "zoe", writers[1].Username)
}
