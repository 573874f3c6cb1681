package users

import (
	"context"
	"database/sql"

	"github.com/ArinaZlatko/nonfiction-server/pkg/errcodes"
	"github.com/ArinaZlatko/nonfiction-server/pkg/models"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

// Service handles user lookups outside of the auth flows.
type Service struct {
	db *bun.DB
}

// NewService creates a new user service.
func NewService(db *bun.DB) *Service {
	return &Service{db: db}
}

// RetrieveUserOptions are options for retrieving a single user.
type RetrieveUserOptions struct {
	ID       *int
	Username *string
}

// RetrieveUser retrieves a single active user.
func (s *Service) RetrieveUser(ctx context.Context, opts RetrieveUserOptions) (*models.User, error) {
	user := &models.User{}

	q := s.db.NewSelect().
		Model(user).
		Where("u.is_active = ?", true)
	if opts.ID != nil {
		q = q.Where("u.id = ?", *opts.ID)
	}
	if opts.Username != nil {
		q = q.Where("u.username = ? COLLATE NOCASE", *opts.Username)
	}

	err := q.Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("User")
		}
		return nil, errors.WithStack(err)
	}

	return user, nil
}

// ListWriters lists every active writer, ordered by last name.
func (s *Service) ListWriters(ctx context.Context) ([]*models.User, error) {
	writers := []*models.User{}

	err := s.db.NewSelect().
		Model(&writers).
		Where("u.role = ?", models.RoleWriter).
		Where("u.is_active = ?", true).
		Order("u.last_name ASC", "u.first_name ASC").
		Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return writers, nil
}
