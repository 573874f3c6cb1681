package genres

import (
	"context"

	"github.com/ArinaZlatko/nonfiction-server/pkg/models"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

// Service handles genre lookups.
type Service struct {
	db *bun.DB
}

// NewService creates a new genre service.
func NewService(db *bun.DB) *Service {
	return &Service{db: db}
}

// ListActive lists active genres ordered by name.
func (s *Service) ListActive(ctx context.Context) ([]*models.Genre, error) {
	genres := []*models.Genre{}

	err := s.db.NewSelect().
		Model(&genres).
		Where("g.is_active = ?", true).
		Order("g.name ASC").
		Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return genres, nil
}

// ResolveActive returns the active genres among the given ids. Inactive and
// unknown ids are dropped silently; callers decide whether an empty result
// is an error.
func (s *Service) ResolveActive(ctx context.Context, ids []int) ([]*models.Genre, error) {
	if len(ids) == 0 {
		return []*models.Genre{}, nil
	}

	genres := []*models.Genre{}

	err := s.db.NewSelect().
		Model(&genres).
		Where("g.id IN (?)", bun.In(ids)).
		Where("g.is_active = ?", true).
		Order("g.name ASC").
		Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return genres, nil
}
