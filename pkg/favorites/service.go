package favorites

import (
	"context"
	"time"

	"github.com/ArinaZlatko/nonfiction-server/pkg/database"
	"github.com/ArinaZlatko/nonfiction-server/pkg/errcodes"
	"github.com/ArinaZlatko/nonfiction-server/pkg/models"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

// Service handles readers' favorite books.
type Service struct {
	db *bun.DB
}

// NewService creates a new favorite service.
func NewService(db *bun.DB) *Service {
	return &Service{db: db}
}

// Add marks a book as one of the user's favorites.
func (s *Service) Add(ctx context.Context, userID, bookID int) (*models.Favorite, error) {
	favorite := &models.Favorite{
		UserID:  userID,
		BookID:  bookID,
		AddedAt: time.Now(),
	}

	_, err := s.db.NewInsert().Model(favorite).Returning("*").Exec(ctx)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, errcodes.ValidationError("This book is already in your favorites.")
		}
		return nil, errors.WithStack(err)
	}

	return favorite, nil
}

// Remove drops a book from the user's favorites.
func (s *Service) Remove(ctx context.Context, userID, bookID int) error {
	result, err := s.db.NewDelete().
		Model((*models.Favorite)(nil)).
		Where("user_id = ?", userID).
		Where("book_id = ?", bookID).
		Exec(ctx)
	if err != nil {
		return errors.WithStack(err)
	}

	n, _ := result.RowsAffected()
	if n == 0 {
		return errcodes.NotFound("Favorite")
	}

	return nil
}

// List lists the user's favorites, most recently added first, with the
// book and its author embedded.
func (s *Service) List(ctx context.Context, userID int) ([]*models.Favorite, error) {
	favorites := []*models.Favorite{}

	err := s.db.NewSelect().
		Model(&favorites).
		Relation("Book").
		Relation("Book.Author").
		Where("fv.user_id = ?", userID).
		Order("fv.added_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return favorites, nil
}
