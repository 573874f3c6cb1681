package notifications

import (
	"context"
	"database/sql"
	"time"

	"github.com/ArinaZlatko/nonfiction-server/pkg/errcodes"
	"github.com/ArinaZlatko/nonfiction-server/pkg/models"
	"github.com/pkg/errors"
	"github.com/uptrace/bun"
)

// Service handles per-user notifications.
type Service struct {
	db *bun.DB
}

// NewService creates a new notification service.
func NewService(db *bun.DB) *Service {
	return &Service{db: db}
}

// Notify records a message for the user.
func (s *Service) Notify(ctx context.Context, userID int, message string) (*models.Notification, error) {
	notification := &models.Notification{
		CreatedAt: time.Now(),
		UserID:    userID,
		Message:   message,
	}

	_, err := s.db.NewInsert().Model(notification).Returning("*").Exec(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return notification, nil
}

// List lists the user's notifications, newest first.
func (s *Service) List(ctx context.Context, userID int) ([]*models.Notification, error) {
	notifications := []*models.Notification{}

	err := s.db.NewSelect().
		Model(&notifications).
		Where("n.user_id = ?", userID).
		Order("n.created_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return notifications, nil
}

// MarkRead marks one of the user's notifications as read. A notification
// belonging to someone else reads as not found.
func (s *Service) MarkRead(ctx context.Context, userID, notificationID int) (*models.Notification, error) {
	notification := &models.Notification{}

	err := s.db.NewSelect().
		Model(notification).
		Where("n.id = ?", notificationID).
		Where("n.user_id = ?", userID).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, errcodes.NotFound("Notification")
		}
		return nil, errors.WithStack(err)
	}

	notification.IsRead = true
	_, err = s.db.NewUpdate().
		Model(notification).
		Column("is_read").
		WherePK().
		Exec(ctx)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	return notification, nil
}
