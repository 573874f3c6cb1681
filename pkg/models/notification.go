package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Notification struct {
	bun.BaseModel `bun:"table:notifications,alias:n"`

	ID        int       `bun:",pk,autoincrement" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UserID    int       `bun:",notnull" json:"user_id"`
	Message   string    `json:"message"`
	IsRead    bool      `json:"is_read"`
}
