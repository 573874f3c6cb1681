package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Comment struct {
	bun.BaseModel `bun:"table:comments,alias:cm"`

	ID        int       `bun:",pk,autoincrement" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	UserID    int       `bun:",notnull" json:"user_id"`
	User      *User     `bun:"rel:belongs-to,join:user_id=id" json:"user,omitempty"`
	BookID    int       `bun:",notnull" json:"book_id"`
	Book      *Book     `bun:"rel:belongs-to,join:book_id=id" json:"-"`
	Content   string    `json:"content"`
	Rating    int       `bun:",notnull" json:"rating"` // 1-5 inclusive
}
