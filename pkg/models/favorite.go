package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Favorite struct {
	bun.BaseModel `bun:"table:favorites,alias:fv"`

	ID      int       `bun:",pk,autoincrement" json:"id"`
	UserID  int       `bun:",notnull" json:"user_id"`
	BookID  int       `bun:",notnull" json:"book_id"`
	Book    *Book     `bun:"rel:belongs-to,join:book_id=id" json:"book,omitempty"`
	AddedAt time.Time `json:"added_at"`
}
