package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Genre struct {
	bun.BaseModel `bun:"table:genres,alias:g"`

	ID        int       `bun:",pk,autoincrement" json:"id"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
	Name      string    `bun:",nullzero" json:"name"`
	IsActive  bool      `json:"-"`
}

// BookGenre is the join model for the books<->genres m2m relation. It must be
// registered with bun via database.RegisterModels.
type BookGenre struct {
	bun.BaseModel `bun:"table:book_genres,alias:bg"`

	BookID  int    `bun:",pk" json:"book_id"`
	Book    *Book  `bun:"rel:belongs-to,join:book_id=id" json:"-"`
	GenreID int    `bun:",pk" json:"genre_id"`
	Genre   *Genre `bun:"rel:belongs-to,join:genre_id=id" json:"-"`
}
