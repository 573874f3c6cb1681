package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Book struct {
	bun.BaseModel `bun:"table:books,alias:b"`

	ID            int        `bun:",pk,autoincrement" json:"id"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	Title         string     `bun:",nullzero" json:"title"`
	Description   string     `json:"description"`
	AuthorID      int        `bun:",notnull" json:"author_id"`
	Author        *User      `bun:"rel:belongs-to,join:author_id=id" json:"author,omitempty"`
	IsVisible     bool       `json:"is_visible"`
	HiddenComment string     `json:"-"` // Moderator-only annotation, never reader-facing.
	CoverPath     *string    `json:"cover"`
	Genres        []*Genre   `bun:"m2m:book_genres,join:Book=Genre" json:"genres,omitempty"`
	Chapters      []*Chapter `bun:"rel:has-many,join:id=book_id" json:"chapters,omitempty"`

	// Mean of comment ratings, populated only by rating-sorted listings.
	AvgRating float64 `bun:",scanonly" json:"avg_rating,omitempty"`
}
