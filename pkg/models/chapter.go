package models

import (
	"time"

	"github.com/uptrace/bun"
)

type Chapter struct {
	bun.BaseModel `bun:"table:chapters,alias:ch"`

	ID        int       `bun:",pk,autoincrement" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	BookID    int       `bun:",notnull" json:"book_id"`
	Book      *Book     `bun:"rel:belongs-to,join:book_id=id" json:"-"`
	Title     string    `bun:",nullzero" json:"title"`
	Content   string    `json:"content,omitempty"`

	// Display sequence within the book; unique per (book_id, order).
	Order int `bun:"\"order\",notnull" json:"order"`

	Images []*ChapterImage `bun:"rel:has-many,join:id=chapter_id" json:"images,omitempty"`
}

type ChapterImage struct {
	bun.BaseModel `bun:"table:chapter_images,alias:ci"`

	ID        int      `bun:",pk,autoincrement" json:"id"`
	ChapterID int      `bun:",notnull" json:"chapter_id"`
	Chapter   *Chapter `bun:"rel:belongs-to,join:chapter_id=id" json:"-"`
	ImagePath string   `bun:",nullzero" json:"image"`
	Caption   string   `json:"caption"`

	// Display sequence within the chapter; unique per (chapter_id, order),
	// not necessarily contiguous.
	Order int `bun:"\"order\",notnull" json:"order"`
}
