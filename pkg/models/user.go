package models

import (
	"strings"
	"time"

	"github.com/uptrace/bun"
)

const (
	RoleReader = "reader"
	RoleWriter = "writer"
)

type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID           int       `bun:",pk,autoincrement" json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
	Username     string    `bun:",nullzero" json:"username"`
	Email        string    `bun:",nullzero" json:"-"`
	PasswordHash string    `json:"-"` // Never expose password hash
	FirstName    string    `bun:",nullzero" json:"first_name"`
	LastName     string    `bun:",nullzero" json:"last_name"`
	Surname      string    `json:"surname"`
	Role         string    `bun:",nullzero" json:"role"`
	IsStaff      bool      `json:"-"`
	IsActive     bool      `json:"-"`
}

// FullName returns the displayable name including the optional patronymic.
func (u *User) FullName() string {
	parts := []string{u.FirstName, u.LastName}
	if u.Surname != "" {
		parts = append(parts, u.Surname)
	}
	return strings.Join(parts, " ")
}

// IsWriter checks if the user may publish books.
func (u *User) IsWriter() bool {
	return u.Role == RoleWriter
}

// CanEditBook is the single authorization check for book mutations: only the
// book's author may change its metadata, chapters, and images.
func (u *User) CanEditBook(b *Book) bool {
	return u.ID == b.AuthorID
}

// CanModerateBook checks if the user may change a book's visibility and
// hidden comment.
func (u *User) CanModerateBook() bool {
	return u.IsStaff
}
