package models

import (
	"time"

	"github.com/uptrace/bun"
)

// RevokedToken denylists a refresh token by its jti claim. Rows are only
// needed until the token would have expired anyway.
type RevokedToken struct {
	bun.BaseModel `bun:"table:revoked_tokens,alias:rt"`

	ID        int       `bun:",pk,autoincrement" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	JTI       string    `bun:"jti,nullzero" json:"jti"`
	ExpiresAt time.Time `json:"expires_at"`
}
