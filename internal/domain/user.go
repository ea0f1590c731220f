package domain

import (
	"time"

	"github.com/google/uuid"
)

// User represents a users row. Credits are whole integer credits, never
// negative; they change only through ledger commands.
type User struct {
	ID           uuid.UUID `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Credits      int64     `json:"credits"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
