package domain

import (
	"time"

	"github.com/google/uuid"
)

// Team is a reference entity maintained by external ingestion.
type Team struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Slug      *string   `json:"slug,omitempty"`
	LogoURL   *string   `json:"logo_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Player is a pro player. TeamID is a weak reference: free agents and players
// on unknown rosters carry nil.
type Player struct {
	ID        uuid.UUID  `json:"id"`
	Handle    string     `json:"handle"`
	TeamID    *uuid.UUID `json:"team_id,omitempty"`
	Slug      *string    `json:"slug,omitempty"`
	ExtID     *string    `json:"ext_id,omitempty"`
	Active    bool       `json:"active"`
	AvatarURL *string    `json:"avatar_url,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}
