package domain

import (
	"time"

	"github.com/google/uuid"
)

// MatchStatus tracks a match's lifecycle. Transitions are driven by ingestion;
// the core only reads status and starts_at.
type MatchStatus string

const (
	MatchScheduled MatchStatus = "SCHEDULED"
	MatchLive      MatchStatus = "LIVE"
	MatchFinal     MatchStatus = "FINAL"
)

// Match is a scheduled contest between two teams. Team references are nullable
// because matches can be published before opponents are confirmed.
type Match struct {
	ID        uuid.UUID   `json:"id"`
	ExtID     *string     `json:"ext_id,omitempty"`
	StartsAt  time.Time   `json:"starts_at"`
	Format    string      `json:"format"` // BO1, BO3, BO5
	EventName string      `json:"event_name"`
	Team1ID   *uuid.UUID  `json:"team1_id,omitempty"`
	Team2ID   *uuid.UUID  `json:"team2_id,omitempty"`
	Status    MatchStatus `json:"status"`
	CreatedAt time.Time   `json:"created_at"`
}
