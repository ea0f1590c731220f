package domain

import (
	"time"

	"github.com/google/uuid"
)

// LineStatus tracks the lifecycle of a published line.
type LineStatus string

const (
	LineOpen    LineStatus = "OPEN"
	LineFrozen  LineStatus = "FROZEN"
	LinePulled  LineStatus = "PULLED"
	LineSettled LineStatus = "SETTLED"
)

// Line is a published, bettable prediction for one (player, match, stat)
// triple. The triple is the natural lookup key but not a uniqueness
// constraint: republishing creates a new row.
type Line struct {
	ID        uuid.UUID  `json:"id"`
	PlayerID  uuid.UUID  `json:"player_id"`
	MatchID   uuid.UUID  `json:"match_id"`
	Stat      string     `json:"stat"` // e.g. kills_match, kills_m1m2
	LineValue float64    `json:"line_value"`
	POver     float64    `json:"p_over"`
	ShadeBps  int        `json:"shade_bps"`
	Status    LineStatus `json:"status"`
	PostedAt  time.Time  `json:"posted_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// Bettable reports whether the line accepts new legs.
func (l *Line) Bettable() bool { return l.Status == LineOpen }

// CanTransitionTo validates a status transition. FROZEN and PULLED are
// reachable any time before SETTLED; SETTLED is terminal and reached from any
// prior state exactly once.
func (l *Line) CanTransitionTo(next LineStatus) bool {
	if l.Status == LineSettled {
		return false
	}
	switch next {
	case LineFrozen, LinePulled, LineSettled:
		return true
	case LineOpen:
		return l.Status == LineFrozen
	default:
		return false
	}
}
