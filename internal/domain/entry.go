package domain

import (
	"time"

	"github.com/google/uuid"
)

// Side is the direction a user picks on a line.
type Side string

const (
	SideOver  Side = "OVER"
	SideUnder Side = "UNDER"
)

// LegResult is the settled outcome of one leg. VOID covers both a push (final
// exactly on the line) and an unavailable final stat.
type LegResult string

const (
	LegOver  LegResult = "OVER"
	LegUnder LegResult = "UNDER"
	LegVoid  LegResult = "VOID"
)

// EntryStatus tracks the entry state machine: OPEN → WON | LOST | CANCELLED,
// terminal.
type EntryStatus string

const (
	EntryOpen      EntryStatus = "OPEN"
	EntryWon       EntryStatus = "WON"
	EntryLost      EntryStatus = "LOST"
	EntryCancelled EntryStatus = "CANCELLED"
)

// Terminal reports whether the status is final.
func (s EntryStatus) Terminal() bool { return s != EntryOpen }

// PayoutRule maps a required leg count to a payout multiplier.
type PayoutRule string

const (
	Payout2Leg3x PayoutRule = "2LEG_3X"
	Payout3Leg5x PayoutRule = "3LEG_5X"
)

// ParsePayoutRule validates a payout rule string.
func ParsePayoutRule(s string) (PayoutRule, error) {
	switch PayoutRule(s) {
	case Payout2Leg3x, Payout3Leg5x:
		return PayoutRule(s), nil
	default:
		return "", ErrValidation("unknown payout rule: " + s)
	}
}

// LegCount returns the exact number of legs the rule requires.
func (r PayoutRule) LegCount() int {
	switch r {
	case Payout2Leg3x:
		return 2
	case Payout3Leg5x:
		return 3
	default:
		return 0
	}
}

// Multiplier returns the integer payout multiplier applied to the stake.
func (r PayoutRule) Multiplier() int64 {
	switch r {
	case Payout2Leg3x:
		return 3
	case Payout3Leg5x:
		return 5
	default:
		return 0
	}
}

// RuleForLegCount returns the payout tier for the given leg count, if one
// exists. Settlement uses this to re-price an entry after VOID legs are
// removed from consideration.
func RuleForLegCount(n int) (PayoutRule, bool) {
	switch n {
	case 2:
		return Payout2Leg3x, true
	case 3:
		return Payout3Leg5x, true
	default:
		return "", false
	}
}

// Leg is an immutable snapshot of a line taken at entry creation. Settlement
// compares against the captured LineValue, never the live line, so later
// freezes, pulls, or republishes cannot change what the user wagered on.
type Leg struct {
	LineID    uuid.UUID `json:"line_id"`
	PlayerID  uuid.UUID `json:"player_id"`
	MatchID   uuid.UUID `json:"match_id"`
	Stat      string    `json:"stat"`
	Side      Side      `json:"side"`
	LineValue float64   `json:"line_value"`

	// Set by settlement.
	Result      *LegResult `json:"result,omitempty"`
	PlayerFinal *float64   `json:"player_final,omitempty"`
}

// Entry is a user's multi-leg wager.
type Entry struct {
	ID             uuid.UUID   `json:"id"`
	UserID         uuid.UUID   `json:"user_id"`
	Stake          int64       `json:"stake"`
	PayoutRule     PayoutRule  `json:"payout_rule"`
	Legs           []Leg       `json:"legs"`
	Status         EntryStatus `json:"status"`
	CreatedAt      time.Time   `json:"created_at"`
	SettledAt      *time.Time  `json:"settled_at,omitempty"`
	SettlementNote *string     `json:"settlement_note,omitempty"`
}

// MatchIDs returns the distinct matches the entry's legs reference, in leg
// order. Lock checks run per match, not per leg.
func (e *Entry) MatchIDs() []uuid.UUID {
	seen := make(map[uuid.UUID]bool, len(e.Legs))
	var ids []uuid.UUID
	for _, leg := range e.Legs {
		if !seen[leg.MatchID] {
			seen[leg.MatchID] = true
			ids = append(ids, leg.MatchID)
		}
	}
	return ids
}
