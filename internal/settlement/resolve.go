package settlement

import (
	"fmt"
	"strings"

	"github.com/JonathanDunkleberger/Kimi/internal/domain"
)

// ResolveLeg grades one leg against its captured line value. A nil final means
// the stat never became available; a final exactly on the line is a push. Both
// grade VOID.
func ResolveLeg(leg domain.Leg, final *float64) domain.LegResult {
	if final == nil {
		return domain.LegVoid
	}
	switch {
	case *final > leg.LineValue:
		return domain.LegOver
	case *final < leg.LineValue:
		return domain.LegUnder
	default:
		return domain.LegVoid
	}
}

// Outcome is the terminal state ResolveEntry computes for an entry. Payout is
// the total credited back to the user: stake times multiplier for a win, the
// stake itself for a cancellation, zero for a loss.
type Outcome struct {
	Status domain.EntryStatus
	Payout int64
	Note   string
}

// ResolveEntry grades a whole entry whose legs all carry results. The rules,
// in order:
//
//  1. Any graded leg against the user's side loses the entry. VOID legs do
//     not rescue a loss.
//  2. All legs VOID cancels the entry and refunds the stake.
//  3. VOID legs are dropped and the entry re-prices at the payout tier for
//     the surviving leg count. No tier for that count means cancel and
//     refund.
//  4. Every surviving leg correct wins at the (possibly re-priced) tier.
func ResolveEntry(e *domain.Entry) Outcome {
	var surviving, correct int
	var voidNotes []string

	for _, leg := range e.Legs {
		if leg.Result == nil {
			// Grading bug; refuse to guess.
			return Outcome{Status: domain.EntryOpen, Note: "leg missing result"}
		}
		switch *leg.Result {
		case domain.LegVoid:
			voidNotes = append(voidNotes, fmt.Sprintf("leg %s void", leg.LineID))
		default:
			surviving++
			if domain.LegResult(leg.Side) == *leg.Result {
				correct++
			}
		}
	}

	if correct < surviving {
		return Outcome{Status: domain.EntryLost, Payout: 0, Note: noteWith("lost", voidNotes)}
	}
	if surviving == 0 {
		return Outcome{Status: domain.EntryCancelled, Payout: e.Stake, Note: noteWith("all legs void, stake refunded", voidNotes)}
	}

	rule := e.PayoutRule
	note := ""
	if surviving < len(e.Legs) {
		repriced, ok := domain.RuleForLegCount(surviving)
		if !ok {
			return Outcome{
				Status: domain.EntryCancelled,
				Payout: e.Stake,
				Note:   noteWith(fmt.Sprintf("no payout tier for %d surviving legs, stake refunded", surviving), voidNotes),
			}
		}
		rule = repriced
		note = noteWith(fmt.Sprintf("re-priced to %s after void legs", rule), voidNotes)
	}

	return Outcome{Status: domain.EntryWon, Payout: e.Stake * rule.Multiplier(), Note: note}
}

func noteWith(base string, voids []string) string {
	if len(voids) == 0 {
		return base
	}
	return base + " (" + strings.Join(voids, "; ") + ")"
}
