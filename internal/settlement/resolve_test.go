package settlement

import (
	"testing"

	"github.com/JonathanDunkleberger/Kimi/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func f(v float64) *float64 { return &v }

func TestResolveLeg(t *testing.T) {
	leg := domain.Leg{LineValue: 17.5, Side: domain.SideOver}

	tests := []struct {
		name  string
		final *float64
		want  domain.LegResult
	}{
		{"final above line", f(18), domain.LegOver},
		{"final below line", f(17), domain.LegUnder},
		{"final well above", f(30), domain.LegOver},
		{"unavailable stat", nil, domain.LegVoid},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, ResolveLeg(leg, tc.final))
		})
	}

	t.Run("final exactly on whole line is a push", func(t *testing.T) {
		whole := domain.Leg{LineValue: 17, Side: domain.SideUnder}
		assert.Equal(t, domain.LegVoid, ResolveLeg(whole, f(17)))
	})
}

func graded(side domain.Side, result domain.LegResult) domain.Leg {
	return domain.Leg{LineID: uuid.New(), Side: side, Result: &result}
}

func TestResolveEntry(t *testing.T) {
	t.Run("all legs correct wins at tier", func(t *testing.T) {
		e := &domain.Entry{
			Stake:      100,
			PayoutRule: domain.Payout2Leg3x,
			Legs: []domain.Leg{
				graded(domain.SideOver, domain.LegOver),
				graded(domain.SideUnder, domain.LegUnder),
			},
		}
		out := ResolveEntry(e)
		assert.Equal(t, domain.EntryWon, out.Status)
		assert.Equal(t, int64(300), out.Payout)
	})

	t.Run("three leg win pays five times", func(t *testing.T) {
		e := &domain.Entry{
			Stake:      40,
			PayoutRule: domain.Payout3Leg5x,
			Legs: []domain.Leg{
				graded(domain.SideOver, domain.LegOver),
				graded(domain.SideOver, domain.LegOver),
				graded(domain.SideUnder, domain.LegUnder),
			},
		}
		out := ResolveEntry(e)
		assert.Equal(t, domain.EntryWon, out.Status)
		assert.Equal(t, int64(200), out.Payout)
	})

	t.Run("any wrong leg loses", func(t *testing.T) {
		e := &domain.Entry{
			Stake:      100,
			PayoutRule: domain.Payout2Leg3x,
			Legs: []domain.Leg{
				graded(domain.SideOver, domain.LegOver),
				graded(domain.SideOver, domain.LegUnder),
			},
		}
		out := ResolveEntry(e)
		assert.Equal(t, domain.EntryLost, out.Status)
		assert.Zero(t, out.Payout)
	})

	t.Run("void leg does not rescue a loss", func(t *testing.T) {
		e := &domain.Entry{
			Stake:      100,
			PayoutRule: domain.Payout3Leg5x,
			Legs: []domain.Leg{
				graded(domain.SideOver, domain.LegVoid),
				graded(domain.SideOver, domain.LegUnder),
				graded(domain.SideUnder, domain.LegUnder),
			},
		}
		out := ResolveEntry(e)
		assert.Equal(t, domain.EntryLost, out.Status)
		assert.Zero(t, out.Payout)
	})

	t.Run("all void cancels with full refund", func(t *testing.T) {
		e := &domain.Entry{
			Stake:      100,
			PayoutRule: domain.Payout2Leg3x,
			Legs: []domain.Leg{
				graded(domain.SideOver, domain.LegVoid),
				graded(domain.SideUnder, domain.LegVoid),
			},
		}
		out := ResolveEntry(e)
		assert.Equal(t, domain.EntryCancelled, out.Status)
		assert.Equal(t, int64(100), out.Payout)
	})

	t.Run("one void of three re-prices to two leg tier", func(t *testing.T) {
		e := &domain.Entry{
			Stake:      100,
			PayoutRule: domain.Payout3Leg5x,
			Legs: []domain.Leg{
				graded(domain.SideOver, domain.LegOver),
				graded(domain.SideUnder, domain.LegUnder),
				graded(domain.SideOver, domain.LegVoid),
			},
		}
		out := ResolveEntry(e)
		assert.Equal(t, domain.EntryWon, out.Status)
		assert.Equal(t, int64(300), out.Payout, "pays the 2-leg multiplier, not the original 5x")
		assert.Contains(t, out.Note, "re-priced")
	})

	t.Run("one void of two has no tier and cancels", func(t *testing.T) {
		e := &domain.Entry{
			Stake:      100,
			PayoutRule: domain.Payout2Leg3x,
			Legs: []domain.Leg{
				graded(domain.SideOver, domain.LegOver),
				graded(domain.SideUnder, domain.LegVoid),
			},
		}
		out := ResolveEntry(e)
		assert.Equal(t, domain.EntryCancelled, out.Status)
		assert.Equal(t, int64(100), out.Payout)
	})

	t.Run("ungraded leg refuses to settle", func(t *testing.T) {
		e := &domain.Entry{
			Stake:      100,
			PayoutRule: domain.Payout2Leg3x,
			Legs: []domain.Leg{
				graded(domain.SideOver, domain.LegOver),
				{LineID: uuid.New(), Side: domain.SideUnder},
			},
		}
		out := ResolveEntry(e)
		assert.Equal(t, domain.EntryOpen, out.Status)
	})
}
