package domain

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Validator Tests ---

func TestValidateUsername(t *testing.T) {
	tests := []struct {
		name     string
		username string
		wantErr  bool
	}{
		{"valid simple", "tenz", false},
		{"valid with underscore", "sick_aim_99", false},
		{"valid max length", "abcdefghijklmnopqrstuvwx", false},
		{"empty", "", true},
		{"too short", "ab", true},
		{"too long", "abcdefghijklmnopqrstuvwxy", true},
		{"spaces", "bad name", true},
		{"punctuation", "name!", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUsername(tt.username)
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestValidateStatKey(t *testing.T) {
	tests := []struct {
		name    string
		stat    string
		wantErr bool
	}{
		{"full match", "kills_match", false},
		{"single map", "kills_m1", false},
		{"two maps", "kills_m1m2", false},
		{"three maps", "kills_m1m2m3", false},
		{"other base stat", "first_bloods_m1m2", false},
		{"no scope", "kills", true},
		{"empty", "", true},
		{"bad scope", "kills_mX", true},
		{"uppercase", "Kills_match", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStatKey(tt.stat)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "invalid stat key")
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestValidateSide(t *testing.T) {
	require.NoError(t, ValidateSide(SideOver))
	require.NoError(t, ValidateSide(SideUnder))
	require.Error(t, ValidateSide(Side("EXACT")))
	require.Error(t, ValidateSide(Side("")))
}

// --- Payout Rule Tests ---

func TestPayoutRule(t *testing.T) {
	t.Run("leg counts", func(t *testing.T) {
		assert.Equal(t, 2, Payout2Leg3x.LegCount())
		assert.Equal(t, 3, Payout3Leg5x.LegCount())
	})

	t.Run("multipliers", func(t *testing.T) {
		assert.Equal(t, int64(3), Payout2Leg3x.Multiplier())
		assert.Equal(t, int64(5), Payout3Leg5x.Multiplier())
	})

	t.Run("parse valid", func(t *testing.T) {
		rule, err := ParsePayoutRule("2LEG_3X")
		require.NoError(t, err)
		assert.Equal(t, Payout2Leg3x, rule)
	})

	t.Run("parse unknown", func(t *testing.T) {
		_, err := ParsePayoutRule("4LEG_10X")
		require.Error(t, err)
		var appErr *AppError
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
	})

	t.Run("tier for leg count", func(t *testing.T) {
		rule, ok := RuleForLegCount(2)
		require.True(t, ok)
		assert.Equal(t, Payout2Leg3x, rule)

		rule, ok = RuleForLegCount(3)
		require.True(t, ok)
		assert.Equal(t, Payout3Leg5x, rule)

		_, ok = RuleForLegCount(1)
		assert.False(t, ok)
		_, ok = RuleForLegCount(0)
		assert.False(t, ok)
	})
}

// --- Line Transition Tests ---

func TestLineCanTransitionTo(t *testing.T) {
	line := func(s LineStatus) *Line { return &Line{Status: s} }

	t.Run("open can freeze pull settle", func(t *testing.T) {
		assert.True(t, line(LineOpen).CanTransitionTo(LineFrozen))
		assert.True(t, line(LineOpen).CanTransitionTo(LinePulled))
		assert.True(t, line(LineOpen).CanTransitionTo(LineSettled))
	})

	t.Run("frozen can reopen", func(t *testing.T) {
		assert.True(t, line(LineFrozen).CanTransitionTo(LineOpen))
	})

	t.Run("pulled cannot reopen", func(t *testing.T) {
		assert.False(t, line(LinePulled).CanTransitionTo(LineOpen))
	})

	t.Run("settled is terminal", func(t *testing.T) {
		assert.False(t, line(LineSettled).CanTransitionTo(LineOpen))
		assert.False(t, line(LineSettled).CanTransitionTo(LineFrozen))
		assert.False(t, line(LineSettled).CanTransitionTo(LinePulled))
		assert.False(t, line(LineSettled).CanTransitionTo(LineSettled))
	})
}

// --- Entry Tests ---

func TestEntryMatchIDs(t *testing.T) {
	m1 := uuid.New()
	m2 := uuid.New()
	e := &Entry{Legs: []Leg{
		{MatchID: m1},
		{MatchID: m2},
		{MatchID: m1},
	}}
	ids := e.MatchIDs()
	require.Len(t, ids, 2)
	assert.Equal(t, m1, ids[0])
	assert.Equal(t, m2, ids[1])
}

func TestEntryStatusTerminal(t *testing.T) {
	assert.False(t, EntryOpen.Terminal())
	assert.True(t, EntryWon.Terminal())
	assert.True(t, EntryLost.Terminal())
	assert.True(t, EntryCancelled.Terminal())
}

// --- AppError Tests ---

func TestAppError(t *testing.T) {
	t.Run("error string without cause", func(t *testing.T) {
		err := ErrInsufficientFunds()
		assert.Equal(t, "INSUFFICIENT_FUNDS: insufficient credits", err.Error())
		assert.Equal(t, 400, err.Status)
	})

	t.Run("error string with cause", func(t *testing.T) {
		cause := errors.New("connection refused")
		err := ErrInternal("query users", cause)
		assert.Contains(t, err.Error(), "INTERNAL_ERROR")
		assert.Contains(t, err.Error(), "connection refused")
		assert.Equal(t, cause, errors.Unwrap(err))
	})

	t.Run("already settled is benign", func(t *testing.T) {
		err := ErrAlreadySettled("entry", uuid.New().String())
		assert.Equal(t, 200, err.Status)
		assert.True(t, IsAlreadySettled(err))
		assert.False(t, IsAlreadySettled(ErrInvalidStake()))
		assert.False(t, IsAlreadySettled(errors.New("plain")))
	})

	t.Run("entry validation codes", func(t *testing.T) {
		assert.Equal(t, "INVALID_STAKE", ErrInvalidStake().Code)
		assert.Equal(t, "LEG_COUNT_MISMATCH", ErrLegCountMismatch(Payout2Leg3x, 3).Code)
		assert.Contains(t, ErrLegCountMismatch(Payout2Leg3x, 3).Message, "exactly 2 legs")
		assert.Equal(t, "DUPLICATE_LEG", ErrDuplicateLeg("l1").Code)
		assert.Equal(t, "LINE_UNAVAILABLE", ErrLineUnavailable("l1").Code)
		assert.Equal(t, "ENTRY_LOCKED", ErrEntryLocked("m1").Code)
	})
}

// --- Event Tests ---

func TestNewEntrySettledEvent(t *testing.T) {
	now := time.Now()
	note := "all legs resolved"
	e := &Entry{
		ID:             uuid.New(),
		UserID:         uuid.New(),
		Status:         EntryWon,
		SettledAt:      &now,
		SettlementNote: &note,
	}
	evt := NewEntrySettledEvent(e, 300)
	assert.Equal(t, AggregateEntry, evt.AggregateType)
	assert.Equal(t, EventEntrySettled, evt.EventType)
	assert.Equal(t, e.ID.String(), evt.AggregateID)
	assert.Equal(t, e.UserID.String(), evt.PartitionKey)
	assert.NotEqual(t, uuid.Nil, evt.EventID)
}
