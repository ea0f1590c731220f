package entry

import (
	"context"
	"log/slog"
	"testing"

	"github.com/JonathanDunkleberger/Kimi/internal/domain"
	"github.com/JonathanDunkleberger/Kimi/internal/lockclock"
	"github.com/JonathanDunkleberger/Kimi/internal/policy"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// The request-shape checks run before any database work, so they are testable
// without storage. The storage-dependent checks are covered by the
// integration suite.
func TestCreateRequestValidation(t *testing.T) {
	b := &Builder{
		clock:  lockclock.New(0),
		limits: policy.DefaultStakeLimits(),
		logger: slog.Default(),
	}
	userID := uuid.New()
	lineA := uuid.New()
	lineB := uuid.New()

	tests := []struct {
		name     string
		input    CreateInput
		wantCode string
	}{
		{
			name:     "zero stake",
			input:    CreateInput{Stake: 0, PayoutRule: "2LEG_3X", Legs: []LegInput{{LineID: lineA, Side: "OVER"}, {LineID: lineB, Side: "UNDER"}}},
			wantCode: "INVALID_STAKE",
		},
		{
			name:     "negative stake",
			input:    CreateInput{Stake: -50, PayoutRule: "2LEG_3X", Legs: []LegInput{{LineID: lineA, Side: "OVER"}, {LineID: lineB, Side: "UNDER"}}},
			wantCode: "INVALID_STAKE",
		},
		{
			name:     "stake checked before leg count",
			input:    CreateInput{Stake: 0, PayoutRule: "2LEG_3X", Legs: []LegInput{{LineID: lineA, Side: "OVER"}}},
			wantCode: "INVALID_STAKE",
		},
		{
			name:     "unknown payout rule",
			input:    CreateInput{Stake: 100, PayoutRule: "4LEG_10X", Legs: []LegInput{{LineID: lineA, Side: "OVER"}}},
			wantCode: "VALIDATION_ERROR",
		},
		{
			name:     "too few legs for rule",
			input:    CreateInput{Stake: 100, PayoutRule: "3LEG_5X", Legs: []LegInput{{LineID: lineA, Side: "OVER"}, {LineID: lineB, Side: "UNDER"}}},
			wantCode: "LEG_COUNT_MISMATCH",
		},
		{
			name:     "too many legs for rule",
			input:    CreateInput{Stake: 100, PayoutRule: "2LEG_3X", Legs: []LegInput{{LineID: lineA, Side: "OVER"}, {LineID: lineB, Side: "UNDER"}, {LineID: uuid.New(), Side: "OVER"}}},
			wantCode: "LEG_COUNT_MISMATCH",
		},
		{
			name:     "duplicate line",
			input:    CreateInput{Stake: 100, PayoutRule: "2LEG_3X", Legs: []LegInput{{LineID: lineA, Side: "OVER"}, {LineID: lineA, Side: "UNDER"}}},
			wantCode: "DUPLICATE_LEG",
		},
		{
			name:     "invalid side",
			input:    CreateInput{Stake: 100, PayoutRule: "2LEG_3X", Legs: []LegInput{{LineID: lineA, Side: "OVR"}, {LineID: lineB, Side: "UNDER"}}},
			wantCode: "VALIDATION_ERROR",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := b.Create(context.Background(), userID, tc.input)
			require.Error(t, err)
			appErr, ok := err.(*domain.AppError)
			require.True(t, ok, "expected AppError, got %T", err)
			assert.Equal(t, tc.wantCode, appErr.Code)
		})
	}
}
