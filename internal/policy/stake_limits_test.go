package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEvaluateStakeLimits(t *testing.T) {
	limits := DefaultStakeLimits()

	t.Run("within limits", func(t *testing.T) {
		eval := EvaluateStakeLimits(limits, 100, 0)
		assert.True(t, eval.Allowed)
		assert.Empty(t, eval.BreachedLimit)
	})

	t.Run("single entry breach", func(t *testing.T) {
		eval := EvaluateStakeLimits(limits, 501, 0)
		assert.False(t, eval.Allowed)
		assert.Equal(t, "single_entry", eval.BreachedLimit)
		assert.Equal(t, int64(500), eval.LimitValue)
		assert.Equal(t, int64(501), eval.RequestedAmt)
	})

	t.Run("single entry at exact limit", func(t *testing.T) {
		eval := EvaluateStakeLimits(limits, 500, 0)
		assert.True(t, eval.Allowed)
	})

	t.Run("daily stake breach", func(t *testing.T) {
		eval := EvaluateStakeLimits(limits, 100, 1_950)
		assert.False(t, eval.Allowed)
		assert.Equal(t, "daily_stake", eval.BreachedLimit)
		assert.Equal(t, int64(2_000), eval.LimitValue)
		assert.Equal(t, int64(2_050), eval.RequestedAmt)
	})

	t.Run("daily stake at exact limit", func(t *testing.T) {
		eval := EvaluateStakeLimits(limits, 100, 1_900)
		assert.True(t, eval.Allowed)
	})

	t.Run("zero limits disable checks", func(t *testing.T) {
		eval := EvaluateStakeLimits(StakeLimitPolicy{}, 1_000_000, 1_000_000)
		assert.True(t, eval.Allowed)
	})
}
