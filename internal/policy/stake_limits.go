package policy

// StakeLimitPolicy defines per-entry and daily stake limits for a user.
type StakeLimitPolicy struct {
	SingleEntryMax int64 `json:"single_entry_max"` // credits
	DailyStakeMax  int64 `json:"daily_stake_max"`  // credits
}

// DefaultStakeLimits returns the default stake limits (500 per entry, 2000 staked per day).
func DefaultStakeLimits() StakeLimitPolicy {
	return StakeLimitPolicy{
		SingleEntryMax: 500,
		DailyStakeMax:  2_000,
	}
}

// StakeEvaluation holds the result of a stake limits check.
type StakeEvaluation struct {
	Allowed       bool   `json:"allowed"`
	BreachedLimit string `json:"breached_limit,omitempty"`
	LimitValue    int64  `json:"limit_value,omitempty"`
	RequestedAmt  int64  `json:"requested_amount,omitempty"`
}

// EvaluateStakeLimits checks a stake against the user's limits. dailyStaked is
// the running stake total for the current UTC day.
func EvaluateStakeLimits(policy StakeLimitPolicy, stake, dailyStaked int64) StakeEvaluation {
	// Single entry limit
	if policy.SingleEntryMax > 0 && stake > policy.SingleEntryMax {
		return StakeEvaluation{
			Allowed:       false,
			BreachedLimit: "single_entry",
			LimitValue:    policy.SingleEntryMax,
			RequestedAmt:  stake,
		}
	}

	// Daily stake limit
	if policy.DailyStakeMax > 0 && dailyStaked+stake > policy.DailyStakeMax {
		return StakeEvaluation{
			Allowed:       false,
			BreachedLimit: "daily_stake",
			LimitValue:    policy.DailyStakeMax,
			RequestedAmt:  dailyStaked + stake,
		}
	}

	return StakeEvaluation{Allowed: true}
}
