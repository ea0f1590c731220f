//go:build integration

package testutil

import (
	"context"
	"strings"
	"time"
)

// CleanAll truncates all tables in reverse-dependency order.
func (env *TestEnv) CleanAll() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	tables := []string{
		"event_outbox",
		"transactions",
		"entries",
		"lines",
		"matches",
		"players",
		"teams",
		"login_attempts",
		"admin_users",
		"users",
	}

	_, err := env.Pool.Exec(ctx,
		"TRUNCATE "+strings.Join(tables, ", ")+" CASCADE")
	if err != nil {
		env.t.Fatalf("CleanAll: %v", err)
	}
}
