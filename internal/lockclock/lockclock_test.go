package lockclock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLocked(t *testing.T) {
	start := time.Date(2025, 6, 14, 18, 0, 0, 0, time.UTC)
	clock := New(5 * time.Minute)

	tests := []struct {
		name   string
		now    time.Time
		locked bool
	}{
		{"well before window", start.Add(-6 * time.Minute), false},
		{"one second before window", start.Add(-5*time.Minute - time.Second), false},
		{"exactly at window boundary", start.Add(-5 * time.Minute), true},
		{"inside window", start.Add(-4 * time.Minute), true},
		{"at start time", start, true},
		{"after start", start.Add(30 * time.Minute), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.locked, clock.Locked(tt.now, start))
		})
	}
}

func TestNewDefaultsWindow(t *testing.T) {
	assert.Equal(t, DefaultWindow, New(0).Window())
	assert.Equal(t, DefaultWindow, New(-time.Minute).Window())
	assert.Equal(t, 10*time.Minute, New(10*time.Minute).Window())
}

func TestLocksAt(t *testing.T) {
	start := time.Date(2025, 6, 14, 18, 0, 0, 0, time.UTC)
	clock := New(5 * time.Minute)
	assert.Equal(t, start.Add(-5*time.Minute), clock.LocksAt(start))
}
