package cache

import (
	"context"
	"log/slog"
	"time"

	"github.com/JonathanDunkleberger/Kimi/internal/catalog"
)

// BoardTTL is short because lock state is computed into the cached payload;
// a board served near a lock boundary must not be stale for long.
const BoardTTL = 30 * time.Second

// Board caches assembled board responses by date.
type Board struct {
	store  Store
	logger *slog.Logger
}

// NewBoard creates a Board cache.
func NewBoard(store Store, logger *slog.Logger) *Board {
	return &Board{store: store, logger: logger}
}

func boardKey(date string) string { return "board:" + date }

// Get returns the cached board for a date, or nil on a miss. Cache failures
// degrade to a miss; the caller rebuilds from the database.
func (b *Board) Get(ctx context.Context, date string) []catalog.BoardMatch {
	var board []catalog.BoardMatch
	if err := GetJSON(ctx, b.store, boardKey(date), &board); err != nil {
		return nil
	}
	return board
}

// Put stores the board for a date.
func (b *Board) Put(ctx context.Context, date string, board []catalog.BoardMatch) {
	if err := SetJSON(ctx, b.store, boardKey(date), board, BoardTTL); err != nil {
		b.logger.Warn("board cache write failed", "date", date, "error", err)
	}
}

// Invalidate drops the cached board for a date.
func (b *Board) Invalidate(ctx context.Context, date string) {
	if err := b.store.Delete(ctx, boardKey(date)); err != nil {
		b.logger.Warn("board cache invalidation failed", "date", date, "error", err)
	}
}
