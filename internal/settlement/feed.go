package settlement

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// ErrStatUnavailable signals that the feed has no final value for a stat. The
// engine treats the leg as VOID instead of failing the whole entry.
var ErrStatUnavailable = errors.New("final stat unavailable")

// ResultFeed supplies final stat values for settled matches. Implementations
// return ErrStatUnavailable (possibly wrapped) when the value cannot be
// produced; any other error is treated as transient and aborts settlement so
// it can be retried.
type ResultFeed interface {
	FinalStat(ctx context.Context, matchID, playerID uuid.UUID, stat string) (float64, error)
}
