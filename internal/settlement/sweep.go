package settlement

import (
	"context"
	"log/slog"
	"time"

	"github.com/JonathanDunkleberger/Kimi/internal/catalog"
	"github.com/JonathanDunkleberger/Kimi/internal/domain"
	"github.com/JonathanDunkleberger/Kimi/internal/repository"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Sweeper walks finished matches and settles everything still open on them.
// Every operation it performs is idempotent, so a sweep can be re-run after a
// crash or alongside another sweep without double-paying.
type Sweeper struct {
	pool    *pgxpool.Pool
	matches repository.MatchRepository
	lines   repository.LineRepository
	entries repository.EntryRepository
	engine  *Engine
	catalog *catalog.Catalog
	logger  *slog.Logger
}

// NewSweeper creates a Sweeper.
func NewSweeper(
	pool *pgxpool.Pool,
	matches repository.MatchRepository,
	lines repository.LineRepository,
	entries repository.EntryRepository,
	engine *Engine,
	cat *catalog.Catalog,
	logger *slog.Logger,
) *Sweeper {
	return &Sweeper{pool: pool, matches: matches, lines: lines, entries: entries, engine: engine, catalog: cat, logger: logger}
}

// SweepResult summarises one sweep pass.
type SweepResult struct {
	Matches        int `json:"matches"`
	EntriesSettled int `json:"entries_settled"`
	EntriesSkipped int `json:"entries_skipped"`
	EntriesFailed  int `json:"entries_failed"`
	LinesSettled   int `json:"lines_settled"`
}

// SweepOnce settles all open entries and lines on FINAL matches. Per-entry
// failures are logged and counted but do not stop the sweep; a later pass
// picks them up.
func (s *Sweeper) SweepOnce(ctx context.Context) (SweepResult, error) {
	var res SweepResult

	finals, err := s.matches.ListByStatus(ctx, s.pool, domain.MatchFinal)
	if err != nil {
		return res, domain.ErrInternal("list final matches", err)
	}
	res.Matches = len(finals)

	for _, m := range finals {
		open, err := s.entries.ListOpenByMatch(ctx, s.pool, m.ID)
		if err != nil {
			return res, domain.ErrInternal("list open entries", err)
		}
		for _, e := range open {
			if !s.ready(ctx, &e) {
				res.EntriesSkipped++
				continue
			}
			if _, err := s.engine.SettleEntry(ctx, e.ID); err != nil {
				if domain.IsAlreadySettled(err) {
					res.EntriesSkipped++
					continue
				}
				res.EntriesFailed++
				s.logger.Error("settle entry failed", "entry_id", e.ID, "match_id", m.ID, "error", err)
				continue
			}
			res.EntriesSettled++
		}

		lines, err := s.lines.ListByMatch(ctx, s.pool, m.ID)
		if err != nil {
			return res, domain.ErrInternal("list lines", err)
		}
		for _, l := range lines {
			if l.Status == domain.LineSettled {
				continue
			}
			if _, err := s.catalog.Settle(ctx, l.ID); err != nil {
				if domain.IsAlreadySettled(err) {
					continue
				}
				s.logger.Error("settle line failed", "line_id", l.ID, "match_id", m.ID, "error", err)
				continue
			}
			res.LinesSettled++
		}
	}

	s.logger.Info("sweep complete",
		"matches", res.Matches, "entries_settled", res.EntriesSettled,
		"entries_skipped", res.EntriesSkipped, "entries_failed", res.EntriesFailed,
		"lines_settled", res.LinesSettled)
	return res, nil
}

// ready reports whether every match the entry touches is FINAL. Multi-match
// entries wait for the last match to finish; settling after only one final
// would grade the other legs as unavailable.
func (s *Sweeper) ready(ctx context.Context, e *domain.Entry) bool {
	for _, matchID := range e.MatchIDs() {
		m, err := s.matches.FindByID(ctx, s.pool, matchID)
		if err != nil || m == nil || m.Status != domain.MatchFinal {
			return false
		}
	}
	return true
}

// Run sweeps on a fixed interval until the context is cancelled.
func (s *Sweeper) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.logger.Info("settlement sweeper started", "interval", interval)
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("settlement sweeper stopped")
			return
		case <-ticker.C:
			if _, err := s.SweepOnce(ctx); err != nil {
				s.logger.Error("sweep failed", "error", err)
			}
		}
	}
}
