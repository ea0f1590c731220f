package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/JonathanDunkleberger/Kimi/internal/catalog"
	"github.com/JonathanDunkleberger/Kimi/internal/infra"
	"github.com/JonathanDunkleberger/Kimi/internal/ledger"
	"github.com/JonathanDunkleberger/Kimi/internal/provider"
	"github.com/JonathanDunkleberger/Kimi/internal/repository"
	"github.com/JonathanDunkleberger/Kimi/internal/settlement"
)

// Standalone settlement sweeper. The API server runs its own sweep loop, so
// this binary is for environments where settlement is scaled separately or
// for a manual one-shot pass after a feed outage.
func main() {
	once := flag.Bool("once", false, "run a single sweep pass and exit")
	flag.Parse()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if err := run(logger, *once); err != nil {
		logger.Error("settle failed", "error", err)
		os.Exit(1)
	}
}

func run(logger *slog.Logger, once bool) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := infra.LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	pool, err := infra.NewPostgresPool(ctx, cfg)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pool.Close()
	logger.Info("connected to postgres")

	userRepo := repository.NewUserRepository()
	txRepo := repository.NewTransactionRepository()
	outboxRepo := repository.NewOutboxRepository()
	lineRepo := repository.NewLineRepository()
	matchRepo := repository.NewMatchRepository()
	rosterRepo := repository.NewRosterRepository()
	entryRepo := repository.NewEntryRepository()

	ledgerEngine := ledger.NewEngine(userRepo, txRepo, outboxRepo)
	cat := catalog.New(pool, lineRepo, matchRepo, rosterRepo, outboxRepo, logger)
	statsFeed := provider.NewStatsClient(cfg.StatsAPIBaseURL, cfg.StatsAPIToken, pool, rosterRepo, matchRepo, logger)
	engine := settlement.NewEngine(pool, entryRepo, outboxRepo, ledgerEngine, statsFeed, logger)
	sweeper := settlement.NewSweeper(pool, matchRepo, lineRepo, entryRepo, engine, cat, logger)

	if once {
		res, err := sweeper.SweepOnce(ctx)
		if err != nil {
			return fmt.Errorf("sweep: %w", err)
		}
		logger.Info("sweep complete",
			"matches", res.Matches,
			"entries_settled", res.EntriesSettled,
			"entries_skipped", res.EntriesSkipped,
			"entries_failed", res.EntriesFailed,
			"lines_settled", res.LinesSettled)
		return nil
	}

	sweeper.Run(ctx, cfg.SweepInterval)
	logger.Info("sweeper stopped")
	return nil
}
