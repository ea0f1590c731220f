// Package app assembles the repositories, engines, services and HTTP routes
// into a runnable router.
package app

import (
	"log/slog"
	"time"

	"github.com/JonathanDunkleberger/Kimi/internal/auth"
	"github.com/JonathanDunkleberger/Kimi/internal/cache"
	"github.com/JonathanDunkleberger/Kimi/internal/catalog"
	"github.com/JonathanDunkleberger/Kimi/internal/entry"
	"github.com/JonathanDunkleberger/Kimi/internal/guard"
	"github.com/JonathanDunkleberger/Kimi/internal/handler"
	adminhandler "github.com/JonathanDunkleberger/Kimi/internal/handler/admin"
	"github.com/JonathanDunkleberger/Kimi/internal/infra"
	"github.com/JonathanDunkleberger/Kimi/internal/ledger"
	"github.com/JonathanDunkleberger/Kimi/internal/lockclock"
	"github.com/JonathanDunkleberger/Kimi/internal/policy"
	"github.com/JonathanDunkleberger/Kimi/internal/provider"
	"github.com/JonathanDunkleberger/Kimi/internal/publisher"
	"github.com/JonathanDunkleberger/Kimi/internal/repository"
	"github.com/JonathanDunkleberger/Kimi/internal/service"
	"github.com/JonathanDunkleberger/Kimi/internal/settlement"
	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Deps holds everything NewRouter needs beyond the config.
type Deps struct {
	Pool       *pgxpool.Pool
	Config     *infra.Config
	JWTMgr     *auth.JWTManager
	Logger     *slog.Logger
	CacheStore cache.Store
}

// App is the assembled application: the router plus the long-running workers
// the binaries start themselves.
type App struct {
	Router  chi.Router
	Sweeper *settlement.Sweeper
}

// New wires the full application.
func New(deps Deps) *App {
	pool := deps.Pool
	cfg := deps.Config
	jwtMgr := deps.JWTMgr
	logger := deps.Logger

	// Repositories
	userRepo := repository.NewUserRepository()
	txRepo := repository.NewTransactionRepository()
	outboxRepo := repository.NewOutboxRepository()
	lineRepo := repository.NewLineRepository()
	matchRepo := repository.NewMatchRepository()
	rosterRepo := repository.NewRosterRepository()
	entryRepo := repository.NewEntryRepository()

	// Engines
	ledgerEngine := ledger.NewEngine(userRepo, txRepo, outboxRepo)
	clock := lockclock.New(cfg.LockWindow)
	cat := catalog.New(pool, lineRepo, matchRepo, rosterRepo, outboxRepo, logger)

	// External providers
	statsFeed := provider.NewStatsClient(cfg.StatsAPIBaseURL, cfg.StatsAPIToken, pool, rosterRepo, matchRepo, logger)
	modelClient := provider.NewModelClient(cfg.ModelAPIBaseURL)

	// Core services
	builder := entry.NewBuilder(pool, entryRepo, lineRepo, matchRepo, txRepo, outboxRepo,
		ledgerEngine, clock, policy.DefaultStakeLimits(), logger)
	settleEngine := settlement.NewEngine(pool, entryRepo, outboxRepo, ledgerEngine, statsFeed, logger)
	sweeper := settlement.NewSweeper(pool, matchRepo, lineRepo, entryRepo, settleEngine, cat, logger)
	pub := publisher.New(pool, matchRepo, rosterRepo, lineRepo, cat, modelClient, cfg.DefaultShade, logger)
	authSvc := service.NewAuthService(pool, userRepo, txRepo, ledgerEngine, jwtMgr, cfg.InitialCredits)

	// Guards
	entryLimiter := guard.NewRateLimiter(10, time.Minute)
	idemGuard := guard.NewIdempotencyGuard()

	// Read-side cache
	boards := cache.NewBoard(deps.CacheStore, logger)

	// Handlers
	authHandler := handler.NewAuthHandler(authSvc)
	userHandler := handler.NewUserHandler(authSvc)
	boardHandler := handler.NewBoardHandler(cat, boards, clock)
	entryHandler := handler.NewEntryHandler(builder, entryLimiter, idemGuard)

	// Admin handlers
	linesAdmin := adminhandler.NewLinesHandler(cat)
	rosterAdmin := adminhandler.NewRosterHandler(pool, matchRepo, rosterRepo)
	opsAdmin := adminhandler.NewOpsHandler(pub, sweeper, settleEngine)

	// Router
	r := chi.NewRouter()

	// Global middleware (order matters)
	r.Use(handler.Recovery(logger))
	r.Use(handler.RequestID)
	r.Use(handler.RequestLogger(logger))
	r.Use(handler.CORS)
	r.Use(handler.JSONContentType)

	// Health (no auth)
	r.Get("/health", handler.HealthHandler(pool))

	// Auth routes (no auth)
	r.Route("/auth", func(r chi.Router) {
		r.Post("/signup", authHandler.Signup)
		r.Post("/login", authHandler.Login)
		r.Post("/admin/login", authHandler.AdminLogin)
	})

	// Public board
	r.Get("/board", boardHandler.Board)
	r.Get("/lines/{lineID}", boardHandler.Line)

	// User-authenticated routes
	r.Group(func(r chi.Router) {
		r.Use(auth.AuthenticateUser(jwtMgr))

		r.Get("/users/me", userHandler.Me)
		r.Get("/users/me/transactions", userHandler.Transactions)

		r.Route("/entries", func(r chi.Router) {
			r.Post("/", entryHandler.Create)
			r.Get("/", entryHandler.List)
			r.Get("/{entryID}", entryHandler.Get)
		})
	})

	// Admin-authenticated routes
	r.Route("/admin", func(r chi.Router) {
		r.Use(auth.AuthenticateAdmin(jwtMgr))

		r.Route("/lines", func(r chi.Router) {
			r.Post("/", linesAdmin.Publish)
			r.Post("/{lineID}/freeze", linesAdmin.Freeze)
			r.Post("/{lineID}/pull", linesAdmin.Pull)
			r.Post("/{lineID}/settle", linesAdmin.Settle)
		})

		r.Route("/matches", func(r chi.Router) {
			r.Post("/", rosterAdmin.CreateMatch)
			r.Patch("/{matchID}/status", rosterAdmin.UpdateMatchStatus)
		})
		r.Post("/teams", rosterAdmin.CreateTeam)
		r.Post("/players", rosterAdmin.CreatePlayer)

		r.Route("/run", func(r chi.Router) {
			r.Use(auth.RequireRole("admin"))
			r.Post("/publish-lines", opsAdmin.PublishLines)
			r.Post("/settle", opsAdmin.Sweep)
		})
		r.Post("/entries/{entryID}/settle", opsAdmin.SettleEntry)
	})

	return &App{Router: r, Sweeper: sweeper}
}
