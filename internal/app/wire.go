package app

import (
	"log/slog"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/daRevrse/football-network/internal/auth"
	"github.com/daRevrse/football-network/internal/guard"
	"github.com/daRevrse/football-network/internal/handler"
	"github.com/daRevrse/football-network/internal/notify"
	"github.com/daRevrse/football-network/internal/repository"
	"github.com/daRevrse/football-network/internal/service"
	"github.com/daRevrse/football-network/internal/stats"
)

// RouterDeps holds all dependencies needed by NewRouter.
type RouterDeps struct {
	Pool               *pgxpool.Pool
	JWTMgr             *auth.JWTManager
	Hub                *notify.Hub
	Logger             *slog.Logger
	CORSAllowedOrigins string
	RateLimitPerMin    int
}

// Services bundles the wired services so background workers can share them
// with the router.
type Services struct {
	Lifecycle     *service.LifecycleService
	Validation    *service.ValidationService
	Participation *service.ParticipationService
	Stats         *stats.Recalculator
}

// NewServices wires repositories into services with explicit constructor injection.
func NewServices(pool *pgxpool.Pool, hub *notify.Hub, logger *slog.Logger) *Services {
	matchRepo := repository.NewMatchRepository()
	validationRepo := repository.NewValidationRepository()
	participationRepo := repository.NewParticipationRepository()
	outboxRepo := repository.NewOutboxRepository()

	notifier := notify.NewHubNotifier(hub, logger)

	return &Services{
		Lifecycle:     service.NewLifecycleService(pool, matchRepo, outboxRepo, notifier, logger),
		Validation:    service.NewValidationService(pool, matchRepo, validationRepo, outboxRepo, notifier, logger),
		Participation: service.NewParticipationService(pool, matchRepo, participationRepo, outboxRepo, notifier, logger),
		Stats:         stats.NewRecalculator(pool, matchRepo, stats.NewInMemoryStore(), logger),
	}
}

// NewRouter assembles the chi.Router with all routes and middleware.
func NewRouter(deps RouterDeps, svcs *Services) chi.Router {
	pool := deps.Pool
	jwtMgr := deps.JWTMgr
	logger := deps.Logger

	matchRepo := repository.NewMatchRepository()

	matchHandler := handler.NewMatchHandler(svcs.Lifecycle, matchRepo, pool)
	validationHandler := handler.NewValidationHandler(svcs.Validation)
	participationHandler := handler.NewParticipationHandler(svcs.Participation)
	statsHandler := handler.NewStatsHandler(svcs.Stats)

	r := chi.NewRouter()

	// Global middleware (order matters)
	r.Use(handler.Recovery(logger))
	r.Use(handler.RequestID)
	r.Use(handler.RequestLogger(logger))
	r.Use(handler.CORSWithOrigins(deps.CORSAllowedOrigins))
	rateLimit := deps.RateLimitPerMin
	if rateLimit <= 0 {
		rateLimit = 120
	}
	r.Use(handler.RateLimit(guard.NewRateLimiter(rateLimit, time.Minute)))
	r.Use(handler.JSONContentType)

	// Health (no auth)
	r.Get("/health", handler.HealthHandler(pool))

	// User-authenticated routes
	r.Group(func(r chi.Router) {
		r.Use(auth.AuthenticateUser(jwtMgr))

		r.Route("/matches/{matchID}", func(r chi.Router) {
			r.Get("/", matchHandler.Get)
			r.Post("/check", matchHandler.Check)
			r.Post("/start", matchHandler.Start)
			r.Post("/complete", matchHandler.Complete)
			r.Post("/cancel", matchHandler.Cancel)

			r.Post("/validations", validationHandler.Submit)
			r.Get("/validations", validationHandler.Status)

			r.Post("/participations", participationHandler.Create)
			r.Get("/quorum", participationHandler.Quorum)
		})

		r.Patch("/participations/{participationID}", participationHandler.Respond)

		r.Get("/teams/{teamID}/stats", statsHandler.TeamStats)
	})

	// Admin-authenticated routes
	r.Group(func(r chi.Router) {
		r.Use(auth.AuthenticateAdmin(jwtMgr))
		r.Use(auth.RequireRole(auth.WriteRoles()...))

		r.Post("/admin/sweep", matchHandler.Sweep)
	})

	return r
}
