package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"

	"github.com/comitanigiacomo/sawm-sync-engine/internal/adapters/cache"
	adapterHTTP "github.com/comitanigiacomo/sawm-sync-engine/internal/adapters/handler/http"
	"github.com/comitanigiacomo/sawm-sync-engine/internal/adapters/repository"
	"github.com/comitanigiacomo/sawm-sync-engine/internal/config"
	"github.com/comitanigiacomo/sawm-sync-engine/internal/core/domain"
	"github.com/comitanigiacomo/sawm-sync-engine/internal/core/services"
	"github.com/comitanigiacomo/sawm-sync-engine/internal/core/workers"
	"github.com/comitanigiacomo/sawm-sync-engine/internal/observability"
)

type application struct {
	router  *gin.Engine
	tracker *services.TrackerService
	tokens  *services.TokenService
	db      *sqlx.DB
	redis   *redis.Client
}

// newApplication wires store, cache, worker, services and router. Background
// goroutines live until ctx is cancelled.
func newApplication(ctx context.Context, cfg *config.Config, clock services.Clock) (*application, error) {
	app := &application{}
	metrics := observability.NewMetrics()

	var store domain.TrackerRepository
	if cfg.DB.IsSQL() {
		log.Printf("Connecting to database (%s)...", cfg.DB.Driver)
		db, err := repository.ConnectSQL(cfg.DB.Driver, cfg.DB.DSN())
		if err != nil {
			return nil, err
		}
		app.db = db

		sqlRepo, err := repository.NewSQLTrackerRepository(ctx, db)
		if err != nil {
			db.Close()
			return nil, err
		}
		log.Println("Database connected successfully.")
		store = repository.NewRetryingTrackerRepository(sqlRepo, cfg.StoreRetryAttempts, 100*time.Millisecond, metrics)
	} else {
		log.Println("Using in-memory tracker store, data will not survive a restart.")
		store = repository.NewInMemoryTrackerRepository()
	}

	if cfg.Redis.Enabled() {
		rdb, err := cache.NewRedisClient(cfg.Redis)
		if err != nil {
			log.Printf("[CACHE] Redis unavailable, continuing without cache and rate limiting: %v", err)
		} else {
			app.redis = rdb
			store = repository.NewCachedTrackerRepository(store, rdb, 30*time.Minute, metrics)
		}
	}

	tokens, err := services.NewTokenService(cfg.JWTSecret, cfg.JWTIssuer, 24*time.Hour)
	if err != nil {
		app.close()
		return nil, fmt.Errorf("JWT_SECRET is required: %w", err)
	}
	app.tokens = tokens

	worker := workers.NewStreakWorker(store, cfg.Catalog, clock, metrics)
	worker.Start(ctx)

	app.tracker = services.NewTrackerService(services.ReconcilerDeps{
		Repo:         store,
		Catalog:      cfg.Catalog,
		Clock:        clock,
		Notifier:     worker,
		StoreTimeout: cfg.StoreTimeout,
	}, cfg.SessionIdleTTL)
	app.tracker.StartJanitor(ctx, time.Minute)

	statsService := services.NewStatsService(store, cfg.Catalog, clock)

	app.router = adapterHTTP.NewRouter(adapterHTTP.RouterDependencies{
		TrackerHandler: adapterHTTP.NewTrackerHandler(app.tracker, metrics),
		StatsHandler:   adapterHTTP.NewStatsHandler(statsService),
		Tokens:         tokens,
		DB:             app.db,
		Redis:          app.redis,
		Metrics:        metrics,
		RateLimit:      cfg.RateLimitPerMinute,
		StartTime:      time.Now(),
	})

	return app, nil
}

// shutdown flushes open sessions before the connections go away.
func (a *application) shutdown(ctx context.Context) {
	if a.tracker != nil {
		if failed := a.tracker.FlushAll(ctx); failed > 0 {
			log.Printf("[STORE] %d sessions still had unsynced writes at shutdown", failed)
		}
	}
	a.close()
}

func (a *application) close() {
	if a.redis != nil {
		a.redis.Close()
	}
	if a.db != nil {
		a.db.Close()
	}
}
