package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/comitanigiacomo/sawm-sync-engine/docs"
	"github.com/comitanigiacomo/sawm-sync-engine/internal/config"
	"github.com/comitanigiacomo/sawm-sync-engine/internal/core/services"
)

// @title                       Sawm Sync Engine API
// @version                     1.0
// @description                 Ramadan habit tracker: calendar window, daily ledger, streaks and view reconciliation.
// @BasePath                    /api/v1
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Critical: Invalid configuration: %v", err)
	}

	ctx, cancelBackground := context.WithCancel(context.Background())
	defer cancelBackground()

	app, err := newApplication(ctx, cfg, services.LocalClock{Location: cfg.Location})
	if err != nil {
		log.Fatalf("Critical: Failed to start: %v", err)
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      app.router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Printf("Sawm Sync Engine running on http://localhost:%s (regions: %d, default %s)",
			cfg.Port, len(cfg.Catalog.Regions()), cfg.Catalog.DefaultID())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Critical server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Stop signal received. Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Forced shutdown error: %v", err)
	}

	cancelBackground()
	app.shutdown(shutdownCtx)

	log.Println("Server stopped gracefully.")
}
