/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the lease financial engine server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load configuration (.env + environment)
  2. Configure structured logging
  3. Initialize SQLite store
  4. Create API handler and router
  5. Start the monthly cron scheduler
  6. Start server with graceful shutdown

CONFIGURATION (environment):
  PORT                 HTTP server port (default: 8080)
  DB_PATH              SQLite database path (default: villa.db)
  LOG_LEVEL            trace|debug|info|warn|error (default: info)
  LOG_FORMAT           text|json (default: text)
  REFUND_OVER_DEPOSIT  accept|clamp|reject (default: accept)
  SCHEDULE_CRON        monthly payment generation (default: "0 6 1 * *")

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop the cron scheduler
  2. Stop accepting new connections
  3. Wait for active requests to complete (30s timeout)
  4. Close database connection
  5. Exit

SEE ALSO:
  - api/server.go: Router configuration
  - api/scheduler.go: Monthly job
  - store/sqlite/sqlite.go: Database implementation
*/
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/Lavillacoliving/la-villa-coliving-sub001/api"
	"github.com/Lavillacoliving/la-villa-coliving-sub001/config"
	"github.com/Lavillacoliving/la-villa-coliving-sub001/deposits"
	"github.com/Lavillacoliving/la-villa-coliving-sub001/store/sqlite"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("Invalid configuration: %v", err)
	}

	log := newLogger(cfg)

	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer store.Close()

	handler := api.NewHandler(store, log, deposits.OverRefundPolicy(cfg.RefundPolicy))
	router := api.NewRouter(handler)

	scheduler, err := api.NewScheduler(store, log, cfg.ScheduleCron)
	if err != nil {
		log.Fatalf("Invalid SCHEDULE_CRON: %v", err)
	}
	scheduler.Start()

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.WithFields(logrus.Fields{
			"port": cfg.Port,
			"db":   cfg.DBPath,
		}).Info("server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	scheduler.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}
	log.Info("server stopped")
}

func newLogger(cfg *config.Config) *logrus.Logger {
	log := logrus.New()

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	if cfg.LogFormat == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}
	return log
}
