package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mediawatch-io/collector/app/adapter"
	"github.com/mediawatch-io/collector/app/api"
	"github.com/mediawatch-io/collector/app/backoff"
	"github.com/mediawatch-io/collector/app/catalog"
	"github.com/mediawatch-io/collector/app/cfg"
	"github.com/mediawatch-io/collector/app/collector"
	"github.com/mediawatch-io/collector/app/database"
	"github.com/mediawatch-io/collector/app/quality"
	"github.com/mediawatch-io/collector/app/ratelimit"
	"github.com/mediawatch-io/collector/app/secrets"
	"github.com/mediawatch-io/collector/app/tasks"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if appCfg == nil {
		// Help was shown, exit gracefully
		return
	}

	logLevel := slog.LevelInfo
	if appCfg.Debug {
		logLevel = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel})))

	slog.Info("Starting collector", "version", appCfg.Version)

	// Database connection and schema
	db, err := database.NewConnection(appCfg.DBPath)
	if err != nil {
		log.Fatal("Failed to open database: ", err)
	}
	defer db.Close()

	version, dirty, err := database.RunMigrations(db)
	if err != nil {
		log.Fatal("Failed to run migrations: ", err)
	}
	slog.Info("Database ready", "path", appCfg.DBPath, "migration_version", version, "dirty", dirty)

	dataRepo := database.NewDataRepository(db)
	jobRepo := database.NewJobRepository(db)

	// Source catalog
	sources := catalog.NewCache(appCfg.SourcesDir)
	if err := sources.Run(); err != nil {
		log.Fatal("Failed to load source catalog: ", err)
	}
	slog.Info("Source catalog loaded", "sources", sources.GetSourceCount(), "enabled", len(sources.GetEnabledSources()))

	// Adapter machinery
	httpClient := &http.Client{Timeout: time.Duration(appCfg.RequestTimeout) * time.Second}

	adapterCtx := &adapter.Context{
		HTTPClient: httpClient,
		Limiter:    ratelimit.NewLimiter(appCfg.RateLimitCapacity(), appCfg.RateLimitRefillPerSecond()),
		Backoff:    backoff.NewPolicy(time.Second, 30*time.Second, 3),
		Secrets:    secrets.NewResolver(),
		UserAgent:  appCfg.UserAgent,
	}

	registry := adapter.NewRegistry()
	checker := quality.NewChecker(appCfg.AllowedDomains, httpClient, appCfg.UserAgent)

	service := collector.NewService(sources, registry, dataRepo, jobRepo,
		adapterCtx, checker, appCfg.ExpectedKeywords, appCfg.MinContentLength)

	// Background scheduler
	scheduler := tasks.NewScheduler(service)
	service.SetEnqueuer(scheduler)
	scheduler.Start()
	defer scheduler.Stop()
	slog.Info("Scheduler started", "workers", appCfg.WorkerCount, "interval_seconds", appCfg.CollectionInterval)

	// HTTP server
	handler := api.NewHandler(sources, dataRepo, jobRepo, service)
	server := api.NewServer(handler, appCfg.APIAccessKey)

	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      server,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("HTTP server listening", "port", appCfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	// Wait for interrupt signal or server error
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	slog.Info("Shutting down gracefully")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	// Scheduler is stopped via defer
	slog.Info("Shutdown complete")
}
