// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"

	"github.com/olegiv/daylog-go/internal/cache"
	"github.com/olegiv/daylog-go/internal/config"
	"github.com/olegiv/daylog-go/internal/handler/api"
	"github.com/olegiv/daylog-go/internal/location"
	"github.com/olegiv/daylog-go/internal/middleware"
	"github.com/olegiv/daylog-go/internal/scheduler"
	"github.com/olegiv/daylog-go/internal/service"
	"github.com/olegiv/daylog-go/internal/store"
	"github.com/olegiv/daylog-go/internal/version"
	"github.com/olegiv/daylog-go/internal/weather"
)

// Version information - injected at build time via ldflags
var (
	appVersion   = "dev"
	appGitCommit = "unknown"
	appBuildTime = "unknown"
)

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		_, _ = fmt.Printf("daylog %s (commit: %s, built: %s)\n", appVersion, appGitCommit, appBuildTime)
		os.Exit(0)
	}

	if err := run(); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// Load .env file if present (development)
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	versionInfo := &version.Info{
		Version:   appVersion,
		GitCommit: appGitCommit,
		BuildTime: appBuildTime,
	}

	// Setup logger
	logLevel := slog.LevelInfo
	switch cfg.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	slog.Info("starting daylog", "version", versionInfo.Version, "env", cfg.Env)

	// Database
	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o750); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}
	slog.Info("initializing database", "path", cfg.DBPath)
	db, err := store.NewDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			slog.Error("error closing database connection", "error", err)
		}
	}()

	slog.Info("running database migrations")
	if err := store.Migrate(db); err != nil {
		return fmt.Errorf("migrating database: %w", err)
	}
	slog.Info("database ready")

	// Weather front cache: Redis when configured, in-memory otherwise
	cacheCfg := cache.DefaultConfig()
	cacheCfg.RedisURL = cfg.RedisURL
	cacheCfg.Prefix = cfg.CachePrefix
	cacheCfg.MaxSize = cfg.CacheMaxSize
	frontCache, err := cache.New(cacheCfg)
	if err != nil {
		slog.Warn("redis cache unavailable, using memory cache", "error", err)
		cacheCfg.RedisURL = ""
		frontCache, _ = cache.New(cacheCfg)
	}
	defer func() { _ = frontCache.Close() }()
	if cfg.UseRedisCache() {
		slog.Info("weather front cache initialized", "backend", "redis")
	} else {
		slog.Info("weather front cache initialized", "backend", "memory")
	}

	// Location resolver chain: static config, GeoClue, GeoIP request fallback
	var geoIP *location.GeoIP
	chain := location.Chain{}
	if coords := cfg.StaticLocation(); coords != nil {
		chain = append(chain, location.Static{Coords: *coords})
		slog.Info("using static location", "lat", coords.Lat, "lon", coords.Lon)
	}
	if cfg.GeoClueEnabled {
		chain = append(chain, location.NewGeoClue("daylog"))
		slog.Info("GeoClue location resolver enabled")
	}
	if cfg.GeoIPEnabled() {
		geoIP, err = location.NewGeoIP(cfg.GeoIPDBPath)
		if err != nil {
			slog.Warn("GeoIP database unavailable", "path", cfg.GeoIPDBPath, "error", err)
		} else {
			chain = append(chain, geoIP)
			defer func() { _ = geoIP.Close() }()
			slog.Info("GeoIP location fallback enabled", "path", cfg.GeoIPDBPath)
		}
	}

	// Services
	queries := store.New(db)
	weatherSvc := weather.NewService(queries, weather.NewClient(cfg.WeatherBaseURL), frontCache, chain, logger)
	eventSvc := service.NewEventService(db, weatherSvc, logger)

	// Background weather cache warm-up
	sched := scheduler.New(weatherSvc, logger)
	if err := sched.Start(cfg.WeatherWarmCron); err != nil {
		return fmt.Errorf("starting scheduler: %w", err)
	}
	defer sched.Stop()

	// Router
	apiHandler := api.NewHandler(db, eventSvc, geoIP, logger)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(chimw.Recoverer)
	r.Use(chimw.Timeout(60 * time.Second))
	r.Use(middleware.SecurityHeaders(middleware.DefaultSecurityHeadersConfig(cfg.IsDevelopment())))

	r.Get("/healthz", apiHandler.Health)
	r.Route("/api", apiHandler.Routes)

	// Create server with appropriate timeouts
	srv := &http.Server{
		Addr:              cfg.ServerAddr(),
		Handler:           r,
		ReadTimeout:       15 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20,
	}

	// Start server in goroutine
	go func() {
		slog.Info("starting server", "addr", cfg.ServerAddr(), "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "error", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}

	slog.Info("server stopped")
	return nil
}
