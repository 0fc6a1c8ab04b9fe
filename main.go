// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/danielhkuo/voucher-manager/brands"
	"github.com/danielhkuo/voucher-manager/cliparse"
	"github.com/danielhkuo/voucher-manager/db"
	"github.com/danielhkuo/voucher-manager/metrics"
	"github.com/danielhkuo/voucher-manager/middleware"
	"github.com/danielhkuo/voucher-manager/models"
	"github.com/danielhkuo/voucher-manager/ratelimit"
	"github.com/danielhkuo/voucher-manager/router"
	"github.com/danielhkuo/voucher-manager/storage"
	"github.com/danielhkuo/voucher-manager/store"
)

// Login attempts allowed per client IP
const (
	loginRPS   = 0.2
	loginBurst = 5
)

const (
	cleanupInterval = 10 * time.Minute
	shutdownTimeout = 10 * time.Second
)

func setupLogger(cfg cliparse.Config) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler = slog.NewTextHandler(os.Stderr, opts)
	if strings.EqualFold(cfg.LogFormat, "json") {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	}
	slog.SetDefault(slog.New(handler))
}

func main() {
	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}
	setupLogger(cfg)

	if err := run(cfg); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg cliparse.Config) error {
	conn, err := db.Open(cfg.DatabaseType, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer conn.Close()

	// Create schema (tables)
	if err := db.CreateSchema(conn); err != nil {
		return err
	}
	slog.Info("Database schema ready", "type", cfg.DatabaseType)

	catalog := brands.NewCatalog([]models.Brand{})
	if cfg.BrandsFile != "" {
		catalog, err = brands.Load(cfg.BrandsFile)
		if err != nil {
			return err
		}
		slog.Info("brand catalog loaded", "file", cfg.BrandsFile, "brands", catalog.Len())
	}

	images, err := storage.NewImageStore(cfg.ImageDir, cfg.PublicBaseURL, cfg.MaxImageBytes)
	if err != nil {
		return err
	}

	st := store.New(conn, cfg.DatabaseType)
	cooldown := ratelimit.NewCooldown(cfg.TransitionCooldown)
	login := ratelimit.NewLimiter(loginRPS, loginBurst)

	mux := router.NewRouter(router.Deps{
		Store:    st,
		Config:   cfg,
		Catalog:  catalog,
		Images:   images,
		Metrics:  metrics.New(),
		Cooldown: cooldown,
		Login:    login,
	})

	// Create server
	server := &http.Server{
		Handler:           middleware.CORS(mux),
		Addr:              ":" + strconv.Itoa(cfg.Port),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		slog.Info("Listening", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		slog.Info("shutting down")
		return server.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		ticker := time.NewTicker(cleanupInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case now := <-ticker.C:
				cleanup(ctx, st, now, cooldown, login)
			}
		}
	})

	return g.Wait()
}

// cleanup drops idle limiter entries and expired sessions
func cleanup(ctx context.Context, st *store.Store, now time.Time, limiters ...*ratelimit.Limiter) {
	dropped := 0
	for _, l := range limiters {
		dropped += l.Cleanup(cleanupInterval)
	}

	sessions, err := st.DeleteExpiredSessions(ctx, now)
	if err != nil {
		slog.Warn("failed to prune sessions", "error", err)
		return
	}
	slog.Debug("cleanup done", "limiter_entries", dropped, "sessions", sessions)
}
