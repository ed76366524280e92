// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"context"
	"io"
	"log/slog"
	"math"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/metonline/hesap-paylas/apiclient"
	"github.com/metonline/hesap-paylas/cliparse"
	"github.com/metonline/hesap-paylas/db"
	"github.com/metonline/hesap-paylas/handlers"
	"github.com/metonline/hesap-paylas/middleware"
	"github.com/metonline/hesap-paylas/resolver"
	"github.com/metonline/hesap-paylas/router"
	"github.com/metonline/hesap-paylas/store"
	"github.com/metonline/hesap-paylas/validation"
)

const (
	pruneInterval   = 10 * time.Minute
	maxIdleSession  = time.Hour
	shutdownTimeout = 10 * time.Second
)

func main() {
	if err := cliparse.LoadEnvFile(".env"); err != nil {
		slog.Error("Error loading .env", "error", err)
		os.Exit(1)
	}

	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	kv, closer, err := openStore(cfg, logger)
	if err != nil {
		slog.Error("store setup failed", "store", cfg.StoreType, "error", err)
		os.Exit(1)
	}
	defer closer.Close()
	slog.Info("Store ready", "store", cfg.StoreType)

	burst := int(math.Max(1, math.Ceil(cfg.BackendRPS)))
	backend := apiclient.New(cfg.BackendURL, logger.With("component", "backend"),
		apiclient.WithRate(cfg.BackendRPS, burst))

	joins := handlers.NewJoinRegistry(backend, kv, logger.With("component", "joinflow"))
	deps := &handlers.Deps{
		Backend:  backend,
		Store:    kv,
		Resolver: resolver.New(cfg.QRScheme),
		Joins:    joins,
		Validate: validation.New(),
		Config:   cfg,
	}

	// Create router
	sessions := middleware.NewSessions(cfg.SessionKey, cfg.SecureCookies())
	h := router.NewRouter(deps, sessions)

	// Create server
	server := http.Server{
		Handler:           h,
		Addr:              ":" + strconv.Itoa(cfg.Port),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		ticker := time.NewTicker(pruneInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if n := joins.Prune(maxIdleSession); n > 0 {
					slog.Debug("pruned idle join sessions", "count", n)
				}
			}
		}
	}()

	go func() {
		// Wait for Ctrl-C signal
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("Shutdown failed", "error", err)
		}
	}()

	// Start server
	slog.Info("Listening", "port", cfg.Port, "backend", cfg.BackendURL)
	err = server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		slog.Error("Server closed", "error", err)
	} else {
		slog.Info("Server closed", "error", err)
	}

	// Let background joins finish before the store closes.
	joins.Wait()
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// openStore opens the configured client store and returns what must be
// closed on shutdown.
func openStore(cfg cliparse.Config, logger *slog.Logger) (store.KV, io.Closer, error) {
	switch cfg.StoreType {
	case cliparse.StoreMemory:
		return store.NewMemory(), nopCloser{}, nil

	case cliparse.StoreBadger:
		b, err := store.NewBadger(cfg.DatabaseURL, logger)
		if err != nil {
			return nil, nil, err
		}
		return b, b, nil

	default:
		conn, err := db.Open(cfg.StoreType, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		if err := db.CreateSchema(conn); err != nil {
			conn.Close()
			return nil, nil, err
		}
		return store.NewSQL(conn, cfg.StoreType), conn, nil
	}
}
