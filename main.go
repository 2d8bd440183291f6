// Package main is the entry point for the split ledger HTTP service.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gitlab.com/minthway/splitledger/internal/config"
	"gitlab.com/minthway/splitledger/internal/database"
	"gitlab.com/minthway/splitledger/internal/logger"
	"gitlab.com/minthway/splitledger/internal/notify"
	"gitlab.com/minthway/splitledger/internal/repository"
	"gitlab.com/minthway/splitledger/internal/server"
	"gitlab.com/minthway/splitledger/internal/settlement"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "version" {
		fmt.Printf("splitledger %s (commit: %s, built: %s)\n", version, commit, date)
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to load config")
	}

	logger.SetLevel(cfg.LogLevel)

	pool, err := database.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer pool.Close()

	if err := database.RunMigrations(ctx, pool); err != nil {
		logger.Log.Fatal().Err(err).Msg("Failed to run migrations")
	}

	logger.Log.Info().Msg("Database initialized successfully")

	memberRepo := repository.NewMemberRepository(pool)
	expenseRepo := repository.NewExpenseRepository(pool)
	budgetRepo := repository.NewBudgetRepository(pool)
	groupRepo := repository.NewGroupRepository(pool)
	eventRepo := repository.NewPaymentEventRepository(pool)

	engine := settlement.New(groupRepo, eventRepo, memberRepo, notify.NewLogSink(logger.Log), cfg.DueDays)
	srv := server.New(engine, memberRepo, expenseRepo, budgetRepo, groupRepo)

	httpServer := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           srv,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan
		logger.Log.Info().Msg("Shutting down...")

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Log.Error().Err(err).Msg("Graceful shutdown failed")
		}
		cancel()
	}()

	logger.Log.Info().Str("addr", cfg.ListenAddr).Msg("Starting HTTP server")
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Log.Fatal().Err(err).Msg("HTTP server failed")
	}
}
