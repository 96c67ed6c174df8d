package main

import (
	"context"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"cashflow/internal/api"
	"cashflow/internal/config"
	"cashflow/internal/game"
	"cashflow/internal/metrics"
	"cashflow/internal/store"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadAPIFromEnv()
	if err != nil {
		slog.Error("load config", "err", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	st, release, err := store.Open(ctx, cfg.Config, logger)
	if err != nil {
		logger.Error("store open failed", "err", err)
		os.Exit(1)
	}
	defer release()

	feed := api.NewFeed(0, game.LogNotifier{Logger: logger})
	gameSvc, err := game.NewService(game.Options{
		Difficulty:        cfg.Difficulty,
		Store:             st,
		Notifier:          feed,
		Logger:            logger,
		EventCount:        cfg.EventCount,
		OpportunityCount:  cfg.OpportunityCount,
		CapitalGainsShare: cfg.CapitalGainsShare,
	})
	if err != nil {
		logger.Error("game init failed", "err", err)
		os.Exit(1)
	}
	detach := metrics.Attach(gameSvc)
	defer detach()
	if gameSvc.Restore() {
		logger.Info("resumed saved game")
	}

	server := api.New(cfg, logger, gameSvc, feed)
	defer server.Close()
	httpServer := &http.Server{
		Addr:              cfg.Addr,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		// Cancels open event streams on shutdown.
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	logger.Info("cashflow api listening", "addr", cfg.Addr, "store", cfg.Store, "difficulty", cfg.Difficulty)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("server failed", "err", err)
		os.Exit(1)
	}
}
