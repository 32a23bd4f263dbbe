package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"stock_sim/internal/app"
	"stock_sim/internal/engine"
	"stock_sim/internal/feed"
	"stock_sim/internal/infra"
	"stock_sim/internal/service"

	_ "net/http/pprof" // For pprof profiling
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to config file")
	flag.Parse()

	// Pprof server, localhost only
	go func() {
		if err := http.ListenAndServe("localhost:6060", nil); err != nil {
			slog.Error("pprof server failed", slog.Any("error", err))
		}
	}()

	bootstrap := app.NewBootstrap()
	if err := bootstrap.Initialize(*configPath); err != nil {
		slog.Error("bootstrapping failed", slog.Any("error", err))
		os.Exit(1)
	}
	cfg := bootstrap.Config

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	metrics := infra.GlobalMetrics
	svc := service.NewMarketService(
		bootstrap.Registry,
		time.Duration(cfg.Market.TickIntervalMS)*time.Millisecond,
		metrics,
	)
	exec := engine.NewExecutor(bootstrap.Registry, bootstrap.Store, metrics)
	hub := feed.NewHub(svc, exec, cfg.Feed.SessionCash, metrics)

	go svc.Run(ctx)

	mux := http.NewServeMux()
	mux.Handle("/ws", hub)
	server := &http.Server{Addr: cfg.Feed.ListenAddr, Handler: mux}

	go func() {
		slog.Info("feed server listening", slog.String("addr", cfg.Feed.ListenAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("feed server failed", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Warn("feed server shutdown failed", slog.Any("error", err))
	}

	bootstrap.SyncCatalog()
	if err := bootstrap.Store.Close(); err != nil {
		slog.Warn("storage close failed", slog.Any("error", err))
	}

	snap := metrics.Snapshot()
	slog.Info("goodbye",
		slog.Uint64("ticks", snap.TicksApplied),
		slog.Uint64("filled", snap.OrdersFilled),
		slog.Uint64("rejected", snap.OrdersRejected))
}
