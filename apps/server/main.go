package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gossip-lite/apps/server/internal/config"
	"gossip-lite/apps/server/internal/gateway"
	"gossip-lite/apps/server/internal/ledger"
	"gossip-lite/apps/server/internal/lobby"
	"gossip-lite/apps/server/internal/session"
	"gossip-lite/internal/logging"

	"golang.org/x/sync/errgroup"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.New("error", os.Stderr).Fatal("load config", "err", err)
	}
	logger := logging.New(cfg.LogLevel, os.Stderr)
	srvLog := logger.WithPrefix("Server")

	ledgerService, ledgerMode, err := ledger.NewService(cfg.Ledger)
	if err != nil {
		srvLog.Fatal("init ledger service", "err", err)
	}
	defer ledgerService.Close()

	lby, err := lobby.New(lobby.Options{
		Ledger:            ledgerService,
		Timing:            session.TimingFromConfig(cfg.Delays),
		IdleTTL:           cfg.Session.IdleTTL,
		FinishedCacheSize: cfg.Session.FinishedCacheSize,
		Logger:            logger,
	})
	if err != nil {
		srvLog.Fatal("init lobby", "err", err)
	}
	defer lby.Close()

	gw := gateway.New(lby, gateway.Limits{Rate: cfg.Session.CommandRate, Burst: cfg.Session.CommandBurst}, logger)
	gamesHTTP := ledger.NewHTTPHandler(ledgerService, lby.Final)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", gw.HandleWebSocket)
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.HandleFunc("GET /api/scenarios", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"items": lby.Scenarios()})
	})
	gamesHTTP.RegisterRoutes(mux)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		srvLog.Info("listening", "addr", cfg.Addr, "ledger", ledgerMode)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return lby.RunReaper(ctx, cfg.Session.ReapInterval)
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		srvLog.Error("server stopped", "err", err)
		return
	}
	srvLog.Info("server stopped")
}
