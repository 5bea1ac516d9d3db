package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/knah1d/gomokuAI/internal/config"
	"github.com/knah1d/gomokuAI/internal/engine"
	"github.com/knah1d/gomokuAI/internal/game"
	"github.com/knah1d/gomokuAI/internal/server"
)

func main() {
	cfgPath := flag.String("config", "", "path to config file (default: ./gomoku.yaml if present)")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}

	log, err := config.NewLogger(cfg.Log.Debug)
	if err != nil {
		os.Stderr.WriteString("logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer log.Sync()

	eng := engine.NewEngine(cfg.Weights, cfg.EngineOptions(), log)
	session := game.NewSession(game.NewGame(cfg.GameSettings(), eng, log))
	srv := server.New(session, eng, cfg, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go srv.Hub().Run(ctx.Done())

	httpServer := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: srv.Router(),
	}
	serverErrCh := make(chan error, 1)
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrCh <- err
		}
		close(serverErrCh)
	}()

	sigCtx, stopSignals := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stopSignals()

	log.Infow("listening", "addr", cfg.Server.Addr)
	var runErr error
	select {
	case <-sigCtx.Done():
		log.Infow("shutdown signal received")
	case err, ok := <-serverErrCh:
		if ok {
			runErr = err
			log.Errorw("server error", "error", err)
		}
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancelShutdown()
	if err := httpServer.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Errorw("graceful shutdown failed", "error", err)
		if closeErr := httpServer.Close(); closeErr != nil && !errors.Is(closeErr, http.ErrServerClosed) {
			log.Errorw("forced close failed", "error", closeErr)
		}
	}

	cancel()
	if runErr != nil {
		os.Exit(1)
	}
}
