package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	pg "pet-reminder/internal/adapters/storage/postgres"
	"pet-reminder/internal/config"
	"pet-reminder/internal/platform/clock"
	"pet-reminder/internal/platform/logger"
	"pet-reminder/internal/router"
	"pet-reminder/internal/scheduler"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log, err := buildLogger(cfg.Log)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	clk := clock.System()
	if cfg.Clock.DebugToday != "" {
		fixed, err := clock.DebugOverride(cfg.Clock.DebugToday)
		if err != nil {
			log.Fatal("invalid clock.debug_today", zap.String("value", cfg.Clock.DebugToday), zap.Error(err))
		}
		clk = fixed
		log.Warn("clock frozen at debug date", zap.String("today", cfg.Clock.DebugToday))
	}

	opts := router.Options{
		Log:      log,
		Clock:    clk,
		SeedDemo: cfg.Server.IsDev(),
	}
	if cfg.Database.DSN != "" {
		db, err := pg.Open(cfg.Database.DSN)
		if err != nil {
			log.Fatal("open database failed", zap.Error(err))
		}
		defer db.Close()
		opts.DB = db
	}

	deps := router.New(opts)

	mgr, err := scheduler.Start(log, clk, deps.Pets, deps.Schedules)
	if err != nil {
		log.Warn("scheduler disabled", zap.Error(err))
	} else {
		defer mgr.Stop()
	}

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      deps.Handler,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info("starting server", zap.String("addr", srv.Addr), zap.String("mode", cfg.Server.Mode))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown failed", zap.Error(err))
	}
	log.Info("server stopped")
}

func buildLogger(cfg config.LogConfig) (*logger.Logger, error) {
	if cfg.Output == "file" {
		return logger.NewWithRotation(cfg.Level, logger.RotationConfig{Filename: cfg.File})
	}
	return logger.New(cfg.Level)
}
