// The worker runs the obligation scheduler without the HTTP surface. Any
// number of workers can run next to any number of servers; the skip-locked
// claim in the repository keeps firings exactly-once across all of them.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/firecash/backend/internal/infrastructure/config"
	"github.com/firecash/backend/internal/infrastructure/logger"
	"github.com/firecash/backend/internal/infrastructure/persistence"
	"github.com/firecash/backend/internal/infrastructure/scheduler"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "Path to config file")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		panic("failed to load configuration: " + err.Error())
	}

	log, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		panic("failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = log.Sync()
	}()

	log.Info("starting firecash worker",
		zap.Duration("tick_interval", cfg.Scheduler.TickInterval),
		zap.Int("batch_limit", cfg.Scheduler.BatchLimit),
	)

	gormLog := logger.NewGormLogger(log, logger.MapGormLogLevel(cfg.Log.Level))
	db, err := persistence.NewDatabase(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("error closing database", zap.Error(err))
		}
	}()

	obligationRepo := persistence.NewGormObligationRepository(db.DB)
	s := scheduler.NewObligationScheduler(scheduler.Config{
		TickInterval: cfg.Scheduler.TickInterval,
		BatchLimit:   cfg.Scheduler.BatchLimit,
	}, obligationRepo, nil, log)

	if err := s.Start(context.Background()); err != nil {
		log.Fatal("failed to start scheduler", zap.Error(err))
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := s.Stop(shutdownCtx); err != nil {
		log.Error("scheduler shutdown error", zap.Error(err))
	}
	log.Info("shutdown complete")
}
