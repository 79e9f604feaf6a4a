package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/firecash/backend/internal/application/access"
	appledger "github.com/firecash/backend/internal/application/ledger"
	appsharing "github.com/firecash/backend/internal/application/sharing"
	"github.com/firecash/backend/internal/infrastructure/auth"
	"github.com/firecash/backend/internal/infrastructure/cache"
	"github.com/firecash/backend/internal/infrastructure/config"
	"github.com/firecash/backend/internal/infrastructure/logger"
	"github.com/firecash/backend/internal/infrastructure/persistence"
	"github.com/firecash/backend/internal/infrastructure/scheduler"
	"github.com/firecash/backend/internal/interfaces/http/handler"
	"github.com/firecash/backend/internal/interfaces/http/router"
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

	log.Info("starting firecash backend",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Environment),
		zap.String("addr", cfg.Server.Addr()),
	)

	gin.SetMode(cfg.Server.Mode)

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

	// Repositories
	accountRepo := persistence.NewGormAccountRepository(db.DB)
	transactionRepo := persistence.NewGormTransactionRepository(db.DB)
	obligationRepo := persistence.NewGormObligationRepository(db.DB)
	groupRepo := persistence.NewGormGroupRepository(db.DB)
	userRepo := persistence.NewGormUserRepository(db.DB)

	// Optional role cache
	var roleCache access.RoleCache
	if cfg.Redis.Enabled {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := client.Ping(context.Background()).Err(); err != nil {
			log.Fatal("failed to connect to redis", zap.Error(err))
		}
		roleCache = cache.NewRedisRoleCache(client, cfg.Redis.RoleTTL, log)
		log.Info("role cache enabled", zap.String("addr", cfg.Redis.Addr))
	}

	// Application services
	kernel := access.NewKernel(accountRepo, groupRepo, roleCache, log)
	accountService := appledger.NewAccountService(accountRepo, kernel)
	transactionService := appledger.NewTransactionService(transactionRepo, kernel)
	obligationService := appledger.NewObligationService(obligationRepo, kernel)
	groupService := appsharing.NewGroupService(groupRepo, accountRepo, userRepo, kernel)

	// Embedded scheduler
	var obligationScheduler *scheduler.ObligationScheduler
	var schedulerHandler *handler.SchedulerHandler
	if cfg.Scheduler.Enabled {
		obligationScheduler = scheduler.NewObligationScheduler(scheduler.Config{
			TickInterval: cfg.Scheduler.TickInterval,
			BatchLimit:   cfg.Scheduler.BatchLimit,
		}, obligationRepo, nil, log)
		if err := obligationScheduler.Start(context.Background()); err != nil {
			log.Fatal("failed to start scheduler", zap.Error(err))
		}
		schedulerHandler = handler.NewSchedulerHandler(obligationScheduler)
	}

	validator := auth.NewTokenValidator(cfg.Auth.JWTSecret, cfg.Auth.Issuer)

	engine := router.New(router.Dependencies{
		Logger:       log,
		Validator:    validator,
		System:       handler.NewSystemHandler(db),
		Accounts:     handler.NewAccountHandler(accountService),
		Transactions: handler.NewTransactionHandler(transactionService),
		Groups:       handler.NewGroupHandler(groupService),
		Obligations:  handler.NewObligationHandler(obligationService),
		Scheduler:    schedulerHandler,
	})

	srv := &http.Server{
		Addr:    cfg.Server.Addr(),
		Handler: engine,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("server error", zap.Error(err))
		}
	}()
	log.Info("server listening", zap.String("addr", cfg.Server.Addr()))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Second)
	defer cancel()

	if obligationScheduler != nil {
		if err := obligationScheduler.Stop(shutdownCtx); err != nil {
			log.Error("scheduler shutdown error", zap.Error(err))
		}
	}
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server shutdown error", zap.Error(err))
	}
	log.Info("shutdown complete")
}
