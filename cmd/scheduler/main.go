package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/rentware/lease-engine/internal/config"
	"github.com/rentware/lease-engine/internal/repository"
	"github.com/rentware/lease-engine/internal/service"
	"github.com/rentware/lease-engine/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := logging.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	db, err := sqlx.Connect("postgres", cfg.Database.DSN())
	if err != nil {
		logger.Fatal("failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	contractRepo := repository.NewContractRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)
	contractService := service.NewContractService(contractRepo, paymentRepo, nil, cfg, logger)

	location, err := time.LoadLocation(cfg.Scheduler.Timezone)
	if err != nil {
		logger.Fatal("invalid scheduler timezone", zap.String("timezone", cfg.Scheduler.Timezone), zap.Error(err))
	}

	c := cron.New(cron.WithSeconds(), cron.WithLocation(location))

	// Daily sweep: active contracts past their end date become expired.
	_, err = c.AddFunc(cfg.Scheduler.ExpirySpec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()

		count, err := contractService.ExpireDueContracts(ctx)
		if err != nil {
			logger.Error("contract expiry sweep failed", zap.Error(err))
			return
		}
		logger.Info("contract expiry sweep done", zap.Int64("expired", count))
	})
	if err != nil {
		logger.Fatal("failed to schedule expiry sweep", zap.Error(err))
	}

	c.Start()
	logger.Info("scheduler started", zap.String("expiry_spec", cfg.Scheduler.ExpirySpec))

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down scheduler")
	<-c.Stop().Done()
	logger.Info("scheduler stopped")
}
