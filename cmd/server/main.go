package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/rentware/lease-engine/internal/config"
	"github.com/rentware/lease-engine/internal/handler"
	"github.com/rentware/lease-engine/internal/repository"
	"github.com/rentware/lease-engine/internal/service"
	"github.com/rentware/lease-engine/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := logging.New(cfg.Logging.Level, cfg.Logging.Format)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	// Initialize database
	db, err := initDB(cfg)
	if err != nil {
		logger.Fatal("failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	// Initialize Redis
	redisClient := initRedis(cfg)
	defer redisClient.Close()

	// Initialize repositories
	contractRepo := repository.NewContractRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)

	// Initialize service and handlers
	contractService := service.NewContractService(contractRepo, paymentRepo, redisClient, cfg, logger)
	contractHandler := handler.NewContractHandler(contractService, logger)
	healthHandler := handler.NewHealthHandler(db, redisClient)

	// Setup routes
	router := setupRoutes(contractHandler, healthHandler)

	// Start server
	server := &http.Server{
		Addr:         cfg.Server.Host + ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("server starting", zap.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("shutting down server")

	// Graceful shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	logger.Info("server exited")
}

func initDB(cfg *config.Config) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", cfg.Database.DSN())
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	return db, nil
}

func initRedis(cfg *config.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Host + ":" + cfg.Redis.Port,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
}

func setupRoutes(contractHandler *handler.ContractHandler, healthHandler *handler.HealthHandler) *mux.Router {
	router := mux.NewRouter()

	// Health check
	router.HandleFunc("/health", healthHandler.Health).Methods("GET")
	router.HandleFunc("/health/ready", healthHandler.Ready).Methods("GET")

	// API routes
	api := router.PathPrefix("/api/v1").Subrouter()

	api.HandleFunc("/contracts", contractHandler.CreateContract).Methods("POST")
	api.HandleFunc("/contracts/{contractId}/activate", contractHandler.ActivateContract).Methods("POST")
	api.HandleFunc("/contracts/{contractId}/reschedule", contractHandler.Reschedule).Methods("POST")
	api.HandleFunc("/contracts/{contractId}/renew", contractHandler.Renew).Methods("POST")
	api.HandleFunc("/contracts/{contractId}/schedule", contractHandler.GetSchedule).Methods("GET")
	api.HandleFunc("/contracts/{contractId}/statement", contractHandler.OwnerStatement).Methods("GET")
	api.HandleFunc("/contracts/{contractId}/payments/{paymentId}/settle", contractHandler.SettlePayment).Methods("POST")
	api.HandleFunc("/contracts/{contractId}/payments/{paymentId}/postpone", contractHandler.PostponePayment).Methods("POST")
	api.HandleFunc("/contracts/{contractId}/payments/{paymentId}/late-fee", contractHandler.LateFee).Methods("GET")

	return router
}
