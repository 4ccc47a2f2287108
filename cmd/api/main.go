package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/example/keebstore/pkg/auth"
	"github.com/example/keebstore/pkg/checkout"
	"github.com/example/keebstore/pkg/config"
	"github.com/example/keebstore/pkg/payment"
	"github.com/example/keebstore/pkg/pricing"
	"github.com/example/keebstore/pkg/repository"
	"github.com/example/keebstore/server"
	"go.uber.org/zap"
)

func main() {
	// Load config
	cfg, err := config.Load("config/config.yaml")
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}

	// Setup logger
	logger, err := zap.NewProduction()
	if err != nil {
		panic(fmt.Sprintf("Failed to create logger: %v", err))
	}
	defer logger.Sync()

	logger.Info("Starting storefront API",
		zap.String("host", cfg.Server.Host),
		zap.Int("port", cfg.Server.Port))

	// MongoDB
	mongoRepo, err := repository.NewMongoRepository(&cfg.MongoDB)
	if err != nil {
		logger.Fatal("Failed to connect to MongoDB", zap.Error(err))
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := mongoRepo.Ping(ctx); err != nil {
		logger.Fatal("MongoDB ping failed", zap.Error(err))
	}
	if err := mongoRepo.EnsureIndexes(ctx); err != nil {
		logger.Fatal("Failed to create indexes", zap.Error(err))
	}
	cancel()
	logger.Info("MongoDB connected successfully")

	// Redis
	redisRepo := repository.NewRedisRepository(&cfg.Redis)
	if err := redisRepo.Ping(context.Background()); err != nil {
		logger.Warn("Redis connection failed", zap.Error(err))
	} else {
		logger.Info("Redis connected successfully")
	}

	carts := redisRepo.CartStore()
	calculator := pricing.NewCalculator(&cfg.Pricing)

	checkoutSvc := checkout.NewService(
		mongoRepo.Products(),
		mongoRepo.Orders(),
		carts,
		calculator,
		logger,
	)

	srv := server.NewServer(cfg, logger, server.Deps{
		Products: mongoRepo.Products(),
		Orders:   mongoRepo.Orders(),
		Reviews:  mongoRepo.Reviews(),
		Users:    mongoRepo.Users(),
		Audit:    mongoRepo.Audit(),
		Carts:    carts,
		Checkout: checkoutSvc,
		Verifier: payment.NewTrustedVerifier(),
		Pricing:  calculator,
		Tokens:   auth.NewManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL),
	})
	srv.SetupRoutes()

	// Start server in goroutine
	srvErr := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil {
			srvErr <- err
		}
	}()

	logger.Info("Storefront API started successfully")

	// Wait for interrupt signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

	select {
	case <-sigCh:
		logger.Info("Received shutdown signal")
	case err := <-srvErr:
		logger.Fatal("Server error", zap.Error(err))
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := mongoRepo.Close(shutdownCtx); err != nil {
		logger.Error("Failed to close MongoDB connection", zap.Error(err))
	}
	if err := redisRepo.Close(); err != nil {
		logger.Error("Failed to close Redis connection", zap.Error(err))
	}

	logger.Info("Storefront API stopped")
}
