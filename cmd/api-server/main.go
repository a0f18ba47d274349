// cmd/api-server/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"blood-sea-api/internal/api"
	"blood-sea-api/internal/common/auth"
	"blood-sea-api/internal/common/config"
	"blood-sea-api/internal/common/database"
	"blood-sea-api/internal/common/logger"
	"blood-sea-api/internal/common/observability"
	"blood-sea-api/internal/common/validation"
	"blood-sea-api/internal/donors"
	"blood-sea-api/internal/notify"
	"blood-sea-api/internal/push"
	"blood-sea-api/internal/ratelimit"
	"blood-sea-api/internal/store"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2 // Exponential backoff
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fallback := logger.New("info", "console")
		fallback.Fatal("config load failed", zap.Error(err))
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()

	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting blood-sea API server...",
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	obs := observability.New(cfg.App.Name)
	defer obs.Shutdown()

	ctx := context.Background()

	// --- Init document store with retry ---
	var documentStore store.Store
	var mongoClient *database.MongoClient
	switch cfg.Database.Driver {
	case "mongo":
		err = retryWithBackoff(func() error {
			var err error
			mongoClient, err = database.NewMongo(cfg.Database.Mongo)
			if err != nil {
				return err
			}
			return mongoClient.Ping(ctx)
		}, 15, 2*time.Second, zapLog, "MongoDB connection")

		if err != nil {
			zapLog.Fatal("mongodb failed after retries", zap.Error(err))
		}
		defer mongoClient.Close(ctx)
		documentStore = store.NewMongoStore(mongoClient)
		zapLog.Info("MongoDB connected successfully")
	default:
		documentStore = store.NewMemoryStore()
		zapLog.Warn("Using in-memory store, data will not survive restarts")
	}

	// --- Init rate-limit counters, Redis when configured ---
	var counters ratelimit.CounterStore
	if cfg.Database.Redis.Enabled {
		var redis *database.RedisClient
		err = retryWithBackoff(func() error {
			var err error
			redis, err = database.NewRedis(cfg.Database.Redis)
			if err != nil {
				return err
			}
			return redis.Ping(ctx)
		}, 10, 2*time.Second, zapLog, "Redis connection")

		if err != nil {
			zapLog.Fatal("redis failed after retries", zap.Error(err))
		}
		defer redis.Close()
		counters = ratelimit.NewRedisCounterStore(redis)
		zapLog.Info("Redis connected successfully")
	} else {
		counters = ratelimit.NewMemoryCounterStore()
		zapLog.Info("Rate limiting on in-process counters")
	}

	// --- Init push channel ---
	var channel push.Channel
	switch cfg.Push.Provider {
	case "fcm":
		channel = push.NewFCMChannel(cfg.Push)
		zapLog.Info("FCM push channel initialized")
	default:
		channel = push.NewNoopChannel()
		zapLog.Warn("Push notifications disabled, using no-op channel")
	}

	validator, err := validation.New()
	if err != nil {
		zapLog.Fatal("schema compilation failed", zap.Error(err))
	}

	directory := donors.NewDirectory(documentStore, log, cfg.Notifications.DirectoryChunkSize)
	dispatcher := notify.NewDispatcher(documentStore, channel, directory, log, obs,
		notify.Config{MulticastLimit: cfg.Notifications.MulticastLimit})
	limiter := ratelimit.NewLimiter(counters, log)
	verifier := auth.NewJWTVerifier(cfg.Auth)

	server := api.NewServer(documentStore, dispatcher, validator, limiter, verifier,
		ratelimit.PoliciesFromConfig(cfg.RateLimits), log)

	httpServer := &http.Server{
		Addr:    cfg.Server.Address(),
		Handler: server.Router(),
	}

	go func() {
		zapLog.Info("HTTP server listening", zap.String("address", cfg.Server.Address()))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, draining requests...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(),
		time.Duration(cfg.Server.ShutdownTimeout)*time.Millisecond)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("Error shutting down HTTP server", zap.Error(err))
	}

	zapLog.Info("API server stopped gracefully")
}
