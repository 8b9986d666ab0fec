package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/atelierhq/atelier/internal/api"
	"github.com/atelierhq/atelier/internal/config"
	"github.com/atelierhq/atelier/internal/repository/postgres"
	"github.com/atelierhq/atelier/internal/service"
	"github.com/atelierhq/atelier/internal/websocket"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := newLogger(cfg.Environment)
	if err != nil {
		log.Fatalf("failed to build logger: %v", err)
	}
	defer logger.Sync()

	db, err := postgres.NewConnection(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("failed to connect to database", zap.Error(err))
	}
	if err := postgres.Migrate(db); err != nil {
		logger.Fatal("failed to run migrations", zap.Error(err))
	}

	repos := postgres.NewRepositories(db)

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
	})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		logger.Warn("redis unreachable, realtime fanout limited to this instance", zap.Error(err))
		rdb = nil
	}

	hub := websocket.NewHub(logger)
	go hub.Run()

	bridgeCtx, stopBridge := context.WithCancel(context.Background())
	defer stopBridge()
	if rdb != nil {
		bridge := websocket.NewBridge(rdb, hub, logger)
		go bridge.Run(bridgeCtx)
	}

	services := service.NewServices(repos, cfg, logger, rdb, hub)
	router := api.NewRouter(services, hub, logger)

	srv := &http.Server{
		Addr:         "0.0.0.0:" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server starting", zap.String("port", cfg.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Fatal("server forced to shutdown", zap.Error(err))
	}

	stopBridge()
	hub.Stop()

	logger.Info("server stopped")
}

func newLogger(environment string) (*zap.Logger, error) {
	if environment == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}
