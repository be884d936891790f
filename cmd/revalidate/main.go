package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/thenewsfeed/content-platform/internal/rendercache"
	"github.com/thenewsfeed/content-platform/internal/revalidate"
	"github.com/thenewsfeed/content-platform/pkg/config"
	"github.com/thenewsfeed/content-platform/pkg/health"
	"github.com/thenewsfeed/content-platform/pkg/kafka"
	"github.com/thenewsfeed/content-platform/pkg/logger"
	"github.com/thenewsfeed/content-platform/pkg/metrics"
	"github.com/thenewsfeed/content-platform/pkg/middleware"
	pkgredis "github.com/thenewsfeed/content-platform/pkg/redis"
)

func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("starting revalidation gateway", "port", cfg.Revalidate.Port)

	m := metrics.New()

	redisClient, err := pkgredis.NewClient(cfg.Redis)
	if err != nil {
		slog.Error("redis unavailable, gateway cannot invalidate", "error", err)
		os.Exit(1)
	}
	defer redisClient.Close()
	renderCache := rendercache.New(redisClient, cfg.Redis, m)

	producer := kafka.NewProducer(cfg.Kafka, cfg.Kafka.Topics.ContentInvalidate)
	notifier := revalidate.NewKafkaNotifier(producer)
	defer notifier.Close()
	slog.Info("change notifier enabled", "topic", cfg.Kafka.Topics.ContentInvalidate)

	h := revalidate.New(renderCache, notifier, m)

	checker := health.NewChecker()
	checker.Register("redis", func(ctx context.Context) health.ComponentHealth {
		if err := redisClient.Ping(ctx); err != nil {
			return health.ComponentHealth{Status: health.StatusDown, Message: err.Error()}
		}
		return health.ComponentHealth{Status: health.StatusUp}
	})

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/revalidate", h.Revalidate)
	mux.HandleFunc("GET /api/v1/revalidate", h.RevalidateGet)
	mux.HandleFunc("GET /health/live", checker.LiveHandler())
	mux.HandleFunc("GET /health/ready", checker.ReadyHandler())

	var chain http.Handler = mux
	chain = middleware.Timeout(cfg.Server.WriteTimeout)(chain)
	chain = middleware.Metrics(m)(chain)
	chain = middleware.RequestID(chain)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Revalidate.Port),
		Handler:      chain,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		<-ctx.Done()
		slog.Info("shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("server shutdown error", "error", err)
		}
	}()

	slog.Info("revalidation gateway listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	slog.Info("revalidation gateway stopped")
}
