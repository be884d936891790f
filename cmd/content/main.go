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

	"github.com/thenewsfeed/content-platform/internal/content"
	"github.com/thenewsfeed/content-platform/internal/content/handler"
	"github.com/thenewsfeed/content-platform/internal/content/static"
	"github.com/thenewsfeed/content-platform/internal/rendercache"
	"github.com/thenewsfeed/content-platform/internal/views"
	"github.com/thenewsfeed/content-platform/internal/warmer"
	"github.com/thenewsfeed/content-platform/internal/wordpress"
	"github.com/thenewsfeed/content-platform/pkg/config"
	"github.com/thenewsfeed/content-platform/pkg/health"
	"github.com/thenewsfeed/content-platform/pkg/logger"
	"github.com/thenewsfeed/content-platform/pkg/metrics"
	"github.com/thenewsfeed/content-platform/pkg/middleware"
	"github.com/thenewsfeed/content-platform/pkg/postgres"
	pkgredis "github.com/thenewsfeed/content-platform/pkg/redis"
)

func main() {
	configPath := flag.String("config", "configs/development.yaml", "path to config file")
	useStatic := flag.Bool("static", false, "serve the built-in fixture dataset instead of WordPress")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Info("starting content service", "port", cfg.Server.Port, "static", *useStatic)

	m := metrics.New()

	var redisClient *pkgredis.Client
	redisClient, err = pkgredis.NewClient(cfg.Redis)
	if err != nil {
		slog.Warn("redis unavailable, render and origin caching disabled", "error", err)
		redisClient = nil
	} else {
		defer redisClient.Close()
	}

	var renderCache *rendercache.Cache
	if redisClient != nil {
		renderCache = rendercache.New(redisClient, cfg.Redis, m)
		slog.Info("render cache enabled", "addr", cfg.Redis.Addr, "ttl", cfg.Redis.RenderTTL)
	}

	var viewStore *views.Store
	var pgClient *postgres.Client
	pgClient, err = postgres.New(cfg.Postgres)
	if err != nil {
		slog.Warn("postgres unavailable, view counters disabled", "error", err)
		pgClient = nil
	} else {
		defer pgClient.Close()
		viewStore = views.NewStore(pgClient)
		slog.Info("view counter store enabled", "host", cfg.Postgres.Host)
	}

	var source content.Source
	if *useStatic {
		source = static.New()
		slog.Info("serving fixture dataset")
	} else {
		origin := wordpress.NewClient(cfg.WordPress, redisClient, m)
		source = content.NewAdapter(origin, viewStore, m)
		slog.Info("serving wordpress origin", "base_url", cfg.WordPress.BaseURL)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	h := handler.New(source, renderCache)

	if renderCache != nil {
		w := warmer.New(cfg.Kafka, h, renderCache, m)
		defer w.Close()
		go func() {
			if err := w.Start(ctx); err != nil {
				slog.Error("cache warmer error", "error", err)
			}
		}()
		slog.Info("cache warmer started", "topic", cfg.Kafka.Topics.ContentInvalidate)
	}

	checker := health.NewChecker()
	checker.Register("redis", func(ctx context.Context) health.ComponentHealth {
		if redisClient == nil {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: "not configured"}
		}
		if err := redisClient.Ping(ctx); err != nil {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: err.Error()}
		}
		return health.ComponentHealth{Status: health.StatusUp}
	})
	checker.Register("postgres", func(ctx context.Context) health.ComponentHealth {
		if pgClient == nil {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: "not configured"}
		}
		if err := pgClient.DB.PingContext(ctx); err != nil {
			return health.ComponentHealth{Status: health.StatusDegraded, Message: err.Error()}
		}
		return health.ComponentHealth{Status: health.StatusUp}
	})

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/v1/posts", h.ListPosts)
	mux.HandleFunc("GET /api/v1/posts/{slug}", h.GetPost)
	mux.HandleFunc("GET /api/v1/articles/{id}", h.GetArticle)
	mux.HandleFunc("GET /api/v1/pages", h.ListPages)
	mux.HandleFunc("GET /api/v1/pages/{slug}", h.GetPage)
	mux.HandleFunc("GET /api/v1/categories", h.ListCategories)
	mux.HandleFunc("GET /api/v1/tags", h.ListTags)
	mux.HandleFunc("GET /api/v1/cache/stats", h.CacheStats)
	mux.HandleFunc("POST /api/v1/cache/purge", h.PurgeCache)
	mux.HandleFunc("GET /health/live", checker.LiveHandler())
	mux.HandleFunc("GET /health/ready", checker.ReadyHandler())

	var chain http.Handler = mux
	chain = middleware.Timeout(cfg.Server.WriteTimeout)(chain)
	chain = middleware.Metrics(m)(chain)
	chain = middleware.RequestID(chain)

	if cfg.Metrics.Enabled {
		go func() {
			addr := fmt.Sprintf(":%d", cfg.Metrics.Port)
			slog.Info("metrics endpoint listening", "addr", addr)
			if err := http.ListenAndServe(addr, metrics.Handler()); err != nil && err != http.ErrServerClosed {
				slog.Error("metrics server error", "error", err)
			}
		}()
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
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

	slog.Info("content service listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	slog.Info("content service stopped")
}
