package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pyq-ai/pyq-assistant/internal/account"
	"github.com/pyq-ai/pyq-assistant/internal/ai"
	"github.com/pyq-ai/pyq-assistant/internal/api"
	"github.com/pyq-ai/pyq-assistant/internal/auth"
	"github.com/pyq-ai/pyq-assistant/internal/catalog"
	"github.com/pyq-ai/pyq-assistant/internal/platform/cache"
	"github.com/pyq-ai/pyq-assistant/internal/platform/config"
	"github.com/pyq-ai/pyq-assistant/internal/platform/database"
	"github.com/pyq-ai/pyq-assistant/internal/pyq"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	setupLogger(cfg.Log)

	if err := cfg.Validate(); err != nil {
		slog.Error("invalid config", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer stop()

	srv, cleanup, err := buildServer(ctx, cfg)
	if err != nil {
		slog.Error("failed to build server", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	httpSrv := &http.Server{
		Addr:         addr,
		Handler:      srv.Routes(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("server starting", "addr", httpSrv.Addr)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
}

// buildServer wires the stores and services. Postgres and Redis are optional:
// when either is unreachable the server falls back to in-memory stores, which
// suits local development.
func buildServer(ctx context.Context, cfg *config.Config) (*api.Server, func(), error) {
	var cleanups []func()
	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}

	var (
		questions pyq.Store       = pyq.NewMemoryStore()
		accounts  account.Store   = account.NewMemoryStore()
		users     auth.UserStore  = auth.NewMemoryUserStore()
		tokens    auth.TokenStore = auth.NewMemoryTokenStore()
	)

	db, err := database.Connect(ctx, database.Config{
		URL:      cfg.Database.URL,
		MaxConns: cfg.Database.MaxConns,
		MinConns: cfg.Database.MinConns,
	})
	if err != nil {
		if cfg.Database.Required {
			cleanup()
			return nil, nil, fmt.Errorf("connect database: %w", err)
		}
		slog.Warn("database unavailable, using in-memory stores", "error", err)
	} else {
		cleanups = append(cleanups, db.Close)

		pgQuestions, err := pyq.NewPostgresStore(db.Pool)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("question store: %w", err)
		}
		questions = pgQuestions

		pgAccounts, err := account.NewPostgresStore(ctx, db.Pool)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("account store: %w", err)
		}
		accounts = pgAccounts

		pgUsers, err := auth.NewPostgresUserStore(db.Pool)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("user store: %w", err)
		}
		users = pgUsers
	}

	var redisCache *cache.Cache
	c, err := cache.New(ctx, cfg.Cache.URL)
	if err != nil {
		slog.Warn("cache unavailable, roadmap caching disabled", "error", err)
	} else {
		cleanups = append(cleanups, func() { c.Close() })
		redisCache = c
		tokens = auth.NewRedisTokenStore(c.Client)
	}

	cat, err := catalog.NewLoader(cfg.Catalog.ContentPath)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("load catalog: %w", err)
	}

	authSvc := auth.NewService(users, tokens,
		time.Duration(cfg.Auth.TokenTTLMins)*time.Minute, cfg.Auth.BcryptCost)

	opts := []api.Option{
		api.WithReadyCheck(func(ctx context.Context) error {
			if db != nil {
				if err := db.HealthCheck(ctx); err != nil {
					return err
				}
			}
			if redisCache != nil {
				return redisCache.HealthCheck(ctx)
			}
			return nil
		}),
	}
	if redisCache != nil {
		opts = append(opts, api.WithCache(redisCache,
			time.Duration(cfg.Cache.RoadmapTTLSecs)*time.Second))
	}
	if cfg.HasAIProvider() {
		provider := ai.NewOpenAIProvider(cfg.AI.BaseURL, cfg.AI.APIKey)
		opts = append(opts, api.WithGenerator(ai.NewGenerator(provider, cfg.AI.Model)))
		slog.Info("roadmap generation enabled", "model", cfg.AI.Model)
	}

	return api.NewServer(authSvc, questions, accounts, cat, opts...), cleanup, nil
}

func setupLogger(cfg config.LogConfig) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		level = slog.LevelInfo
	}
	handlerOpts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(os.Stdout, handlerOpts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, handlerOpts)
	}
	slog.SetDefault(slog.New(handler))
}
