// Package main is the entrypoint for the FeedLens API server.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/kiranshivaraju/feedlens/internal/analysis"
	"github.com/kiranshivaraju/feedlens/internal/api"
	"github.com/kiranshivaraju/feedlens/internal/api/handler"
	mw "github.com/kiranshivaraju/feedlens/internal/api/middleware"
	"github.com/kiranshivaraju/feedlens/internal/api/response"
	"github.com/kiranshivaraju/feedlens/internal/cache"
	"github.com/kiranshivaraju/feedlens/internal/config"
	"github.com/kiranshivaraju/feedlens/internal/sentiment"
	"github.com/kiranshivaraju/feedlens/internal/store"
	"github.com/kiranshivaraju/feedlens/pkg/models"
	"golang.org/x/sync/errgroup"
)

const (
	shutdownTimeout  = 30 * time.Second
	healthTimeout    = 3 * time.Second
	bootstrapKeyName = "bootstrap-admin"
)

func main() {
	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel(os.Getenv("FEEDLENS_LOG_LEVEL")),
	})))

	if err := run(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

// logLevel parses debug, info, warn or error. Anything else is info.
func logLevel(v string) slog.Level {
	var l slog.Level
	if err := l.UnmarshalText([]byte(v)); err != nil {
		return slog.LevelInfo
	}
	return l
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	slog.Info("config loaded", "sentiment_provider", cfg.Sentiment.Provider, "env", cfg.Server.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	b, err := openBackends(ctx, cfg)
	if err != nil {
		return err
	}
	defer b.close()

	if err := ensureBootstrapKey(ctx, b.store, cfg.Server.BootstrapAdminKey); err != nil {
		return fmt.Errorf("bootstrap admin key: %w", err)
	}

	svc, err := newAnalysisService(cfg.Sentiment, b.cache)
	if err != nil {
		return fmt.Errorf("create sentiment provider: %w", err)
	}

	router := api.NewRouter(api.Dependencies{
		Auth:      mw.NewAuth(b.store),
		RateLimit: mw.NewRateLimit(b.cache, cfg.Server.RateLimitPerMin),

		HealthHandler:    healthHandler(b.store, b.cache),
		AnalyzeHandler:   handler.NewAnalyzeHandler(svc),
		UploadHandler:    handler.NewUploadHandler(svc, cfg.Upload.MaxBytes),
		CreateKeyHandler: handler.NewCreateKeyHandler(b.store),
		ListKeysHandler:  handler.NewListKeysHandler(b.store),
		RevokeKeyHandler: handler.NewRevokeKeyHandler(b.store),
	})

	// Uploads of large sheets classify many rows within one request, hence
	// the long write timeout.
	return serve(ctx, &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  time.Minute,
	})
}

type backends struct {
	store *store.PostgresStore
	cache *cache.RedisCache
	close func()
}

// openBackends connects Postgres, applies migrations and connects Redis.
// On error everything opened so far is released.
func openBackends(ctx context.Context, cfg *config.Config) (*backends, error) {
	pool, err := store.Connect(ctx, cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	if err := store.RunMigrations(cfg.Database.URL, "migrations"); err != nil {
		pool.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	slog.Info("database ready")

	rc, err := cache.NewRedisCache(cfg.Redis.URL)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("create redis cache: %w", err)
	}
	if err := rc.Ping(ctx); err != nil {
		rc.Close()
		pool.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	slog.Info("redis ready")

	return &backends{
		store: store.NewPostgresStore(pool),
		cache: rc,
		close: func() {
			rc.Close()
			pool.Close()
		},
	}, nil
}

// serve runs srv until it fails or ctx is done, then drains in-flight
// requests for at most shutdownTimeout.
func serve(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		slog.Info("server listening", "addr", srv.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
		slog.Info("shutting down", "timeout", shutdownTimeout)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	slog.Info("server stopped")
	return nil
}

// newAnalysisService wires the remote provider, its result cache and the
// pacing policy into an analysis.Service. With provider "none" the lexicon
// answers everything and pacing is off.
func newAnalysisService(cfg config.SentimentConfig, c sentiment.ResultCache) (*analysis.Service, error) {
	provider, err := sentiment.NewProvider(cfg)
	if err != nil {
		return nil, err
	}
	if provider == nil {
		slog.Info("remote sentiment disabled, using lexicon only")
		return analysis.NewService(sentiment.NewClassifier(nil, cfg.Timeout), analysis.NoPacing), nil
	}

	if cfg.CacheTTL > 0 && c != nil {
		provider = sentiment.NewCachedProvider(provider, c, cfg.HuggingFace.Model, cfg.CacheTTL)
	}
	slog.Info("sentiment provider initialized",
		"provider", provider.Name(),
		"model", cfg.HuggingFace.Model,
		"min_interval", cfg.MinInterval.String(),
		"cache_ttl", cfg.CacheTTL.String(),
	)

	classifier := sentiment.NewClassifier(provider, cfg.Timeout)
	return analysis.NewService(classifier, analysis.IntervalPacer(cfg.MinInterval)), nil
}

// ensureBootstrapKey registers raw as an admin key in the default tenant
// unless a live key with the same value already exists. An empty raw is a
// no-op.
func ensureBootstrapKey(ctx context.Context, s store.Store, raw string) error {
	if raw == "" {
		return nil
	}
	prefix := mw.KeyPrefix(raw)
	if prefix == "" {
		return errors.New("FEEDLENS_BOOTSTRAP_ADMIN_KEY must be at least 8 characters")
	}

	candidates, err := s.GetAPIKeyByPrefix(ctx, prefix)
	if err != nil {
		return fmt.Errorf("lookup key: %w", err)
	}
	for _, k := range candidates {
		if mw.VerifyKey(k.KeyHash, raw) {
			return nil
		}
	}

	tenant, err := s.GetDefaultTenant(ctx)
	if err != nil {
		return fmt.Errorf("default tenant: %w", err)
	}
	hash, err := mw.HashKey(raw)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	key := &models.APIKey{
		ID:        uuid.New(),
		TenantID:  tenant.ID,
		Name:      bootstrapKeyName,
		KeyHash:   hash,
		KeyPrefix: prefix,
		Scopes:    []string{mw.ScopeAdmin, mw.ScopeAnalyze},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.CreateAPIKey(ctx, key); err != nil {
		if errors.Is(err, store.ErrDuplicateKey) {
			slog.Warn("bootstrap key name taken by a different key, leaving it unchanged", "name", bootstrapKeyName)
			return nil
		}
		return fmt.Errorf("create key: %w", err)
	}

	slog.Info("bootstrap admin key created", "key_prefix", prefix)
	return nil
}

// healthHandler checks database and cache connectivity in parallel.
func healthHandler(s store.Store, c cache.Cache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()

		var dbErr, cacheErr error
		var g errgroup.Group
		g.Go(func() error {
			dbErr = s.Ping(ctx)
			return nil
		})
		g.Go(func() error {
			cacheErr = c.Ping(ctx)
			return nil
		})
		_ = g.Wait()

		checks := map[string]string{
			"database": "ok",
			"cache":    "ok",
		}
		if dbErr != nil {
			slog.Warn("health check failed", "service", "database", "error", dbErr)
			checks["database"] = "degraded"
		}
		if cacheErr != nil {
			slog.Warn("health check failed", "service", "cache", "error", cacheErr)
			checks["cache"] = "degraded"
		}

		degraded := checks["database"] != "ok" || checks["cache"] != "ok"
		if degraded {
			response.Error(w, http.StatusServiceUnavailable, "DEGRADED",
				"One or more services degraded", checks)
			return
		}

		response.JSON(w, map[string]any{
			"status":   "ok",
			"services": checks,
		})
	}
}
