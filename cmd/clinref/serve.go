package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/custodia-labs/clinref/internal/adapters/driven/auth"
	"github.com/custodia-labs/clinref/internal/adapters/driven/backend"
	"github.com/custodia-labs/clinref/internal/adapters/driven/memory"
	"github.com/custodia-labs/clinref/internal/adapters/driven/postgres"
	redisadapter "github.com/custodia-labs/clinref/internal/adapters/driven/redis"
	"github.com/custodia-labs/clinref/internal/adapters/driving/http"
	"github.com/custodia-labs/clinref/internal/catalog"
	"github.com/custodia-labs/clinref/internal/citations"
	"github.com/custodia-labs/clinref/internal/config"
	"github.com/custodia-labs/clinref/internal/core/domain"
	"github.com/custodia-labs/clinref/internal/core/ports/driven"
	"github.com/custodia-labs/clinref/internal/core/ports/driving"
	"github.com/custodia-labs/clinref/internal/core/services"
	"github.com/custodia-labs/clinref/internal/logging"
	"github.com/custodia-labs/clinref/internal/panel"
)

const (
	bootstrapLock    = "bootstrap-admin"
	bootstrapLockTTL = 30 * time.Second
)

func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			logger, err := logging.New(cfg.Log.Level, cfg.Log.Format)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return serve(ctx, cfg, logger)
		},
	}
}

func serve(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	logger.Info("clinref starting", zap.String("version", Version), zap.String("addr", cfg.Addr()))
	if cfg.Auth.JWTSecret == config.DefaultJWTSecret {
		logger.Warn("using the development JWT secret; set CLINREF_AUTH_JWT_SECRET in production")
	}

	// ===== PostgreSQL =====
	db, err := postgres.Connect(ctx, postgres.Config{
		URL:             cfg.Database.URL,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		ConnMaxIdleTime: cfg.Database.ConnMaxIdleTime,
	})
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer db.Close()

	if err := db.InitSchema(ctx); err != nil {
		return err
	}
	logger.Info("postgres connected and schema initialized")

	// ===== Redis (optional) =====
	var redisClient *redis.Client
	if cfg.Redis.URL != "" {
		redisClient, err = redisadapter.Connect(ctx, cfg.Redis.URL)
		if err != nil {
			return fmt.Errorf("connect redis: %w", err)
		}
		defer redisClient.Close()
		logger.Info("redis connected")
	}

	// ===== Stores (Redis if available, otherwise PostgreSQL or in-process) =====
	var (
		sessionStore driven.SessionStore
		summaryCache driven.SummaryCache
		lock         driven.DistributedLock
		redisPinger  http.Pinger
	)
	if redisClient != nil {
		sessionStore = redisadapter.NewSessionStore(redisClient)
		summaryCache = redisadapter.NewSummaryCache(redisClient, cfg.Cache.SummaryTTL)
		redisLock := redisadapter.NewLock(redisClient)
		lock = redisLock
		redisPinger = redisLock
		logger.Info("using redis for sessions, summary cache and locks")
	} else {
		sessionStore = postgres.NewSessionStore(db)
		summaryCache = memory.NewSummaryCache(cfg.Cache.SummarySize, cfg.Cache.SummaryTTL)
		lock = postgres.NewAdvisoryLock(db)
		logger.Info("using postgres sessions, in-memory summary cache and advisory locks")
	}
	userStore := postgres.NewUserStore(db)
	conversationStore := postgres.NewConversationStore(db)

	// ===== Catalog =====
	cat := catalog.Default()
	if cfg.Catalog.Path != "" {
		if cat, err = catalog.Load(cfg.Catalog.Path); err != nil {
			return err
		}
	}

	// ===== Clinical backend =====
	backendClient := backend.NewClient(cfg.Backend.BaseURL,
		backend.WithAPIKey(cfg.Backend.APIKey),
		backend.WithTimeout(cfg.Backend.Timeout),
		backend.WithRateLimit(cfg.Backend.RateLimit, cfg.Backend.Burst),
		backend.WithLogger(logger.Named("backend")),
	)

	// ===== Services =====
	authAdapter := auth.NewAdapter(cfg.Auth.JWTSecret)
	pipeline := citations.NewPipeline()
	registry := panel.NewRegistry(logger.Named("panels"))

	authService := services.NewAuthService(userStore, sessionStore, authAdapter, cfg.Auth.TokenTTL, logger.Named("auth"))
	userService := services.NewUserService(userStore, sessionStore, authAdapter, logger.Named("users"))
	svc := http.Services{
		Auth:       authService,
		Users:      userService,
		Guidelines: services.NewGuidelineService(backendClient, summaryCache, cat, pipeline, logger.Named("guidelines")),
		Drugs:      services.NewDrugService(backendClient, cat, pipeline, logger.Named("drugs")),
		References: services.NewReferenceService(summaryCache, registry, logger.Named("references")),
		Navigation: services.NewNavigationService(),
		Assistant: services.NewAssistantService(services.AssistantDeps{
			Streamer:      backendClient,
			Conversations: conversationStore,
			Users:         userStore,
			Cache:         summaryCache,
			Catalog:       cat,
			Pipeline:      pipeline,
			Logger:        logger.Named("assistant"),
		}),
	}

	if err := bootstrapAdmin(ctx, cfg.Admin, userService, lock, logger); err != nil {
		return err
	}

	go sweepPanels(ctx, registry, cfg.Cache.PanelMaxIdle)

	// ===== HTTP =====
	server := http.NewServer(http.Config{
		Host:              cfg.Server.Host,
		Port:              cfg.Server.Port,
		Version:           Version,
		AllowedOrigins:    cfg.Server.AllowedOrigins,
		MetricsEnabled:    cfg.Metrics.Enabled,
		TypeaheadDebounce: cfg.Typeahead.Debounce,
	}, svc, db, redisPinger, logger.Named("http"))

	return server.Start(ctx)
}

// bootstrapAdmin creates the configured admin when the user table is empty.
// The lock keeps concurrently starting instances from racing.
func bootstrapAdmin(ctx context.Context, admin config.AdminConfig, users driving.UserService, lock driven.DistributedLock, logger *zap.Logger) error {
	if admin.Email == "" {
		return nil
	}

	acquired, err := lock.Acquire(ctx, bootstrapLock, bootstrapLockTTL)
	if err != nil {
		return fmt.Errorf("acquire bootstrap lock: %w", err)
	}
	if !acquired {
		logger.Info("another instance is bootstrapping the admin account")
		return nil
	}
	defer func() {
		if err := lock.Release(context.WithoutCancel(ctx), bootstrapLock); err != nil {
			logger.Warn("failed to release bootstrap lock", zap.Error(err))
		}
	}()

	_, err = users.Setup(ctx, driving.SetupRequest{Email: admin.Email, Password: admin.Password, Name: admin.Name})
	switch {
	case errors.Is(err, domain.ErrForbidden):
		logger.Debug("users exist, skipping admin bootstrap")
		return nil
	case err != nil:
		return fmt.Errorf("bootstrap admin: %w", err)
	}
	return nil
}

// sweepPanels closes panels left idle, for clients that never sent a close
func sweepPanels(ctx context.Context, registry *panel.Registry, maxIdle time.Duration) {
	if maxIdle <= 0 {
		return
	}
	ticker := time.NewTicker(maxIdle / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			registry.Sweep(maxIdle)
		}
	}
}
