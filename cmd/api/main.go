package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"campaign_portal_backend/internal/access"
	"campaign_portal_backend/internal/adapters"
	"campaign_portal_backend/internal/adapters/storage"
	"campaign_portal_backend/internal/billables"
	"campaign_portal_backend/internal/configurations"
	"campaign_portal_backend/internal/email"
	"campaign_portal_backend/internal/events"
	apphttp "campaign_portal_backend/internal/http"
	"campaign_portal_backend/internal/http/router"
	"campaign_portal_backend/internal/notification"
	"campaign_portal_backend/internal/partners"
	"campaign_portal_backend/internal/pipeline"
	pipelineservice "campaign_portal_backend/internal/pipeline/service"
	"campaign_portal_backend/internal/scheduler"
	"campaign_portal_backend/migrations"
	"campaign_portal_backend/platform/cache"
	"campaign_portal_backend/platform/config"
	"campaign_portal_backend/platform/db"
	"campaign_portal_backend/platform/logger"
	"campaign_portal_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
)

// ensureBucket wraps the retry logic for verifying a MinIO bucket exists.
func ensureBucket(ctx context.Context, log *logger.Logger, storageSvc storage.StorageService, name, bucket string) {
	if err := withRetry(ctx, log, "ensure "+name+" bucket", 5, 2*time.Second, func() error {
		return storageSvc.EnsureBucketExists(ctx, bucket)
	}); err != nil {
		log.Error("failed to ensure storage bucket exists", "error", err, "bucket", bucket)
		panic("failed to ensure storage bucket exists: " + err.Error())
	}
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	log := logger.New(cfg.Env)
	log.Info("starting server", "env", cfg.Env, "addr", cfg.HTTPAddr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// ========================================================================
	// Infrastructure Layer
	// ========================================================================

	if cfg.RunMigrations {
		if err := withRetry(ctx, log, "database migrations", 5, 2*time.Second, func() error {
			return db.RunMigrations(ctx, cfg, migrations.FS)
		}); err != nil {
			log.Error("failed to run database migrations", "error", err)
			panic("failed to run database migrations: " + err.Error())
		}
		log.Info("database migrations complete")
	}

	var pool *pgxpool.Pool
	if err := withRetry(ctx, log, "database connection", 5, 2*time.Second, func() error {
		p, err := db.NewPool(ctx, cfg)
		if err != nil {
			return err
		}
		pool = p
		return nil
	}); err != nil {
		log.Error("failed to connect to database", "error", err)
		panic("failed to connect to database: " + err.Error())
	}
	defer pool.Close()
	log.Info("database connection established")

	eventBus := events.NewInMemoryBus(log)

	redisClient, closeRedis := initRedis(ctx, cfg, log)
	if closeRedis != nil {
		defer closeRedis()
	}

	sender, err := email.NewSender(cfg)
	if err != nil {
		log.Error("failed to initialize email sender", "error", err)
		panic("failed to initialize email sender: " + err.Error())
	}

	val := validator.New()

	var storageSvc storage.StorageService
	if cfg.IsMinIOEnabled() {
		minioSvc, err := storage.NewMinIOService(cfg)
		if err != nil {
			log.Error("failed to initialize storage service", "error", err)
			panic("failed to initialize storage service: " + err.Error())
		}
		ensureBucket(ctx, log, minioSvc, "creative-assets", cfg.GetMinioBucketCreativeAssets())
		storageSvc = minioSvc
		log.Info("storage service initialized", "creativeAssetsBucket", cfg.GetMinioBucketCreativeAssets())
	} else {
		log.Warn("MINIO_ENDPOINT not configured; creative asset uploads disabled")
	}

	// ========================================================================
	// Domain Modules (Composition Root)
	// ========================================================================

	// Notification module subscribes to domain events (not HTTP-facing)
	notificationModule := notification.New(sender, cfg, log)
	notificationModule.RegisterHandlers(eventBus)

	invites, closeQueue := initInviteDispatcher(cfg, notificationModule, log)
	if closeQueue != nil {
		defer closeQueue()
	}

	accessOpts := access.Options{RoleCacheTTL: time.Duration(cfg.GetRoleCacheTTLSeconds()) * time.Second}
	if redisClient != nil {
		accessOpts.Redis = redisClient
		accessOpts.RedisPreferences = cfg.GetPreferenceStore() == "redis"
	}
	accessModule := access.NewModule(pool, eventBus, val, log, accessOpts)

	pipelineModule, err := pipeline.NewModule(pool, invites, eventBus, val, log)
	if err != nil {
		log.Error("failed to initialize pipeline module", "error", err)
		panic("failed to initialize pipeline module: " + err.Error())
	}

	billablesModule, err := billables.NewModule(pool, eventBus, val, log)
	if err != nil {
		log.Error("failed to initialize billables module", "error", err)
		panic("failed to initialize billables module: " + err.Error())
	}

	partnersModule, err := partners.NewModule(pool, eventBus, storageSvc, cfg.GetMinioBucketCreativeAssets(), val, log)
	if err != nil {
		log.Error("failed to initialize partners module", "error", err)
		panic("failed to initialize partners module: " + err.Error())
	}

	configurationsModule, err := configurations.NewModule(pool, val, log)
	if err != nil {
		log.Error("failed to initialize configurations module", "error", err)
		panic("failed to initialize configurations module: " + err.Error())
	}
	if err := configurationsModule.Seed(ctx); err != nil {
		log.Error("failed to seed configuration defaults", "error", err)
		panic("failed to seed configuration defaults: " + err.Error())
	}

	// ========================================================================
	// HTTP Layer
	// ========================================================================

	app := &apphttp.App{
		Config:     cfg,
		Logger:     log,
		Health:     db.PoolHealth{Pool: pool},
		EventBus:   eventBus,
		RoleLoader: accessModule,
		Modules: []apphttp.Module{
			accessModule,
			pipelineModule,
			billablesModule,
			partnersModule,
			configurationsModule,
		},
	}

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router.New(app),
		ReadHeaderTimeout: 10 * time.Second,
	}

	srvErr := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", cfg.HTTPAddr)
		srvErr <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received, gracefully shutting down")
		shutdown(srv, eventBus, 10*time.Second, log)
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			panic("server error: " + err.Error())
		}
	}
}

// drainer is satisfied by the in-memory event bus.
type drainer interface {
	Wait()
}

// shutdown stops accepting requests, then waits for async event handlers so
// side effects started by in-flight requests complete before exit.
func shutdown(srv *http.Server, bus drainer, timeout time.Duration, log *logger.Logger) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}
	bus.Wait()
	log.Info("event handlers drained")
}

// initRedis connects the optional Redis used by the access module. A
// configured but unreachable Redis is fatal when preferences live there.
func initRedis(ctx context.Context, cfg *config.Config, log *logger.Logger) (redis.UniversalClient, func()) {
	if !cfg.IsRedisEnabled() {
		log.Warn("REDIS_URL not configured; role cache disabled")
		return nil, nil
	}

	client, err := cache.NewRedisClient(ctx, cfg)
	if err != nil {
		if cfg.GetPreferenceStore() == "redis" {
			log.Error("failed to connect to redis", "error", err)
			panic("failed to connect to redis: " + err.Error())
		}
		log.Warn("redis unavailable; role cache disabled", "error", err)
		return nil, nil
	}

	return client, func() {
		_ = client.Close()
	}
}

// initInviteDispatcher queues partner invites on asynq when Redis is
// configured and falls back to sending them inline otherwise.
func initInviteDispatcher(cfg *config.Config, mailer *notification.Module, log *logger.Logger) (pipelineservice.InviteDispatcher, func()) {
	if !cfg.IsRedisEnabled() {
		log.Warn("REDIS_URL not configured; partner invites are sent inline")
		return adapters.NewDirectInviteDispatcher(mailer), nil
	}

	client, err := scheduler.NewClient(cfg)
	if err != nil {
		log.Error("failed to initialize invite queue; sending invites inline", "error", err)
		return adapters.NewDirectInviteDispatcher(mailer), nil
	}

	return adapters.NewQueuedInviteDispatcher(client, log), func() {
		_ = client.Close()
	}
}

func withRetry(ctx context.Context, log *logger.Logger, name string, attempts int, baseDelay time.Duration, fn func() error) error {
	if attempts < 1 {
		return fmt.Errorf("%s: invalid retry attempts", name)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			log.Warn("retryable operation failed", "operation", name, "attempt", attempt, "error", err)
		}

		if attempt < attempts {
			delay := time.Duration(attempt*attempt) * baseDelay
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}
	}

	return errors.New(name + ": " + lastErr.Error())
}
