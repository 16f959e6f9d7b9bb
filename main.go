package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	gorillaHandlers "github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"ecoChallengeAPI/handlers"
	"ecoChallengeAPI/internal/cache"
	"ecoChallengeAPI/internal/config"
	"ecoChallengeAPI/internal/db"
	"ecoChallengeAPI/internal/events"
	"ecoChallengeAPI/internal/logger"
	"ecoChallengeAPI/internal/progress"
	"ecoChallengeAPI/internal/session"
	"ecoChallengeAPI/internal/store"
	"ecoChallengeAPI/middleware"
	"ecoChallengeAPI/services"
)

func main() {
	cfg, err := config.Load(config.GetConfigEnv(), os.Getenv("CONFIG_DIR"))
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	lg, err := logger.New(cfg.Log.Level)
	if err != nil {
		log.Fatalf("Failed to create logger: %v", err)
	}
	defer lg.Sync()

	if err := run(cfg, lg); err != nil {
		lg.Fatal("Server exited with error", zap.Error(err))
	}
}

func openStore(ctx context.Context, cfg *config.Config, lg *zap.Logger) (store.Store, error) {
	switch cfg.Storage.Driver {
	case "memory":
		lg.Warn("Using in-memory storage; data is lost on restart")
		return store.NewMemoryStore(), nil
	case "postgres":
		pool, err := db.NewPool(ctx, cfg.DB, lg)
		if err != nil {
			return nil, err
		}
		if err := db.Migrate(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
		return store.NewPostgresStore(pool), nil
	}
	return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
}

func openRedis(ctx context.Context, cfg config.RedisConfig, lg *zap.Logger) *redis.Client {
	if cfg.Addr == "" {
		return nil
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		lg.Warn("Redis unreachable; continuing without cache", zap.String("addr", cfg.Addr), zap.Error(err))
		_ = rdb.Close()
		return nil
	}
	lg.Info("Connected to Redis", zap.String("addr", cfg.Addr))
	return rdb
}

func openPublisher(cfg config.MQConfig, lg *zap.Logger) (events.Publisher, func()) {
	if cfg.URL == "" {
		return events.NoopPublisher{}, func() {}
	}
	pub, err := events.NewAMQPPublisher(cfg.URL, cfg.Exchange)
	if err != nil {
		lg.Warn("RabbitMQ unreachable; events are dropped", zap.Error(err))
		return events.NoopPublisher{}, func() {}
	}
	lg.Info("Connected to RabbitMQ", zap.String("exchange", cfg.Exchange))
	return pub, pub.Close
}

func run(cfg *config.Config, lg *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	startCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	st, err := openStore(startCtx, cfg, lg)
	if err != nil {
		return err
	}
	defer func() {
		lg.Info("Closing storage")
		st.Close()
	}()

	rdb := openRedis(startCtx, cfg.Redis, lg)
	var catalogStore store.CatalogStore = st
	var revoked session.RevocationStore = session.NewMemoryRevocationStore()
	if rdb != nil {
		defer rdb.Close()
		catalogStore = cache.NewCatalogCache(st, rdb, cfg.Redis.CatalogTTL, lg)
		revoked = session.NewRedisRevocationStore(rdb)
	}

	publisher, closePublisher := openPublisher(cfg.MQ, lg)
	defer closePublisher()

	catalogService := services.NewCatalogService(catalogStore, lg)
	if cfg.Storage.Seed {
		if err := catalogService.SeedDefaults(startCtx); err != nil {
			return err
		}
		lg.Info("Catalog seeded")
	}

	sessions := session.NewManager(cfg.JWT.Secret, cfg.JWT.TTL, cfg.JWT.Issuer, revoked)
	tracker := progress.NewTracker(progress.SystemClock)
	progressService := services.NewProgressService(st, catalogStore, tracker, publisher, lg)
	userService := services.NewUserService(st, sessions, lg)

	middleware.InitPrometheus(prometheus.DefaultRegisterer)
	limiter := middleware.NewRateLimiter(cfg.RateLimit.RPS, cfg.RateLimit.Burst)
	go limiter.Cleanup(ctx)

	r := mux.NewRouter()
	r.Use(middleware.MonitorMiddleware(lg))
	r.Handle("/metrics", middleware.BasicAuthMiddleware(cfg.Metrics.User, cfg.Metrics.Password)(promhttp.Handler())).Methods(http.MethodGet)
	r.HandleFunc("/health", healthHandler(st, rdb)).Methods(http.MethodGet)

	api := r.NewRoute().Subrouter()
	api.Use(limiter.Middleware)
	handlers.RegisterRoutes(api, handlers.Handlers{
		Catalog:  handlers.NewCatalogHandler(catalogService, cfg.Server.RequestTimeout),
		Progress: handlers.NewProgressHandler(progressService, cfg.Server.RequestTimeout),
		User:     handlers.NewUserHandler(userService, cfg.Server.RequestTimeout),
	}, middleware.SessionAuth(sessions))

	corsHandler := gorillaHandlers.CORS(
		gorillaHandlers.AllowedOrigins(cfg.CORS.AllowedOrigins),
		gorillaHandlers.AllowedMethods([]string{"GET", "POST", "DELETE", "OPTIONS"}),
		gorillaHandlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
		gorillaHandlers.ExposedHeaders([]string{"Content-Length"}),
		gorillaHandlers.AllowCredentials(),
	)

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      corsHandler(r),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		lg.Info("Starting server", zap.String("addr", server.Addr), zap.String("storage", cfg.Storage.Driver))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
	case <-ctx.Done():
		lg.Info("Shutdown signal received")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		lg.Error("Server shutdown error", zap.Error(err))
	}
	lg.Info("Server shutdown complete")
	return nil
}

func healthHandler(st store.Store, rdb *redis.Client) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		status := map[string]string{"status": "ok", "database": "ok"}
		code := http.StatusOK
		if err := st.Ping(ctx); err != nil {
			status["database"] = "unreachable"
			status["status"] = "degraded"
			code = http.StatusServiceUnavailable
		}
		if rdb != nil {
			status["redis"] = "ok"
			if err := rdb.Ping(ctx).Err(); err != nil {
				status["redis"] = "unreachable"
				status["status"] = "degraded"
				code = http.StatusServiceUnavailable
			}
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(status)
	}
}
