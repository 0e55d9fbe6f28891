package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/kailas-cloud/segue/internal/config"
	dbRedis "github.com/kailas-cloud/segue/internal/db/redis"
	logpkg "github.com/kailas-cloud/segue/internal/logger"
	"github.com/kailas-cloud/segue/internal/metrics"
	"github.com/kailas-cloud/segue/internal/repository/artistcache"
	"github.com/kailas-cloud/segue/internal/repository/genres"
	chiTransport "github.com/kailas-cloud/segue/internal/transport/chi"
	"github.com/kailas-cloud/segue/internal/transport/lastfm"
	"github.com/kailas-cloud/segue/internal/transport/subsonic"
	"github.com/kailas-cloud/segue/internal/usecase/blend"
	"github.com/kailas-cloud/segue/internal/usecase/diversity"
	"github.com/kailas-cloud/segue/internal/usecase/gather"
	"github.com/kailas-cloud/segue/internal/version"
)

func main() {
	// Optional .env for local development
	_ = godotenv.Load()

	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting segue API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("redis_addrs", cfg.Redis.Addrs),
	)

	// Register recommendation metrics explicitly (no init())
	metrics.RegisterRecommendMetrics()

	// Artist cache store: Redis when configured, in-process otherwise
	var (
		cacheStore interface {
			Get(ctx context.Context, key string) ([]byte, error)
			SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
		}
		pinger chiTransport.Pinger
	)
	if len(cfg.Redis.Addrs) > 0 {
		store, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Redis.Addrs,
			Password: cfg.Redis.Password,
		})
		if err != nil {
			logger.Fatal("Failed to create redis store", zap.Error(err))
		}
		defer store.Close()

		ctx := context.Background()
		if err := store.WaitForReady(ctx, time.Duration(cfg.Redis.ReadinessTimeout)*time.Second); err != nil {
			logger.Fatal("Redis not ready", zap.Error(err))
		}
		logger.Info("Connected to redis")
		cacheStore = store
		pinger = store
	} else {
		logger.Info("No redis configured, using in-process artist cache")
		cacheStore = artistcache.NewMemoryStore()
	}

	// Composition root
	genreHierarchy := genres.New()

	catalogue := subsonic.New(subsonic.Config{
		BaseURL:    cfg.Subsonic.BaseURL,
		Username:   cfg.Subsonic.Username,
		Password:   cfg.Subsonic.Password,
		ClientName: cfg.Subsonic.ClientName,
		Timeout:    time.Duration(cfg.Subsonic.TimeoutSec) * time.Second,
	})

	// The catalogue doubles as the library resolver for external similarity hits
	similarity := lastfm.New(lastfm.Config{
		APIKey:  cfg.LastFM.APIKey,
		BaseURL: cfg.LastFM.BaseURL,
		Timeout: time.Duration(cfg.LastFM.TimeoutSec) * time.Second,
	}, catalogue)

	artistCache := artistcache.New(
		cacheStore,
		cfg.Redis.KeyPrefix,
		time.Duration(cfg.Redis.CacheTTLSec)*time.Second,
		metrics.ArtistCacheTotal,
		logger,
	)

	gatherSvc := gather.New(similarity, catalogue, genreHierarchy, artistCache, gather.Options{
		QueryDelay: time.Duration(cfg.Recommend.QueryDelayMs) * time.Millisecond,
	})
	gatherSvc.Start()
	defer gatherSvc.Stop()

	blendSvc := blend.New(gatherSvc, blend.NoopSignals{}, catalogue, genreHierarchy).
		WithDiversity(diversity.Options{
			MaxPerArtist:       cfg.Recommend.MaxPerArtist,
			MinDistinctArtists: cfg.Recommend.MinDistinctArtist,
		}).
		WithLookupTimeout(time.Duration(cfg.Recommend.LookupTimeoutSec) * time.Second)

	server := chiTransport.NewServer(blendSvc, pinger, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Routes(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"code":    "internal_error",
						"message": "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())

			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			// Per-request logger with request_id
			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line — one line per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
