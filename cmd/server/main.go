package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/scolombo/beautydesk/internal/api"
	"github.com/scolombo/beautydesk/internal/channel"
	"github.com/scolombo/beautydesk/internal/config"
	"github.com/scolombo/beautydesk/internal/history"
	"github.com/scolombo/beautydesk/internal/metrics"
	"github.com/scolombo/beautydesk/internal/notify"
	"github.com/scolombo/beautydesk/internal/observ"
	"github.com/scolombo/beautydesk/internal/redis"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger, err := observ.NewLogger(cfg.Env, cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("starting beautydesk notification service",
		zap.String("env", cfg.Env),
		zap.Int("port", cfg.Port),
	)

	ctx := context.Background()

	// Redis backs preference persistence, dedup, and rate limiting.
	// Without it the engine still runs: defaults in memory, no dedup,
	// no rate limits.
	redisClient, err := redis.New(ctx, redis.Config{
		Host:     cfg.RedisHost,
		Port:     cfg.RedisPort,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	}, logger)
	if err != nil {
		logger.Warn("redis unavailable, preferences will not persist",
			zap.Error(err),
			zap.String("host", cfg.RedisHost),
		)
		redisClient = nil
	}

	var prefsPersister notify.PrefsPersister
	var deduper notify.Deduper
	var rateLimiter *redis.RateLimiter
	if redisClient != nil {
		prefsPersister = redis.NewPreferenceStore(redisClient, logger)
		deduper = redis.NewDeduper(redisClient, cfg.DedupWindow, logger)
		rateLimiter = redis.NewRateLimiter(redisClient, logger, redis.RateLimitConfig{
			Limit:  cfg.RateLimit,
			Window: cfg.RateLimitWindow,
		})
		defer redisClient.Close()
	}

	prefs := notify.NewPrefStore(ctx, prefsPersister, logger)

	// Toast channel: SSE hub for connected dashboard sessions. Hub
	// presence doubles as the foreground check gating push.
	hub := channel.NewToastHub(16, logger)

	// Push channel: AWS SNS behind a circuit breaker, optional.
	var pusher channel.Pusher
	var breaker *channel.Breaker
	if cfg.PushEnabled() {
		snsPusher, err := channel.NewSNSPusher(ctx, channel.SNSConfig{
			Region:    cfg.AWSRegion,
			TargetARN: cfg.SNSTargetARN,
		}, logger)
		if err != nil {
			logger.Warn("SNS pusher unavailable, push channel disabled", zap.Error(err))
		} else {
			breaker = channel.NewBreaker(channel.BreakerConfig{}, logger)
			pusher = channel.NewProtectedPusher(snsPusher, breaker, logger)
		}
	} else {
		logger.Info("push channel disabled, no SNS target configured")
	}

	engine := notify.NewEngine(notify.Config{
		TickInterval:  cfg.TickInterval,
		SweepInterval: cfg.SweepInterval,
		StaleAfter:    cfg.StaleAfter,
	}, prefs, notify.Channels{
		Toast:      hub,
		Push:       pusher,
		Sound:      channel.NewLogPlayer(logger),
		Foreground: hub.Watching,
	}, logger)

	if deduper != nil {
		engine.SetDeduper(deduper)
	}

	// Delivery history, optional.
	var journal *history.Journal
	if cfg.HistoryEnabled() {
		db, err := history.New(ctx, history.Config{
			Host:     cfg.DBHost,
			Port:     cfg.DBPort,
			User:     cfg.DBUser,
			Password: cfg.DBPassword,
			Database: cfg.DBName,
			SSLMode:  cfg.DBSSLMode,
		}, logger)
		if err != nil {
			logger.Warn("database unavailable, delivery history disabled", zap.Error(err))
		} else {
			defer db.Close()
			journal = history.NewJournal(db, logger)
			engine.SetRecorder(journal)
		}
	} else {
		logger.Info("delivery history disabled, no database configured")
	}

	engineCtx, engineCancel := context.WithCancel(context.Background())
	defer engineCancel()
	go engine.Start(engineCtx)

	// Router
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(metrics.Middleware)

	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			logger.Info("request completed",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("duration_ms", time.Since(start)),
				zap.String("request_id", middleware.GetReqID(r.Context())),
			)
		})
	})

	handler := api.NewHandler(logger, engine).WithToastHub(hub)
	if journal != nil {
		handler = handler.WithHistory(journal)
	}
	if breaker != nil {
		handler = handler.WithBreaker(breaker)
	}

	r.Route("/v1", func(r chi.Router) {
		r.With(api.RateLimitMiddleware(rateLimiter, logger, api.IPKeyFunc)).
			Post("/notifications", handler.CreateNotification)

		r.Get("/notifications/active", handler.ListActive)
		r.Delete("/notifications/{id}", handler.RemoveNotification)
		r.Get("/preferences", handler.GetPreferences)
		r.Patch("/preferences", handler.UpdatePreferences)
		r.Put("/sound", handler.SetSound)
		r.Get("/stats", handler.GetStats)
		r.Get("/history", handler.GetHistory)
		r.Get("/stream", handler.StreamToasts)
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	r.Handle("/metrics", metrics.Handler())

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		IdleTimeout:  60 * time.Second,
		// No WriteTimeout: /v1/stream holds the connection open.
	}

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("server listening", zap.String("addr", srv.Addr))
		serverErrors <- srv.ListenAndServe()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		logger.Info("shutdown signal received", zap.String("signal", sig.String()))

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := srv.Shutdown(ctx); err != nil {
			srv.Close()
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}

		logger.Info("server stopped gracefully")
	}

	return nil
}
