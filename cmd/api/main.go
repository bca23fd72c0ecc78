package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/soko-labs/storefront-backend/internal/config"
	"github.com/soko-labs/storefront-backend/internal/events"
	"github.com/soko-labs/storefront-backend/internal/httpx"
	"github.com/soko-labs/storefront-backend/internal/modules/auth"
	"github.com/soko-labs/storefront-backend/internal/modules/cart"
	"github.com/soko-labs/storefront-backend/internal/modules/catalog"
	"github.com/soko-labs/storefront-backend/internal/modules/media"
	"github.com/soko-labs/storefront-backend/internal/modules/order"
	"github.com/soko-labs/storefront-backend/internal/modules/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		bootLogger := zerolog.New(os.Stderr)
		bootLogger.Fatal().Err(err).Msg("invalid configuration")
	}

	level, err := zerolog.ParseLevel(strings.ToLower(cfg.LogLevel))
	if err != nil {
		level = zerolog.InfoLevel
	}
	logger := zerolog.New(os.Stderr).Level(level).With().Timestamp().Logger()

	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to open database")
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Fatal().Err(err).Msg("failed to reach database")
	}

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	defer redisClient.Close()
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		logger.Fatal().Err(err).Msg("failed to reach redis")
	}

	bus := events.NewRedisBus(redisClient, logger)
	metrics := httpx.NewMetrics()

	// ── Router ──────────────────────────────────────────────
	router := chi.NewRouter()
	router.Use(chimw.RequestID)
	router.Use(chimw.RealIP)
	router.Use(chimw.Recoverer)
	router.Use(httpx.RequestLogger(logger))
	router.Use(metrics.Middleware)

	// ── Identity ────────────────────────────────────────────
	authRepo := auth.NewPostgresRepository(db)
	authService := auth.NewService(authRepo, cfg.JWTSecret, cfg.TokenTTL)
	auth.NewHandler(authService).RegisterRoutes(router)

	// ── Stores ──────────────────────────────────────────────
	storeRepo := store.NewPostgresRepository(db)
	storeService := store.NewService(storeRepo, logger)
	store.NewHandler(storeService, cfg.JWTSecret).RegisterRoutes(router)

	// ── Catalog ─────────────────────────────────────────────
	catalogRepo := catalog.NewPostgresRepository(db)
	catalogService := catalog.NewService(catalogRepo, bus, logger)
	catalog.NewHandler(catalogService, cfg.JWTSecret).RegisterRoutes(router)

	// ── Cart & wishlist ─────────────────────────────────────
	cartRepo := cart.NewRedisRepository(redisClient)
	cartService := cart.NewService(cartRepo, catalogRepo, bus, logger)
	cart.NewHandler(cartService).RegisterRoutes(router)

	// ── Orders ──────────────────────────────────────────────
	orderRepo := order.NewPostgresRepository(db)
	orderService := order.NewService(orderRepo, catalogRepo, logger)
	order.NewHandler(orderService, cfg.JWTSecret).RegisterRoutes(router)

	// ── Media ───────────────────────────────────────────────
	uploader := media.NewHTTPUploader(media.Options{
		BaseURL:     cfg.MediaBaseURL,
		APIKey:      cfg.MediaAPIKey,
		MaxAttempts: cfg.MediaMaxAttempts,
		RetryDelay:  cfg.MediaRetryDelay,
	}, logger)
	media.NewHandler(uploader, cfg.JWTSecret).RegisterRoutes(router)

	// ── Operational endpoints ───────────────────────────────
	router.Handle("/metrics", promhttp.Handler())
	router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			httpx.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "database unreachable"})
			return
		}
		if err := redisClient.Ping(ctx).Err(); err != nil {
			httpx.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "redis unreachable"})
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", cfg.Addr).Msg("storefront api listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info().Msg("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}
}
