package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/haythamforever/HonorHub/internal/catalog"
	"github.com/haythamforever/HonorHub/internal/certificates"
	"github.com/haythamforever/HonorHub/internal/config"
	"github.com/haythamforever/HonorHub/internal/db"
	"github.com/haythamforever/HonorHub/internal/email"
	"github.com/haythamforever/HonorHub/internal/logger"
	"github.com/haythamforever/HonorHub/internal/metrics"
	rl "github.com/haythamforever/HonorHub/internal/platform/ratelimit"
	"github.com/haythamforever/HonorHub/internal/platform/validation"
	"github.com/haythamforever/HonorHub/internal/settings"
	"github.com/haythamforever/HonorHub/internal/version"
)

// @title           HonorHub API
// @version         1.0
// @description     Employee recognition certificates: rendering, delivery and administration.
// @BasePath        /
// @schemes         http
// @securityDefinitions.apikey BearerAuth
// @in              header
// @name            Authorization

func main() {
	_ = godotenv.Load()

	if handleCLICommand(os.Args[1:]) {
		return
	}

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logger.New(cfg.AppEnv, cfg.LogLevel)
	log.Info().Str("version", version.String()).Stringer("config", cfg).Msg("starting api server")

	startCtx, cancelStart := context.WithTimeout(context.Background(), 10*time.Second)
	pgPool, err := db.Open(startCtx, cfg.DatabaseURL)
	cancelStart()
	if err != nil {
		log.Fatal().Err(err).Msg("unable to connect to postgres")
	}
	defer pgPool.Close()

	redisClient := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
		DB:   cfg.RedisDB,
	})
	defer redisClient.Close()
	store := rateLimitStore(redisClient, log)

	if err := os.MkdirAll(cfg.CertificatesDir(), 0o755); err != nil {
		log.Fatal().Err(err).Str("dir", cfg.CertificatesDir()).Msg("unable to create certificates dir")
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(requestLogger(log))
	e.Use(middleware.Secure())
	e.Use(metrics.HTTPMiddleware())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOriginFunc: func(origin string) (bool, error) {
			return matchCORSOrigin(origin, cfg.CORSAllowedOrigins), nil
		},
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: true,
	}))

	e.Validator = validation.New()

	// Rendered PDFs and uploaded logos.
	e.Static(cfg.PublicPathPrefix, cfg.UploadsDir)

	dispatcher := email.NewDispatcher(pgPool, cfg, logger.Component(log, "email"))
	catalog.Register(e, pgPool, cfg)
	settings.Register(e, pgPool, cfg, store, log)
	email.Register(e, pgPool, cfg, dispatcher, store)
	certificates.Register(e, pgPool, cfg, dispatcher, store, log)

	e.GET("/healthz", func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 500*time.Millisecond)
		defer cancel()

		dbStatus := "ok"
		if err := db.Ping(ctx, pgPool); err != nil {
			dbStatus = "down"
		}

		cacheStatus := "ok"
		if err := pingRedis(ctx, redisClient); err != nil {
			cacheStatus = "down"
		}

		return c.JSON(http.StatusOK, map[string]any{
			"status":  "ok",
			"version": version.String(),
			"time":    time.Now().UTC().Format(time.RFC3339),
			"db":      dbStatus,
			"cache":   cacheStatus,
		})
	})
	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))

	go func() {
		if err := e.Start(cfg.AppAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("shutdown error")
	}
	log.Info().Msg("server stopped")
}

// rateLimitStore prefers Redis so limits hold across replicas and falls back
// to process memory when Redis is unreachable at startup.
func rateLimitStore(rc *redis.Client, log zerolog.Logger) rl.Store {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := pingRedis(ctx, rc); err != nil {
		log.Warn().Err(err).Msg("redis unavailable, using in-memory rate limits")
		return rl.NewMemoryStore()
	}
	return rl.NewRedisStore(rc)
}

func pingRedis(ctx context.Context, rc *redis.Client) error {
	start := time.Now()
	err := rc.Ping(ctx).Err()
	metrics.ObserveProbe(metrics.DependencyRedis, time.Since(start), err)
	return err
}

func requestLogger(log zerolog.Logger) echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:    true,
		LogURI:       true,
		LogStatus:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		HandleError:  true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			ev := log.Info()
			if v.Error != nil || v.Status >= http.StatusInternalServerError {
				ev = log.Error().Err(v.Error)
			}
			ev.Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("request")
			return nil
		},
	})
}
