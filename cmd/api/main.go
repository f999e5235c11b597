package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dafibh/spendwise/spendwise-backend/internal/backend"
	"github.com/dafibh/spendwise/spendwise-backend/internal/config"
	"github.com/dafibh/spendwise/spendwise-backend/internal/domain"
	"github.com/dafibh/spendwise/spendwise-backend/internal/handler"
	"github.com/dafibh/spendwise/spendwise-backend/internal/middleware"
	"github.com/dafibh/spendwise/spendwise-backend/internal/notify"
	"github.com/dafibh/spendwise/spendwise-backend/internal/repository/storage"
	"github.com/dafibh/spendwise/spendwise-backend/internal/service"
	"github.com/dafibh/spendwise/spendwise-backend/internal/websocket"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Initialize zerolog
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if os.Getenv("ENV") != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg); err != nil {
		log.Fatal().Err(err).Msg("Server failed")
	}
	log.Info().Msg("Server exited")
}

func run(ctx context.Context, cfg *config.Config) error {
	// Durable local storage
	store, err := storage.Open(ctx, cfg)
	if err != nil {
		return err
	}
	defer store.Cleanup()

	// Data backend
	dataBackend, err := backend.New(ctx, backend.Config{
		Type:           backend.BackendType(cfg.DataBackend),
		RemoteURL:      cfg.RemoteAPIURL,
		Timeout:        cfg.RemoteTimeout,
		SeedSampleData: cfg.SeedSampleData,
	}, store.Store)
	if err != nil {
		return err
	}

	// WebSocket hub
	hub := websocket.NewHub()

	// Notification sinks
	sinks := []domain.NotificationSink{notify.NewLogSink(), notify.NewHubSink(hub)}
	if cfg.AMQPURL != "" {
		amqpSink, err := notify.NewAMQPSink(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			// Notifications still reach the log and WebSocket clients
			log.Warn().Err(err).Msg("AMQP unavailable, broker notifications disabled")
		} else {
			defer amqpSink.Close()
			sinks = append(sinks, amqpSink)
			log.Info().Str("exchange", cfg.AMQPExchange).Str("queue", cfg.AMQPQueue).Msg("Connected to AMQP")
		}
	}

	// Session tracker
	tracker := service.NewTracker(service.TrackerDeps{
		Backend:          dataBackend,
		Storage:          store.Store,
		Notifier:         service.NewNotificationService(time.Now, sinks...),
		DefaultBudget:    cfg.DefaultBudget,
		StrictCategories: cfg.StrictCategories(),
		AlertDedupe:      cfg.AlertDedupe,
		Clock:            time.Now,
	})
	tracker.SetEventPublisher(hub)
	if err := tracker.Start(ctx); err != nil {
		return err
	}

	// Background refresh against the data backend
	if cfg.SyncInterval > 0 {
		worker := service.NewSyncWorker(tracker, log.Logger, cfg.SyncInterval)
		worker.Start(ctx)
		defer worker.Stop()
	}

	// Middleware
	sessionAuth := middleware.NewSessionAuthMiddleware(tracker)
	rateLimiter := middleware.NewRateLimiterWithConfig(cfg.RateLimitPerMinute, cfg.RateLimitBurst)
	defer rateLimiter.Stop()

	e := newServer(cfg, rateLimiter)
	handler.RegisterRoutes(e, sessionAuth, handler.Handlers{
		Auth:         handler.NewAuthHandler(tracker, hub),
		Expense:      handler.NewExpenseHandler(tracker),
		Budget:       handler.NewBudgetHandler(tracker),
		Dashboard:    handler.NewDashboardHandler(tracker),
		Notification: handler.NewNotificationHandler(tracker),
		WebSocket:    handler.NewWebSocketHandler(hub, tracker, cfg.CORSOrigins),
	})

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info().
			Str("port", cfg.Port).
			Str("backend", cfg.DataBackend).
			Str("storage", cfg.StorageDriver).
			Msg("Starting server")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("Shutting down server...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return e.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func newServer(cfg *config.Config, rateLimiter *middleware.RateLimiter) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(echomiddleware.RequestID())

	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Security headers (helmet-like)
	e.Use(echomiddleware.SecureWithConfig(echomiddleware.SecureConfig{
		XSSProtection:         "1; mode=block",
		ContentTypeNosniff:    "nosniff",
		XFrameOptions:         "DENY",
		HSTSMaxAge:            31536000,
		ContentSecurityPolicy: "default-src 'self'",
		ReferrerPolicy:        "strict-origin-when-cross-origin",
	}))

	e.Use(middleware.RequestLogger())
	e.Use(echomiddleware.Recover())
	e.Use(middleware.RateLimitMiddleware(rateLimiter))

	return e
}
