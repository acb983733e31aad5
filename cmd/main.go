// cmd/main.go is the application entry point.
// It wires together all layers and starts the HTTP server.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/Shivanand-hulikatti/cinebook/internal/auth"
	"github.com/Shivanand-hulikatti/cinebook/internal/cache"
	"github.com/Shivanand-hulikatti/cinebook/internal/clock"
	"github.com/Shivanand-hulikatti/cinebook/internal/config"
	"github.com/Shivanand-hulikatti/cinebook/internal/database"
	"github.com/Shivanand-hulikatti/cinebook/internal/handler"
	"github.com/Shivanand-hulikatti/cinebook/internal/logger"
	"github.com/Shivanand-hulikatti/cinebook/internal/messaging"
	"github.com/Shivanand-hulikatti/cinebook/internal/repository"
	"github.com/Shivanand-hulikatti/cinebook/internal/service"
	"github.com/Shivanand-hulikatti/cinebook/internal/telemetry"
	"github.com/spf13/pflag"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func main() {
	envFile := pflag.String("env-file", ".env", "dotenv file to load before reading the environment")
	migrateOnly := pflag.Bool("migrate-only", false, "apply database migrations and exit")
	pflag.Parse()

	if err := run(*envFile, *migrateOnly); err != nil {
		fmt.Fprintf(os.Stderr, "cinebook: %v\n", err)
		os.Exit(1)
	}
}

func run(envFile string, migrateOnly bool) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── 1. Configuration and logging ─────────────────────────────────────
	cfg, err := config.Load(envFile)
	if err != nil {
		return err
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.App.LogLevel,
		ServiceName: cfg.App.Name,
		Development: cfg.IsDevelopment(),
	})
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	shutdownTracing, err := telemetry.Init(ctx, cfg.OTel, cfg.App.Environment)
	if err != nil {
		return err
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := shutdownTracing(ctx); err != nil {
			log.Warn("tracer shutdown failed", zap.Error(err))
		}
	}()

	// ── 2. Connect to PostgreSQL and migrate ─────────────────────────────
	pool, err := database.NewPool(ctx, cfg.Database, log, database.Options{Tracing: cfg.OTel.Enabled})
	if err != nil {
		return fmt.Errorf("database: %w", err)
	}
	defer pool.Close()
	log.Info("connected to PostgreSQL", zap.String("host", cfg.Database.Host), zap.String("db", cfg.Database.DBName))

	if err := database.Migrate(ctx, pool); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	if migrateOnly {
		log.Info("migrations applied")
		return nil
	}

	// ── 3. Optional Redis cache and RabbitMQ notifications ───────────────
	var bookingOpts []service.BookingOption
	var availabilityCache service.AvailabilityCache

	if cfg.Redis.Enabled() {
		rdb, err := cache.NewClient(ctx, cfg.Redis)
		if err != nil {
			return fmt.Errorf("redis: %w", err)
		}
		defer rdb.Close()
		availabilityCache = cache.NewAvailabilityCache(rdb, cfg.Redis.AvailabilityTTL)
		bookingOpts = append(bookingOpts, service.WithAvailabilityCache(availabilityCache))
		log.Info("availability cache enabled", zap.String("addr", cfg.Redis.Addr))
	}

	if cfg.RabbitMQ.Enabled() {
		publisher, err := messaging.NewPublisher(cfg.RabbitMQ.URL, cfg.RabbitMQ.Exchange, log)
		if err != nil {
			return fmt.Errorf("rabbitmq: %w", err)
		}
		defer publisher.Close()
		bookingOpts = append(bookingOpts, service.WithNotifier(publisher))
		log.Info("booking notifications enabled", zap.String("exchange", cfg.RabbitMQ.Exchange))
	}

	// ── 4. Wire up layers ────────────────────────────────────────────────
	clk := clock.NewSystem()
	tokens := auth.NewTokenManager(cfg.JWT.Secret, cfg.JWT.TokenTTL, cfg.JWT.Issuer, clk)

	events := repository.NewEventRepository(pool)
	bookings := repository.NewBookingRepository(pool)
	ledger := service.NewBookingService(
		repository.NewTransactor(pool),
		events,
		bookings,
		log,
		bookingOpts...,
	)
	eventSvc := service.NewEventService(events, ledger, availabilityCache, clk, log)
	userSvc := service.NewUserService(repository.NewUserRepository(pool), bookings, availabilityCache, tokens, clk, 0, log)

	router := handler.NewRouter(handler.RouterConfig{
		Ledger:         ledger,
		Events:         eventSvc,
		Accounts:       userSvc,
		Tokens:         tokens,
		Log:            log.Named("http"),
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		Tracing:        cfg.OTel.Enabled,
	})

	// ── 5. Start server with graceful shutdown ───────────────────────────
	srv := &http.Server{
		Addr:         cfg.Server.Addr(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info("server stopped")
	return nil
}
