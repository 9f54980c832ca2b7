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

	"github.com/TicketsBot-cloud/common/observability"
	"github.com/TicketsBot/revenuecat-sync/internal/config"
	"github.com/TicketsBot/revenuecat-sync/internal/daemon"
	"github.com/TicketsBot/revenuecat-sync/internal/database"
	"github.com/TicketsBot/revenuecat-sync/internal/webhook"
	"github.com/TicketsBot/revenuecat-sync/pkg/revenuecat"
	"github.com/getsentry/sentry-go"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	config, err := config.LoadFromEnv()
	if err != nil {
		panic(err)
	}

	if len(config.SentryDsn) > 0 {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn: config.SentryDsn,
		}); err != nil {
			panic(fmt.Errorf("sentry.Init: %w", err))
		}

		defer sentry.Flush(2 * time.Second)
	}

	logger, err := buildLogger(config)
	if err != nil {
		panic(fmt.Errorf("failed to initialise zap logger: %w", err))
	}

	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info("Connecting to database...")
	db, err := connectDatabase(ctx, config, logger)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
		return
	}

	logger.Info("Database connected.")

	client, err := newRevenueCatClient(config, logger)
	if err != nil {
		logger.Fatal("Failed to build RevenueCat client", zap.Error(err))
		return
	}

	d := daemon.NewDaemon(config, db, logger, client)

	if !config.Daemon {
		ctx, cancel := context.WithTimeout(ctx, config.ExecutionTimeout)
		defer cancel()

		if err := d.RunOnce(ctx); err != nil {
			panic(err)
		}

		return
	}

	services := []service{
		{name: "daemon", run: d.Start},
	}

	if config.Webhook.Enabled {
		server := webhook.NewServer(logger, d, config.Webhook.Authorization)
		services = append(services, service{
			name: "webhook server",
			run: func(ctx context.Context) error {
				return server.ListenAndServe(ctx, config.Webhook.ListenAddr)
			},
		})
	}

	if err := runServices(ctx, logger, services...); err != nil {
		panic(err)
	}
}

type service struct {
	name string
	run  func(ctx context.Context) error
}

// runServices runs every service until ctx ends. The first service to return stops the
// others, and its error is returned.
func runServices(ctx context.Context, logger *zap.Logger, services ...service) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errs := make(chan error, len(services))
	for _, s := range services {
		go func(s service) {
			err := s.run(ctx)
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("Service failed, shutting down", zap.String("service", s.name), zap.Error(err))
				err = fmt.Errorf("%s: %w", s.name, err)
			} else {
				err = nil
			}

			cancel()
			errs <- err
		}(s)
	}

	var firstErr error
	for range services {
		if err := <-errs; err != nil && firstErr == nil {
			firstErr = err
		}
	}

	return firstErr
}

func buildLogger(config config.Config) (*zap.Logger, error) {
	if config.JsonLogs {
		loggerConfig := zap.NewProductionConfig()
		loggerConfig.Level.SetLevel(config.LogLevel)

		return loggerConfig.Build(
			zap.AddCaller(),
			zap.AddStacktrace(zap.ErrorLevel),
			zap.WrapCore(observability.ZapSentryAdapter(observability.EnvironmentProduction)),
		)
	}

	loggerConfig := zap.NewDevelopmentConfig()
	loggerConfig.Level.SetLevel(config.LogLevel)
	loggerConfig.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder

	return loggerConfig.Build(zap.AddCaller(), zap.AddStacktrace(zap.ErrorLevel))
}

func connectDatabase(ctx context.Context, config config.Config, logger *zap.Logger) (*database.Database, error) {
	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	pool, err := database.Connect(ctx, config.DatabaseUri)
	if err != nil {
		return nil, err
	}

	if err := database.Migrate(ctx, pool, logger); err != nil {
		pool.Close()
		return nil, err
	}

	return database.NewDatabase(pool), nil
}

func newRevenueCatClient(config config.Config, logger *zap.Logger) (*revenuecat.Client, error) {
	rc := config.RevenueCat

	return revenuecat.NewClient(revenuecat.Config{
		ApiKey:    rc.ApiKey,
		ProjectId: rc.ProjectId,
		BaseUrl:   rc.BaseUrl.String(),
		Platform:  rc.Platform,
		Timeout:   rc.Timeout,
	},
		revenuecat.WithLogger(logger),
		revenuecat.WithRateLimit(rc.RateLimitPerMinute, 10),
		revenuecat.WithRetries(rc.MaxRetries, 500*time.Millisecond, 10*time.Second),
		revenuecat.WithCircuitBreaker(rc.BreakerFailures, rc.BreakerTimeout),
		revenuecat.WithCatalogCache(rc.CatalogCacheSize, rc.CatalogCacheTtl),
	)
}
