// @title tBTC Market Service API
// @version 1.0.0
// @description HTTP proxy that runs the tBTC market script and returns its JSON output.
// @license.name MIT
// @license.url https://opensource.org/licenses/MIT
// @host localhost:8000
// @BasePath /
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"tbtc-market-service/internal/application/services"
	"tbtc-market-service/internal/domain/interfaces"
	"tbtc-market-service/internal/infrastructure/config"
	"tbtc-market-service/internal/infrastructure/logging"
	"tbtc-market-service/internal/infrastructure/metrics"
	"tbtc-market-service/internal/infrastructure/ratelimit"
	"tbtc-market-service/internal/infrastructure/repositories/cache"
	"tbtc-market-service/internal/infrastructure/upstream"
	"tbtc-market-service/internal/infrastructure/web/handlers"
	"tbtc-market-service/internal/infrastructure/web/middleware"
	"tbtc-market-service/internal/infrastructure/web/server"
)

const serviceName = "tbtc-market-service"

// Set at build time with -ldflags "-X main.version=... -X main.buildTime=..."
var (
	version   = "1.0.0"
	buildTime = "unknown"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", serviceName, err)
		os.Exit(1)
	}
}

func run() error {
	environment := config.GetEnvironment()

	cfg, err := loadConfig(environment)
	if err != nil {
		return err
	}

	loggerConfig := logging.NewConfig(serviceName, version, environment).
		WithLevel(logging.LogLevelFromString(cfg.Logging.Level)).
		WithFormat(logging.LogFormatFromString(cfg.Logging.Format)).
		WithSource(cfg.Logging.AddSource)
	if err := logging.InitializeGlobalLoggers(loggerConfig); err != nil {
		return err
	}
	loggers := logging.GetGlobalLoggers()

	ctx := logging.WithRequestID(context.Background(), logging.GenerateShortRequestID())
	logging.Info(ctx, "Starting tBTC market service", logging.Fields{
		"environment":      environment,
		"upstream_command": cfg.Upstream.Command,
		"upstream_args":    cfg.Upstream.Args,
		"upstream_timeout": cfg.Upstream.Timeout.String(),
		"cache_enabled":    cfg.Cache.Enabled,
		"cache_backend":    cfg.Cache.Backend,
	})

	metrics.SetApplicationInfo(version, buildTime, runtime.Version())

	// Snapshot store
	store, backend := createSnapshotStore(ctx, cfg, loggers.Cache)
	if backend != nil {
		defer func() {
			if err := backend.Close(); err != nil {
				logging.WarnWithError(ctx, "Failed to close cache backend", err, nil)
			}
		}()
	}

	// Upstream process
	runner := upstream.NewExecRunner(cfg.Upstream, loggers.Upstream)
	if err := runner.LookPath(); err != nil {
		// Not fatal: /tbtc reports it as a process failure and /ready as unhealthy
		logging.WarnWithError(ctx, "Upstream executable not resolvable", err, logging.Fields{
			logging.FieldUpstreamCommand: runner.CommandLine(),
		})
	}

	marketService := services.NewMarketService(runner, store, cfg.Upstream.Label, loggers.Upstream)

	router := server.NewRouter(server.RouterDeps{
		Market:    handlers.NewMarketHandler(marketService, loggers.HTTP),
		Stream:    handlers.NewMarketStream(marketService, loggers.HTTP),
		Health:    handlers.NewHealthHandler(runner, store),
		Logging:   middleware.NewLoggingMiddleware(loggers.HTTP, loggers.Security),
		RateLimit: ratelimit.NewRateLimitMiddleware(cfg.RateLimit, loggers.Security),
		Auth:      middleware.NewAuthMiddleware(cfg.Auth, loggers.Security),
	})

	srv := server.NewServer(router, cfg.Server)

	serverErr := make(chan error, 1)
	go func() {
		serverErr <- srv.Start()
	}()

	stopUptime := startUptimeTicker()
	defer stopUptime()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case sig := <-quit:
		logging.Info(ctx, "Shutdown signal received", logging.Fields{"signal": sig.String()})
	}

	// In-flight /tbtc requests may still be waiting on their process
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}

	logging.Info(ctx, "Server shutdown completed", nil)
	return nil
}

// loadConfig reads CONFIG_FILE when set, otherwise the default search paths
func loadConfig(environment string) (*config.Config, error) {
	loader := config.NewLoader()

	var (
		cfg *config.Config
		err error
	)
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		cfg, err = loader.LoadFile(path)
	} else {
		cfg, err = loader.LoadForEnvironment(environment)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := config.NewValidator().Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// createSnapshotStore builds the snapshot store. An unreachable Redis does not
// stop the service; /api/v1/tbtc/last then answers 404.
func createSnapshotStore(ctx context.Context, cfg *config.Config, logger logging.CacheLogger) (interfaces.SnapshotStore, interfaces.Cache) {
	store, backend, err := cache.NewFactory(logger).CreateSnapshotStore(ctx, cfg.Cache)
	if err != nil {
		logging.ErrorWithError(ctx, "Snapshot store unavailable, continuing without it", err, logging.Fields{
			"cache_backend": cfg.Cache.Backend,
		})
		return nil, nil
	}

	if store == nil {
		return nil, nil
	}

	logging.Info(ctx, "Snapshot store initialized", logging.Fields{
		"cache_backend": cfg.Cache.Backend,
		"cache_ttl":     cfg.Cache.TTL.String(),
	})
	return store, backend
}

// startUptimeTicker refreshes the uptime gauge until the returned func is called
func startUptimeTicker() func() {
	started := time.Now()
	ticker := time.NewTicker(15 * time.Second)
	done := make(chan struct{})

	go func() {
		for {
			select {
			case <-ticker.C:
				metrics.UpdateUptime(time.Since(started).Seconds())
			case <-done:
				ticker.Stop()
				return
			}
		}
	}()

	return func() { close(done) }
}
