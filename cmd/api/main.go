package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"ticker-cache-service/internal/application/normalizer"
	"ticker-cache-service/internal/application/services"
	"ticker-cache-service/internal/domain/interfaces"
	"ticker-cache-service/internal/infrastructure/config"
	"ticker-cache-service/internal/infrastructure/exchange"
	"ticker-cache-service/internal/infrastructure/exchange/nomics"
	"ticker-cache-service/internal/infrastructure/logging"
	"ticker-cache-service/internal/infrastructure/metrics"
	"ticker-cache-service/internal/infrastructure/repositories/cache"
	"ticker-cache-service/internal/infrastructure/web/handlers"
	"ticker-cache-service/internal/infrastructure/web/server"
	"ticker-cache-service/internal/infrastructure/web/stream"
)

const (
	serviceName = "ticker-cache-service"
	version     = "1.0.0"
)

// @title Ticker Cache Service API
// @version 1.0
// @description Serves the last good crypto ticker snapshot fetched from a Nomics-style API at most once per throttle interval.
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name X-API-Key
func main() {
	configPath := flag.String("config", "", "path to a config.yaml (default: search ./configs, ., /etc/ticker-cache)")
	flag.Parse()

	if err := run(*configPath); err != nil {
		logging.ErrorWithError(context.Background(), "Service stopped with error", err, nil)
		os.Exit(1)
	}
}

func run(configPath string) error {
	// .env es opcional; las variables ya exportadas tienen prioridad
	_ = godotenv.Load()

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	if err := initLogging(cfg); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics.SetApplicationInfo(version, runtime.Version())

	shape, err := normalizer.ShapeByName(cfg.Upstream.Shape)
	if err != nil {
		return err
	}

	var source interfaces.TickerSource
	if cfg.Upstream.Mock {
		logging.Warn(ctx, "Mock mode enabled, serving synthetic tickers", nil)
		source = exchange.NewMockSource()
	} else {
		source = nomics.NewRestClient(nomics.Config{
			BaseURL:    cfg.Upstream.BaseURL,
			APIKey:     cfg.Upstream.APIKey,
			Timeout:    cfg.Upstream.Timeout,
			MaxRetries: uint(cfg.Upstream.MaxRetries),
			UserAgent:  serviceName + "/" + version,
		})
	}

	backend, err := cache.NewFactory().CreateCache(ctx, cache.Config{
		Type:        cache.CacheType(cfg.Mirror.Backend),
		RedisAddr:   cfg.Mirror.Redis.Addr,
		RedisDB:     cfg.Mirror.Redis.DB,
		Password:    cfg.Mirror.Redis.Password,
		PingTimeout: 5 * time.Second,
	})
	if err != nil {
		return err
	}

	currency := shape.Fold.Canonicalize(cfg.Tracker.Currency)
	hub := stream.NewHub(currency)
	defer hub.Close()

	opts := []services.CacheOption{services.WithSnapshotListener(hub)}
	checks := map[string]handlers.DependencyCheck{}
	if backend != nil {
		mirror := cache.NewSnapshotMirror(backend, cfg.Mirror.TTL, cfg.Mirror.KeyPrefix, currency)
		opts = append(opts, services.WithSnapshotListener(mirror))
		if p, ok := backend.(interface{ Ping(context.Context) error }); ok {
			checks["mirror"] = p.Ping
		}
		if c, ok := backend.(interface{ Close() error }); ok {
			defer func() { _ = c.Close() }()
		}
	}

	tickerCache, err := services.NewThrottledCache(source, normalizer.New(shape),
		cfg.Tracker.IDs, cfg.Tracker.Currency, cfg.Tracker.ThrottleInterval, opts...)
	if err != nil {
		return err
	}

	// Primer fetch antes de abrir el puerto; un fallo solo deja el cache vacío
	if outcome, err := tickerCache.Refresh(ctx); err != nil {
		logging.WarnWithError(ctx, "Initial refresh failed, serving empty cache until the next attempt", err, logging.Fields{
			logging.FieldOutcome: string(outcome),
		})
	}

	policy := services.AvailabilityPolicy{StaleAfter: cfg.Tracker.StaleAfter}
	poller := services.NewPoller(tickerCache, cfg.Tracker.PollInterval, policy)

	router := server.NewRouter(server.Routes{
		Assets:    handlers.NewAssetHandler(tickerCache, policy),
		Health:    handlers.NewHealthHandler(tickerCache, policy, checks),
		Stream:    hub,
		Auth:      cfg.Auth,
		RateLimit: cfg.RateLimit,
	})
	srv := server.NewServer(router, cfg.Server.Port)

	errCh := make(chan error, 2)
	go func() { errCh <- poller.Run(ctx) }()
	go func() { errCh <- srv.Start() }()

	logging.Info(ctx, "Ticker cache service is running", logging.Fields{
		logging.FieldAssetIDs: tickerCache.TrackedIDs(),
		logging.FieldCurrency: tickerCache.Currency(),
		"shape":               shape.Name,
		"throttle":            cfg.Tracker.ThrottleInterval.String(),
		"poll_interval":       cfg.Tracker.PollInterval.String(),
		"mirror":              cfg.Mirror.Backend,
		"port":                srv.GetPort(),
	})

	var runErr error
	select {
	case <-ctx.Done():
		logging.Info(context.Background(), "Shutdown signal received", nil)
	case runErr = <-errCh:
		stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	hub.Close()
	if err := srv.Stop(shutdownCtx); err != nil {
		runErr = errors.Join(runErr, err)
	}

	logging.Info(shutdownCtx, "Server shutdown completed", nil)
	return runErr
}

func loadConfig(path string) (*config.Config, error) {
	loader := config.NewLoader()

	var (
		cfg *config.Config
		err error
	)
	if path != "" {
		cfg, err = loader.LoadFile(path)
	} else {
		cfg, err = loader.Load()
	}
	if err != nil {
		return nil, err
	}

	if err := config.NewValidator().Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func logOutput(name string) io.Writer {
	if strings.EqualFold(name, "stderr") {
		return os.Stderr
	}
	return os.Stdout
}

func initLogging(cfg *config.Config) error {
	logCfg := logging.NewConfig(serviceName, version, config.GetEnvironment()).
		WithLevel(logging.LogLevelFromString(cfg.Logging.Level)).
		WithFormat(logging.LogFormatFromString(cfg.Logging.Format)).
		WithSource(logging.LogLevelFromString(cfg.Logging.Level) == logging.LevelDebug).
		WithOutput(logOutput(cfg.Logging.Output))
	return logging.InitializeGlobalLoggers(logCfg)
}
