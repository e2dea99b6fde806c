package app

import (
	"context"
	"fmt"

	"github.com/yungbote/recipebook-backend/internal/http"
	"github.com/yungbote/recipebook-backend/internal/observability"
	"github.com/yungbote/recipebook-backend/internal/platform/logger"
)

type App struct {
	Log      *logger.Logger
	Cfg      Config
	Clients  Clients
	Repos    Repos
	Services Services
	Metrics  *observability.Metrics
	Server   *http.Server

	otelShutdown func(context.Context) error
}

func New(ctx context.Context, cfg Config) (*App, error) {
	log, err := logger.New(cfg.LogMode)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	if cfg.UsingDevSecrets() {
		log.Warn("JWT secrets not set; using development defaults")
	}

	otelShutdown := observability.InitOTel(ctx, log, observability.OtelConfig{
		Enabled:     cfg.OtelEnabled,
		ServiceName: cfg.ServiceName,
		Environment: cfg.LogMode,
		Version:     cfg.ServiceVersion,
		Endpoint:    cfg.OtelEndpoint,
		Headers:     observability.ParseHeaders(cfg.OtelHeaders),
		Insecure:    cfg.OtelInsecure,
		SampleRatio: cfg.OtelSamplerRatio,
	})

	clients, err := wireClients(cfg, log)
	if err != nil {
		_ = otelShutdown(ctx)
		log.Sync()
		return nil, err
	}
	if cfg.AutoMigrate {
		if err := clients.Migrate(ctx, log); err != nil {
			clients.Close(ctx, log)
			_ = otelShutdown(ctx)
			log.Sync()
			return nil, err
		}
	}

	var metrics *observability.Metrics
	if cfg.MetricsEnabled {
		metrics = observability.NewMetrics("recipebook")
	}

	reposet := wireRepos(clients, log)
	serviceset := wireServices(log, cfg, reposet, metrics)
	handlerset := wireHandlers(log, cfg, serviceset, clients)
	middleware := wireMiddleware(log, serviceset)
	server := wireServer(log, cfg, metrics, handlerset, middleware)

	return &App{
		Log:          log,
		Cfg:          cfg,
		Clients:      clients,
		Repos:        reposet,
		Services:     serviceset,
		Metrics:      metrics,
		Server:       server,
		otelShutdown: otelShutdown,
	}, nil
}

// Run serves HTTP until ctx is cancelled.
func (a *App) Run(ctx context.Context) error {
	if a == nil || a.Server == nil {
		return fmt.Errorf("app not initialized")
	}
	return a.Server.Run(ctx)
}

func (a *App) Close(ctx context.Context) {
	if a == nil {
		return
	}
	a.Clients.Close(ctx, a.Log)
	if a.otelShutdown != nil {
		if err := a.otelShutdown(ctx); err != nil {
			a.Log.Warn("otel shutdown failed", "error", err)
		}
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
