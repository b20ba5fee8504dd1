package app

import (
	"context"
	"fmt"
	"time"

	apphttp "github.com/yungbote/studypath/internal/http"
	"github.com/yungbote/studypath/internal/observability"
	"github.com/yungbote/studypath/internal/platform/envutil"
	"github.com/yungbote/studypath/internal/platform/logger"
)

type App struct {
	Log      *logger.Logger
	Cfg      Config
	Storage  *Storage
	Clients  Clients
	Services Services
	Server   *apphttp.Server

	shutdownTracing func(context.Context) error
}

// New builds the full dependency graph from the environment.
func New(ctx context.Context) (*App, error) {
	log, err := logger.New(envutil.String("LOG_MODE", "development"))
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	log.Info("Loading environment variables...")
	cfg, err := LoadConfig(log)
	if err != nil {
		log.Sync()
		return nil, fmt.Errorf("load config: %w", err)
	}
	a, err := NewWithConfig(ctx, log, cfg)
	if err != nil {
		log.Sync()
		return nil, err
	}
	return a, nil
}

func NewWithConfig(ctx context.Context, log *logger.Logger, cfg Config) (*App, error) {
	shutdownTracing := observability.InitTracing(ctx, log, observability.TracingConfig{
		Enabled:     cfg.OtelEnabled,
		ServiceName: cfg.ServiceName,
		Environment: cfg.Environment,
		Version:     cfg.Version,
		Endpoint:    cfg.OtelEndpoint,
		Insecure:    cfg.OtelInsecure,
		Headers:     observability.ParseHeaders(cfg.OtelHeaders),
		SampleRatio: cfg.OtelSampleRatio,
	})

	st, err := wireStorage(ctx, log, cfg)
	if err != nil {
		_ = shutdownTracing(ctx)
		return nil, err
	}
	clients, err := wireClients(ctx, log, cfg, st)
	if err != nil {
		_ = st.Close()
		_ = shutdownTracing(ctx)
		return nil, fmt.Errorf("init clients: %w", err)
	}
	serviceset, err := wireServices(log, cfg, st, clients)
	if err != nil {
		clients.Close()
		_ = st.Close()
		_ = shutdownTracing(ctx)
		return nil, fmt.Errorf("init services: %w", err)
	}
	handlerset := wireHandlers(log, serviceset)

	return &App{
		Log:             log,
		Cfg:             cfg,
		Storage:         st,
		Clients:         clients,
		Services:        serviceset,
		Server:          wireServer(log, cfg, handlerset),
		shutdownTracing: shutdownTracing,
	}, nil
}

func (a *App) Run() error {
	if a == nil || a.Server == nil {
		return fmt.Errorf("app not initialized")
	}
	a.Log.Info("Server listening", "addr", a.Cfg.HTTPAddr)
	return a.Server.Run(a.Cfg.HTTPAddr)
}

// Close stops the server, drains notifications, and releases storage.
func (a *App) Close() {
	if a == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if a.Server != nil {
		if err := a.Server.Shutdown(ctx); err != nil {
			a.Log.Warn("server shutdown", "error", err)
		}
	}
	a.Clients.Close()
	if err := a.Storage.Close(); err != nil {
		a.Log.Warn("storage close", "error", err)
	}
	if a.shutdownTracing != nil {
		_ = a.shutdownTracing(ctx)
	}
	if a.Log != nil {
		a.Log.Sync()
	}
}
