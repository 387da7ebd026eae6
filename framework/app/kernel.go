package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/km-arc/go-inject/framework/config"
	"github.com/km-arc/go-inject/framework/container"
	"github.com/km-arc/go-inject/framework/logging"
	"github.com/km-arc/go-inject/framework/metrics"
	"github.com/km-arc/go-inject/framework/providers"
	"github.com/km-arc/go-inject/framework/routing"
)

// ParameterPrefix marks environment variables that become container
// parameters: PARAM_GREETING is available as "%greeting".
const ParameterPrefix = "PARAM_"

// Application is the top-level application: configuration, logger, the
// built container, its metrics and the HTTP router.
type Application struct {
	Config    *config.Config
	Logger    *zap.Logger
	Metrics   *metrics.Collector
	Container *container.Container
	Providers *container.ProviderRegistry
	Router    *routing.Router
}

// New loads configuration, registers the framework providers followed by
// providers, and builds the container. Container metrics are served on
// GET /metrics.
//
//	application, err := app.New(nil, &AppServiceProvider{})
//	application.Router.Scoped(application.Container, "request", values, routes)
func New(envFiles []string, providerList ...container.ServiceProvider) (*Application, error) {
	cfg := config.Load(envFiles...)

	logger, err := logging.New(&logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	if err != nil {
		return nil, fmt.Errorf("app: logger: %w", err)
	}

	params, err := config.Parameters(ParameterPrefix)
	if err != nil {
		return nil, fmt.Errorf("app: parameters: %w", err)
	}

	collector := metrics.NewCollector()
	router := routing.New(logger)
	router.Get("/metrics", collector.Handler().ServeHTTP)

	registry := container.NewProviderRegistry()
	// Register framework core providers first
	core := []container.ServiceProvider{
		&providers.ConfigServiceProvider{Config: cfg, Parameters: params},
		&providers.LoggingServiceProvider{Logger: logger},
		&providers.RoutingServiceProvider{Router: router},
	}
	for _, p := range append(core, providerList...) {
		if err := registry.Register(p); err != nil {
			return nil, err
		}
	}

	c, err := registry.Build(container.WithLogger(logger), container.WithObserver(collector))
	if err != nil {
		return nil, fmt.Errorf("app: build container: %w", err)
	}

	return &Application{
		Config:    cfg,
		Logger:    logger,
		Metrics:   collector,
		Container: c,
		Providers: registry,
		Router:    router,
	}, nil
}

// Run serves HTTP on APP_PORT until ctx is cancelled, then shuts down
// gracefully.
func (a *Application) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              ":" + a.Config.App.Port,
		Handler:           a.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info("server listening",
			zap.String("app", a.Config.App.Name),
			zap.String("addr", srv.Addr),
			zap.String("env", a.Config.App.Env),
		)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		a.Logger.Info("server shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}

// Environment returns APP_ENV value.
func (a *Application) Environment() string { return a.Config.App.Env }
func (a *Application) IsLocal() bool       { return a.Environment() == "local" }
func (a *Application) IsProduction() bool  { return a.Environment() == "production" }
func (a *Application) IsTesting() bool     { return a.Environment() == "testing" }
func (a *Application) IsDebug() bool       { return a.Config.App.Debug }
