package providers

import (
	"go.uber.org/zap"

	"github.com/km-arc/go-inject/framework/config"
	"github.com/km-arc/go-inject/framework/container"
	"github.com/km-arc/go-inject/framework/routing"
)

// ── ConfigServiceProvider ─────────────────────────────────────────────────────

// ConfigServiceProvider exposes the application configuration to the
// container.
//
// Declared parameters:
//   - "app.name", "app.env", "app.port", "app.debug"
//   - every entry of Parameters (typically from config.Parameters)
//
// Declared services:
//   - "config" → *config.Config
type ConfigServiceProvider struct {
	container.BaseProvider
	Config     *config.Config
	Parameters map[string]any
}

func (p *ConfigServiceProvider) Register(cfg *container.Config) {
	app := p.Config
	cfg.AddParameter("app.name", app.App.Name).
		AddParameter("app.env", app.App.Env).
		AddParameter("app.port", app.App.Port).
		AddParameter("app.debug", app.App.Debug)

	for name, value := range p.Parameters {
		cfg.AddParameter(name, value)
	}

	cfg.AddService("config", container.Definition{
		Factory: func() *config.Config { return app },
	})
}

// ── LoggingServiceProvider ────────────────────────────────────────────────────

// LoggingServiceProvider declares the application logger.
//
// Declared services:
//   - "logger" → *zap.Logger
type LoggingServiceProvider struct {
	container.BaseProvider
	Logger *zap.Logger
}

func (p *LoggingServiceProvider) Register(cfg *container.Config) {
	logger := p.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg.AddService("logger", container.Definition{
		Factory: func() *zap.Logger { return logger },
	})
}

// Boot logs a summary of the built container.
func (p *LoggingServiceProvider) Boot(c *container.Container) error {
	logger, err := container.Resolve[*zap.Logger](c, "@logger")
	if err != nil {
		return err
	}
	logger.Info("container ready", zap.Strings("services", c.Services()))
	return nil
}

// ── RoutingServiceProvider ────────────────────────────────────────────────────

// RoutingServiceProvider declares the HTTP router.
//
// Declared services:
//   - "router" → *routing.Router
type RoutingServiceProvider struct {
	container.BaseProvider
	Router *routing.Router
}

func (p *RoutingServiceProvider) Register(cfg *container.Config) {
	router := p.Router
	cfg.AddService("router", container.Definition{
		Factory: func() *routing.Router { return router },
	})
}
