package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/km-arc/go-inject/framework/app"
	"github.com/km-arc/go-inject/framework/container"
	gohttp "github.com/km-arc/go-inject/framework/http"
	"github.com/km-arc/go-inject/framework/logging"
	"github.com/km-arc/go-inject/framework/routing"
)

// Greeter is built once per request from the request's scope values.
type Greeter struct {
	Greeting  string
	Name      string
	RequestID string
}

func (g *Greeter) Greet() string { return g.Greeting + ", " + g.Name + "!" }

// AppServiceProvider declares the demo's parameters, scope and services.
type AppServiceProvider struct {
	container.BaseProvider
}

func (p *AppServiceProvider) Register(cfg *container.Config) {
	if _, ok := cfg.Parameters["greeting"]; !ok {
		cfg.AddParameter("greeting", "Hello")
	}
	cfg.AddScopeType("request", "name", "requestId")

	cfg.AddService("greeter", container.Definition{
		Factory: func(a container.Args) *Greeter {
			return &Greeter{
				Greeting:  a["greeting"].(string),
				Name:      a["name"].(string),
				RequestID: a["requestId"].(string),
			}
		},
		Dependencies: container.Named{
			"greeting":  "%greeting",
			"name":      "#name",
			"requestId": "#requestId",
		},
		Scopes: []string{"request"},
	})
}

func main() {
	application, err := app.New(nil, &AppServiceProvider{})
	if err != nil {
		logging.Must(nil).Fatal("bootstrap failed", zap.Error(err))
	}
	defer func() { _ = application.Logger.Sync() }()

	r := application.Router

	r.Get("/", func(w http.ResponseWriter, req *http.Request) {
		gohttp.NewResponse(w).Success(map[string]any{
			"services": application.Container.Services(),
		})
	})

	r.Get("/graph", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "text/vnd.graphviz")
		_, _ = w.Write([]byte(application.Container.Graph().DOT()))
	})

	// ── One container scope per request ───────────────────────────────────────

	values := routing.Combine(routing.URLParams("name"), routing.RequestID("requestId"))
	r.Scoped(application.Container, "request", values, func(scoped *routing.Router) {
		// GET /hello/{name}
		scoped.Get("/hello/{name}", func(w http.ResponseWriter, req *http.Request) {
			res := gohttp.NewResponse(w)

			greeter, err := routing.Resolve[*Greeter](req, "@greeter")
			if err != nil {
				res.ContainerError(err)
				return
			}
			res.Success(map[string]any{
				"message":   greeter.Greet(),
				"requestId": greeter.RequestID,
			})
		})
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := application.Run(ctx); err != nil {
		application.Logger.Fatal("server error", zap.Error(err))
	}
}
