package app_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/go-inject/framework/app"
	"github.com/km-arc/go-inject/framework/container"
	"github.com/km-arc/go-inject/framework/routing"
)

func setupEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"APP_NAME", "APP_ENV", "APP_DEBUG", "APP_PORT", "LOG_LEVEL", "LOG_FORMAT"} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
	t.Setenv("APP_NAME", "kernel-test")
	t.Setenv("APP_ENV", "testing")
	t.Setenv("APP_PORT", "0")
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("PARAM_GREETING", "Hello")
}

type greetingProvider struct {
	container.BaseProvider
}

func (p *greetingProvider) Register(cfg *container.Config) {
	cfg.AddScopeType("request", "name")
	cfg.AddService("greeter", container.Definition{
		Factory:      func(greeting, name string) string { return greeting + ", " + name },
		Dependencies: container.Positional{"%greeting", "#name"},
		Scopes:       []string{"request"},
	})
}

type brokenProvider struct {
	container.BaseProvider
}

func (p *brokenProvider) Register(cfg *container.Config) {
	cfg.AddService("broken", container.Definition{Factory: "nope"})
}

func TestNew_RegistersFrameworkProviders(t *testing.T) {
	setupEnv(t)

	application, err := app.New([]string{"testdata/none.env"})
	require.NoError(t, err)

	assert.True(t, application.Providers.Built())
	assert.Len(t, application.Providers.Providers(), 3)
	assert.True(t, application.IsTesting())
	assert.False(t, application.IsDebug())

	for _, token := range []string{"@config", "@logger", "@router", "%app.name", "%greeting"} {
		assert.True(t, application.Container.Has(token), token)
	}

	name, err := container.Resolve[string](application.Container, "%app.name")
	require.NoError(t, err)
	assert.Equal(t, "kernel-test", name)
}

func TestNew_UserProvidersAndScopedRoutes(t *testing.T) {
	setupEnv(t)

	application, err := app.New(nil, &greetingProvider{})
	require.NoError(t, err)

	application.Router.Scoped(application.Container, "request", routing.URLParams("name"), func(g *routing.Router) {
		g.Get("/hello/{name}", func(w http.ResponseWriter, r *http.Request) {
			msg, err := routing.Resolve[string](r, "@greeter")
			if err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			_, _ = w.Write([]byte(msg))
		})
	})

	rr := httptest.NewRecorder()
	application.Router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/hello/ada", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Hello, ada", rr.Body.String())

	rr = httptest.NewRecorder()
	application.Router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `inject_service_instantiations_total{result="success",scope="request",service="greeter"} 1`)
}

func TestNew_BuildError(t *testing.T) {
	setupEnv(t)

	application, err := app.New(nil, &brokenProvider{})
	assert.Nil(t, application)

	var target container.FactoryIsNotAFunctionError
	assert.True(t, errors.As(err, &target))
}

func TestRun_StopsOnCancel(t *testing.T) {
	setupEnv(t)

	application, err := app.New(nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- application.Run(ctx) }()

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
