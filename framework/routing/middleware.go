package routing

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/km-arc/go-inject/framework/container"
	gohttp "github.com/km-arc/go-inject/framework/http"
)

// ErrNoScope is returned by Resolve when the request did not pass through
// ScopeMiddleware.
var ErrNoScope = errors.New("routing: request has no container scope")

// ScopeFactory creates container scopes. *container.Container and
// *container.Scope both implement it.
type ScopeFactory interface {
	CreateScope(name string, values map[string]any) (*container.Scope, error)
}

// ValuesFunc builds a scope value bag from a request.
type ValuesFunc func(r *http.Request) map[string]any

type scopeKey struct{}

// ── Scope middleware ─────────────────────────────────────────────────────────

// ScopeMiddleware creates one container scope per request and stores it in
// the request context. A request missing a required scope value gets 400;
// an undefined scope name is a server error (500).
func ScopeMiddleware(scopes ScopeFactory, scopeName string, values ValuesFunc, logger *zap.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var bag map[string]any
			if values != nil {
				bag = values(r)
			}

			scope, err := scopes.CreateScope(scopeName, bag)
			if err != nil {
				logger.Warn("request scope rejected",
					zap.String("scope", scopeName),
					zap.String("path", r.URL.Path),
					zap.Error(err),
				)
				gohttp.NewResponse(w).ContainerError(err)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithScope(r.Context(), scope)))
		})
	}
}

// WithScope returns a copy of ctx carrying scope.
func WithScope(ctx context.Context, scope *container.Scope) context.Context {
	return context.WithValue(ctx, scopeKey{}, scope)
}

// ScopeFrom returns the scope stored by ScopeMiddleware.
func ScopeFrom(ctx context.Context) (*container.Scope, bool) {
	scope, ok := ctx.Value(scopeKey{}).(*container.Scope)
	return scope, ok && scope != nil
}

// Resolve resolves token from the request's scope.
//
//	greeter, err := routing.Resolve[*Greeter](r, "@greeter")
func Resolve[T any](r *http.Request, token string) (T, error) {
	scope, ok := ScopeFrom(r.Context())
	if !ok {
		var zero T
		return zero, ErrNoScope
	}
	return container.Resolve[T](scope, token)
}

// ── Value builders ───────────────────────────────────────────────────────────

// URLParams copies the named chi URL params into scope values of the same
// name. Empty params are left out.
func URLParams(names ...string) ValuesFunc {
	return func(r *http.Request) map[string]any {
		bag := make(map[string]any, len(names))
		for _, name := range names {
			if v := chi.URLParam(r, name); v != "" {
				bag[name] = v
			}
		}
		return bag
	}
}

// Headers maps scope value names to request header names. Absent headers are
// left out.
//
//	routing.Headers(map[string]string{"tenant": "X-Tenant-ID"})
func Headers(mapping map[string]string) ValuesFunc {
	return func(r *http.Request) map[string]any {
		bag := make(map[string]any, len(mapping))
		for value, header := range mapping {
			if v := r.Header.Get(header); v != "" {
				bag[value] = v
			}
		}
		return bag
	}
}

// RequestID stores the chi request id (middleware.RequestID) under name.
func RequestID(name string) ValuesFunc {
	return func(r *http.Request) map[string]any {
		bag := map[string]any{}
		if id := middleware.GetReqID(r.Context()); id != "" {
			bag[name] = id
		}
		return bag
	}
}

// Combine merges the bags of several builders; later builders win.
func Combine(fns ...ValuesFunc) ValuesFunc {
	return func(r *http.Request) map[string]any {
		bag := map[string]any{}
		for _, fn := range fns {
			for k, v := range fn(r) {
				bag[k] = v
			}
		}
		return bag
	}
}

// ── Access log ───────────────────────────────────────────────────────────────

// AccessLog logs one line per request through zap.
func AccessLog(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r)

			logger.Info("request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
				zap.String("requestId", middleware.GetReqID(r.Context())),
			)
		})
	}
}
