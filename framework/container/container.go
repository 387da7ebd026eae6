package container

import (
	"fmt"
	"reflect"
	"time"

	"go.uber.org/zap"
)

// ── Container ─────────────────────────────────────────────────────────────────

// Container is the validated, immutable service graph plus its global scope.
//
// It supports:
//   - Get (resolve from the global scope)
//   - CreateScope (request-like scopes carrying their own values)
//   - Resolve / MustResolve (generic)
//   - Graph export (DOT / Mermaid)
//
// Nothing can be added or removed once Build has returned.
type Container struct {
	// service name → compiled definition
	services map[string]*compiledService

	// parameter name → value
	parameters map[string]any

	// scope name → required scope value names
	scopeTypes map[string][]string

	global   *Scope
	logger   *zap.Logger
	observer Observer
}

// Resolver is implemented by *Container and *Scope.
type Resolver interface {
	Get(token string) (any, error)
}

// Observer receives resolution events. Implementations must be safe for
// concurrent use: scopes on different goroutines report independently.
type Observer interface {
	ScopeCreated(scope string)
	ServiceInstantiated(service, scope string, took time.Duration, err error)
}

type nopObserver struct{}

func (nopObserver) ScopeCreated(string)                                      {}
func (nopObserver) ServiceInstantiated(string, string, time.Duration, error) {}

// ── Options ───────────────────────────────────────────────────────────────────

type options struct {
	logger       *zap.Logger
	observer     Observer
	detectCycles bool
}

// Option configures Build.
type Option func(*options)

// WithLogger sets the logger used for build, scope and instantiation events.
// The default logger discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithObserver reports scope creation and service instantiation to o,
// typically a metrics collector.
func WithObserver(o Observer) Option {
	return func(opts *options) {
		if o != nil {
			opts.observer = o
		}
	}
}

// WithCycleDetection rejects dependency cycles of any length at build time,
// not only direct ones (A -> B -> A).
func WithCycleDetection() Option {
	return func(o *options) { o.detectCycles = true }
}

// ── Build ─────────────────────────────────────────────────────────────────────

// Build normalizes and validates cfg and returns a ready Container.
// On any validation error no container is returned.
//
//	c, err := container.Build(container.Config{
//	    Services: map[string]container.Definition{
//	        "foo": {Factory: func() string { return "foo" }},
//	    },
//	})
//	foo, err := c.Get("@foo")
func Build(cfg Config, opts ...Option) (*Container, error) {
	o := options{logger: zap.NewNop(), observer: nopObserver{}}
	for _, opt := range opts {
		opt(&o)
	}

	defs := Normalize(cfg.Services)

	parameters := make(map[string]any, len(cfg.Parameters))
	for k, v := range cfg.Parameters {
		parameters[k] = v
	}
	scopeTypes := make(map[string][]string, len(cfg.ScopeTypes))
	for k, v := range cfg.ScopeTypes {
		scopeTypes[k] = append([]string(nil), v...)
	}

	if err := Validate(defs, parameters, scopeTypes); err != nil {
		return nil, err
	}
	if o.detectCycles {
		if err := validateAcyclic(defs); err != nil {
			return nil, err
		}
	}

	c := &Container{
		services:   make(map[string]*compiledService, len(defs)),
		parameters: parameters,
		scopeTypes: scopeTypes,
		logger:     o.logger,
		observer:   o.observer,
	}
	for name, def := range defs {
		svc, err := compile(name, def)
		if err != nil {
			return nil, err
		}
		c.services[name] = svc
	}
	c.global = newScope(c, GlobalScope, nil)

	c.logger.Debug("container built",
		zap.Int("services", len(c.services)),
		zap.Int("parameters", len(c.parameters)),
		zap.Int("scopeTypes", len(c.scopeTypes)),
	)
	return c, nil
}

// MustBuild is like Build but panics on error; intended for bootstrap code.
func MustBuild(cfg Config, opts ...Option) *Container {
	c, err := Build(cfg, opts...)
	if err != nil {
		panic(err)
	}
	return c
}

// ── Resolution ────────────────────────────────────────────────────────────────

// Get resolves a token from the global scope.
func (c *Container) Get(token string) (any, error) {
	return c.global.Get(token)
}

// CreateScope validates values against the scope type and returns a fresh
// scope with an empty singleton cache.
//
//	req, err := c.CreateScope("request", map[string]any{"user": u})
//	handler, err := req.Get("@handler")
func (c *Container) CreateScope(name string, values map[string]any) (*Scope, error) {
	if err := validateScope(name, values, c.scopeTypes); err != nil {
		return nil, err
	}
	s := newScope(c, name, values)
	c.observer.ScopeCreated(name)
	c.logger.Debug("scope created", zap.String("scope", name), zap.Int("values", len(values)))
	return s, nil
}

// ── Helpers ───────────────────────────────────────────────────────────────────

// Has reports whether a service or parameter token is declared. Scope value
// tokens always report false: they only exist inside scopes.
func (c *Container) Has(token string) bool {
	tok, ok := ParseToken(token)
	if !ok {
		return false
	}
	switch tok.Kind {
	case ServiceRef:
		_, ok = c.services[tok.Name]
	case ParameterRef:
		_, ok = c.parameters[tok.Name]
	default:
		ok = false
	}
	return ok
}

// Services returns the declared service names, sorted.
func (c *Container) Services() []string {
	return sortedKeys(c.services)
}

// ScopeTypes returns a copy of the scope type catalog.
func (c *Container) ScopeTypes() map[string][]string {
	out := make(map[string][]string, len(c.scopeTypes))
	for k, v := range c.scopeTypes {
		out[k] = append([]string(nil), v...)
	}
	return out
}

// ── Generics helper ───────────────────────────────────────────────────────────

// Resolve calls Get and type-asserts the result.
//
//	// Instead of: v, err := c.Get("@db"); db := v.(*sql.DB)
//	// Write:      db, err := container.Resolve[*sql.DB](c, "@db")
func Resolve[T any](r Resolver, token string) (T, error) {
	var zero T
	v, err := r.Get(token)
	if err != nil {
		return zero, err
	}
	if v == nil {
		return zero, nil
	}
	typed, ok := v.(T)
	if !ok {
		return zero, TypeMismatchError{
			Token:    token,
			Expected: reflect.TypeOf((*T)(nil)).Elem().String(),
			Actual:   fmt.Sprintf("%T", v),
		}
	}
	return typed, nil
}

// MustResolve is like Resolve but panics on error.
func MustResolve[T any](r Resolver, token string) T {
	v, err := Resolve[T](r, token)
	if err != nil {
		panic(err)
	}
	return v
}
