package container

import "sort"

// ── Declarations ──────────────────────────────────────────────────────────────

// GlobalScope is the reserved name of the root scope. Services declared in it
// are visible from every scope.
const GlobalScope = "global"

// Lifecycle controls whether a scope caches a service instance.
type Lifecycle string

const (
	// Singleton is built once per scope instance, then cached.
	Singleton Lifecycle = "SINGLETON"
	// EveryInstance is built again on every resolution.
	EveryInstance Lifecycle = "EVERY_INSTANCE"
)

// Dependencies is either Positional or Named.
type Dependencies interface {
	// tokens returns the raw tokens in validation order.
	tokens() []string
}

// Positional dependencies are passed to the factory as ordinary arguments,
// in declaration order.
//
//	Factory:      func(db *sql.DB, dsn string) *Repo { ... },
//	Dependencies: container.Positional{"@db", "%dsn"},
type Positional []string

func (p Positional) tokens() []string { return p }

// Named dependencies are passed to the factory as a single Args bag keyed by
// argument name.
//
//	Factory:      func(a container.Args) *Repo { return &Repo{DB: a["db"].(*sql.DB)} },
//	Dependencies: container.Named{"db": "@db"},
type Named map[string]string

// names returns the argument names sorted, which is the validation order.
func (n Named) names() []string {
	out := make([]string, 0, len(n))
	for k := range n {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (n Named) tokens() []string {
	names := n.names()
	out := make([]string, len(names))
	for i, name := range names {
		out[i] = n[name]
	}
	return out
}

// Args is the argument bag received by factories with Named dependencies.
type Args map[string]any

// Definition declares one service.
//
// Factory must be a func. Its result is the service; a trailing error result
// is treated as a construction failure. Zero-valued fields are filled by
// Normalize: no dependencies, Singleton, global scope.
type Definition struct {
	Factory      any
	Dependencies Dependencies
	Lifecycle    Lifecycle
	Scopes       []string
}

// Normalize returns a copy of defs with defaults applied.
func Normalize(defs map[string]Definition) map[string]Definition {
	out := make(map[string]Definition, len(defs))
	for name, def := range defs {
		out[name] = withDefaults(def)
	}
	return out
}

func withDefaults(def Definition) Definition {
	if def.Dependencies == nil {
		def.Dependencies = Positional{}
	}
	if def.Lifecycle == "" {
		def.Lifecycle = Singleton
	}
	if len(def.Scopes) == 0 {
		def.Scopes = []string{GlobalScope}
	} else {
		def.Scopes = append([]string(nil), def.Scopes...)
	}
	return def
}

func (def Definition) isGlobal() bool {
	return contains(def.Scopes, GlobalScope)
}

// inScope reports whether the service can be resolved from the named scope.
func (def Definition) inScope(scope string) bool {
	return contains(def.Scopes, scope) || def.isGlobal()
}

// ── Config ────────────────────────────────────────────────────────────────────

// Config is the declarative input of Build.
//
//	cfg := container.Config{
//	    Services: map[string]container.Definition{
//	        "greeter": {
//	            Factory:      func(greeting, name string) string { return greeting + ", " + name },
//	            Dependencies: container.Positional{"%greeting", "#name"},
//	            Scopes:       []string{"request"},
//	        },
//	    },
//	    Parameters: map[string]any{"greeting": "Hello"},
//	    ScopeTypes: map[string][]string{"request": {"name"}},
//	}
type Config struct {
	Services   map[string]Definition
	Parameters map[string]any
	ScopeTypes map[string][]string
}

// AddService declares (or replaces) a service.
func (cfg *Config) AddService(name string, def Definition) *Config {
	if cfg.Services == nil {
		cfg.Services = make(map[string]Definition)
	}
	cfg.Services[name] = def
	return cfg
}

// AddParameter declares (or replaces) a parameter.
func (cfg *Config) AddParameter(name string, value any) *Config {
	if cfg.Parameters == nil {
		cfg.Parameters = make(map[string]any)
	}
	cfg.Parameters[name] = value
	return cfg
}

// AddScopeType declares (or replaces) a scope type and its required values.
func (cfg *Config) AddScopeType(name string, values ...string) *Config {
	if cfg.ScopeTypes == nil {
		cfg.ScopeTypes = make(map[string][]string)
	}
	cfg.ScopeTypes[name] = append([]string(nil), values...)
	return cfg
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func sortedKeys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
