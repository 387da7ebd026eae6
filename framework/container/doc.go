// Package container provides a declarative, scope-aware dependency injection
// container for Go.
//
// # Overview
//
// A container is built once from a Config made of services (factories plus
// dependency declarations), parameters (plain values) and scope types (named
// request-like contexts and the values they must carry). The whole graph is
// validated before anything is instantiated; afterwards the container is
// immutable.
//
// # Container Lifecycle
//
//  1. Declare: cfg := container.Config{...} (or ProviderRegistry)
//  2. Build:   c, err := container.Build(cfg)   // validates the whole graph
//  3. Resolve: c.Get("@service") / c.CreateScope("request", values)
//
// # Dependency tokens
//
//	"@name"  // service
//	"%name"  // parameter
//	"#name"  // scope value (only inside a scope)
//
// # Services
//
//	// Positional: arguments in declaration order
//	cfg.AddService("repo", container.Definition{
//	    Factory:      func(db *sql.DB, table string) *Repo { return &Repo{db, table} },
//	    Dependencies: container.Positional{"@db", "%users.table"},
//	})
//
//	// Named: one Args bag keyed by argument name
//	cfg.AddService("report", container.Definition{
//	    Factory: func(a container.Args) (*Report, error) {
//	        return NewReport(a["repo"].(*Repo), a["user"].(string))
//	    },
//	    Dependencies: container.Named{"repo": "@repo", "user": "#user"},
//	    Lifecycle:    container.EveryInstance,
//	    Scopes:       []string{"request"},
//	})
//
// A factory may return T, (T, error), error or nothing. A returned error or a
// panic is reported as ServiceInstantiationError and nothing is cached.
//
// # Scopes
//
// Services live in the global scope unless they list named scopes. Global
// services are visible everywhere; scoped services only from scopes of a
// listed type, and only they may depend on scope values.
//
//	cfg.AddScopeType("request", "user")
//	req, err := c.CreateScope("request", map[string]any{"user": "alice"})
//	report, err := container.Resolve[*Report](req, "@report")
//
// Every scope instance has its own singleton cache: a Singleton is built at
// most once per scope instance.
//
// # Validation
//
// Build rejects factories that are not functions, services both global and
// scoped, undefined scopes, malformed tokens, references to missing services,
// parameters or scope values, services that are not reachable from the
// dependent's scopes, and direct cycles. WithCycleDetection extends the cycle
// check to cycles of any length.
//
// # Service Providers
//
//	type AppServiceProvider struct{ container.BaseProvider }
//
//	func (p *AppServiceProvider) Register(cfg *container.Config) {
//	    cfg.AddParameter("greeting", "Hello")
//	}
//
//	registry := container.NewProviderRegistry()
//	_ = registry.Register(&AppServiceProvider{})
//	c, err := registry.Build()
package container
