package container

import "errors"

// ErrRegistryBuilt is returned when a provider is registered after Build.
var ErrRegistryBuilt = errors.New("container: provider registry already built")

// ── ServiceProvider interface ─────────────────────────────────────────────────

// ServiceProvider contributes declarations to a Config before the container
// is built, and may use the built container afterwards.
//
//	type MailProvider struct{ container.BaseProvider }
//
//	func (p *MailProvider) Register(cfg *container.Config) {
//	    cfg.AddParameter("smtp.host", "localhost")
//	    cfg.AddService("mailer", container.Definition{
//	        Factory:      mail.NewSMTP,
//	        Dependencies: container.Positional{"%smtp.host"},
//	    })
//	}
//
//	func (p *MailProvider) Boot(c *container.Container) error {
//	    _, err := c.Get("@mailer") // fail fast on a broken mailer
//	    return err
//	}
type ServiceProvider interface {
	// Register adds services, parameters and scope types.
	// Nothing can be resolved yet.
	Register(cfg *Config)

	// Boot is called after the container has been built and validated.
	Boot(c *Container) error
}

// ── BaseProvider ──────────────────────────────────────────────────────────────

// BaseProvider is an embeddable struct with a no-op Boot.
type BaseProvider struct{}

func (p *BaseProvider) Boot(_ *Container) error { return nil }

// ── ProviderRegistry ──────────────────────────────────────────────────────────

// ProviderRegistry collects providers, builds one Container from all of their
// declarations, then boots them in registration order.
type ProviderRegistry struct {
	providers  []ServiceProvider
	registered map[ServiceProvider]bool
	container  *Container
}

// NewProviderRegistry creates an empty registry.
func NewProviderRegistry() *ProviderRegistry {
	return &ProviderRegistry{
		registered: make(map[ServiceProvider]bool),
	}
}

// Register adds a provider. Registering the same provider twice is a no-op.
func (r *ProviderRegistry) Register(provider ServiceProvider) error {
	if r.container != nil {
		return ErrRegistryBuilt
	}
	if r.registered[provider] {
		return nil
	}
	r.registered[provider] = true
	r.providers = append(r.providers, provider)
	return nil
}

// Config runs every provider's Register against a fresh Config. Later
// providers override earlier declarations with the same name.
func (r *ProviderRegistry) Config() Config {
	var cfg Config
	for _, provider := range r.providers {
		provider.Register(&cfg)
	}
	return cfg
}

// Build builds the container and boots every provider. It can only succeed
// once; later calls return the same container.
func (r *ProviderRegistry) Build(opts ...Option) (*Container, error) {
	if r.container != nil {
		return r.container, nil
	}

	c, err := Build(r.Config(), opts...)
	if err != nil {
		return nil, err
	}
	for _, provider := range r.providers {
		if err := provider.Boot(c); err != nil {
			return nil, err
		}
	}
	r.container = c
	return c, nil
}

// Built returns true once Build has succeeded.
func (r *ProviderRegistry) Built() bool { return r.container != nil }

// Providers returns all registered providers in registration order.
func (r *ProviderRegistry) Providers() []ServiceProvider { return r.providers }
