package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/km-arc/go-inject/framework/container"
)

// Factories maps the factory names used in declaration files to Go functions.
type Factories map[string]any

// UnknownFactoryError is returned when a declaration names a factory that is
// not in the catalog.
type UnknownFactoryError struct {
	Service string
	Factory string
}

func (e UnknownFactoryError) Error() string {
	return fmt.Sprintf("config: service %q uses unknown factory %q", e.Service, e.Factory)
}

type definitionsFile struct {
	Services   map[string]serviceEntry `yaml:"services"`
	Parameters map[string]any          `yaml:"parameters"`
	ScopeTypes map[string][]string     `yaml:"scopeTypes"`
}

type serviceEntry struct {
	Factory      string    `yaml:"factory"`
	Dependencies yaml.Node `yaml:"dependencies"`
	Type         string    `yaml:"type"`
	Scopes       []string  `yaml:"scopes"`
}

// LoadDefinitions decodes a YAML declaration file into a container.Config.
//
//	services:
//	  greeter:
//	    factory: greeter
//	    dependencies: ["%greeting", "#name"]
//	    type: EVERY_INSTANCE
//	    scopes: [request]
//	parameters:
//	  greeting: Hello
//	scopeTypes:
//	  request: [name]
//
// dependencies may be a sequence (positional) or a mapping (named).
// The result is not validated; container.Build does that.
func LoadDefinitions(data []byte, factories Factories) (container.Config, error) {
	var file definitionsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return container.Config{}, fmt.Errorf("config: decode definitions: %w", err)
	}

	cfg := container.Config{
		Services:   make(map[string]container.Definition, len(file.Services)),
		Parameters: file.Parameters,
		ScopeTypes: file.ScopeTypes,
	}

	for name, entry := range file.Services {
		factory, ok := factories[entry.Factory]
		if !ok {
			return container.Config{}, UnknownFactoryError{Service: name, Factory: entry.Factory}
		}

		deps, err := decodeDependencies(name, &entry.Dependencies)
		if err != nil {
			return container.Config{}, err
		}

		cfg.Services[name] = container.Definition{
			Factory:      factory,
			Dependencies: deps,
			Lifecycle:    container.Lifecycle(entry.Type),
			Scopes:       entry.Scopes,
		}
	}
	return cfg, nil
}

// LoadDefinitionsFile reads and decodes a YAML declaration file.
func LoadDefinitionsFile(path string, factories Factories) (container.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return container.Config{}, fmt.Errorf("config: read definitions: %w", err)
	}
	return LoadDefinitions(data, factories)
}

func decodeDependencies(service string, node *yaml.Node) (container.Dependencies, error) {
	switch node.Kind {
	case 0:
		return nil, nil
	case yaml.SequenceNode:
		var deps []string
		if err := node.Decode(&deps); err != nil {
			return nil, fmt.Errorf("config: service %q dependencies: %w", service, err)
		}
		return container.Positional(deps), nil
	case yaml.MappingNode:
		var deps map[string]string
		if err := node.Decode(&deps); err != nil {
			return nil, fmt.Errorf("config: service %q dependencies: %w", service, err)
		}
		return container.Named(deps), nil
	case yaml.ScalarNode:
		if node.ShortTag() == "!!null" {
			return nil, nil
		}
	}
	return nil, fmt.Errorf("config: service %q dependencies must be a sequence or a mapping", service)
}
