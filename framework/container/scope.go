package container

import (
	"fmt"
	"reflect"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Scope is one live resolution context: the global scope of a Container or
// an instance created by CreateScope (typically one per request).
//
// Every Scope owns its singleton cache. Two scopes created with the same
// scope name never share instances. Resolution within a Scope is serialized;
// different scopes may be used from different goroutines.
type Scope struct {
	name      string
	values    map[string]any
	container *Container

	mu         sync.Mutex
	singletons map[string]any
}

func newScope(c *Container, name string, values map[string]any) *Scope {
	bag := make(map[string]any, len(values))
	for k, v := range values {
		bag[k] = v
	}
	return &Scope{
		name:       name,
		values:     bag,
		container:  c,
		singletons: make(map[string]any),
	}
}

// Name returns the scope type name, GlobalScope for the root scope.
func (s *Scope) Name() string { return s.name }

// Get resolves a dependency token.
//
//	db, err := scope.Get("@db")         // service
//	dsn, err := scope.Get("%dsn")       // parameter
//	user, err := scope.Get("#user")     // scope value
func (s *Scope) Get(token string) (any, error) {
	tok, ok := ParseToken(token)
	if !ok {
		return nil, UnrecognizedDependencyTokenError{Token: token}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.resolve(tok, nil)
}

// CreateScope derives a new scope from the container's scope types. The
// receiver's own scope and values are not inherited.
func (s *Scope) CreateScope(name string, values map[string]any) (*Scope, error) {
	return s.container.CreateScope(name, values)
}

// resolve must be called with s.mu held. chain lists the services currently
// being built, outermost first.
func (s *Scope) resolve(tok Token, chain []string) (any, error) {
	switch tok.Kind {
	case ParameterRef:
		v, ok := s.container.parameters[tok.Name]
		if !ok {
			return nil, ParameterNotFoundError{Parameter: tok.Name}
		}
		return v, nil

	case ScopeValueRef:
		v, ok := s.values[tok.Name]
		if !ok {
			return nil, ScopeValueNotFoundError{Scope: s.name, Value: tok.Name}
		}
		return v, nil

	case ServiceRef:
		return s.instantiate(tok.Name, chain)

	default:
		return nil, UnrecognizedDependencyTokenError{Token: tok.String()}
	}
}

func (s *Scope) instantiate(name string, chain []string) (any, error) {
	svc, ok := s.container.services[name]
	if !ok {
		return nil, ServiceNotFoundError{Service: name}
	}
	if !svc.def.inScope(s.name) {
		return nil, ServiceNotInScopeError{Service: name, Scope: s.name}
	}

	singleton := svc.def.Lifecycle == Singleton
	if singleton {
		if instance, ok := s.singletons[name]; ok {
			return instance, nil
		}
	}

	for i, building := range chain {
		if building == name {
			path := append(append([]string(nil), chain[i:]...), name)
			return nil, CircularDependencyError{Service: chain[len(chain)-1], Dependency: Service(name), Path: path}
		}
	}
	chain = append(chain[:len(chain):len(chain)], name)

	args, err := s.arguments(svc, chain)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	instance, err := svc.call(args)
	s.container.observer.ServiceInstantiated(name, s.name, time.Since(start), err)
	if err != nil {
		s.container.logger.Warn("service instantiation failed",
			zap.String("service", name),
			zap.String("scope", s.name),
			zap.Error(err),
		)
		return nil, ServiceInstantiationError{Service: name, Err: err}
	}

	if singleton {
		s.singletons[name] = instance
	}
	s.container.logger.Debug("service instantiated",
		zap.String("service", name),
		zap.String("scope", s.name),
		zap.String("lifecycle", string(svc.def.Lifecycle)),
	)
	return instance, nil
}

// arguments resolves the dependencies of svc and shapes them for its factory.
func (s *Scope) arguments(svc *compiledService, chain []string) ([]reflect.Value, error) {
	var (
		args []reflect.Value
		err  error
	)

	if svc.isNamed {
		bag := make(Args, len(svc.named))
		for _, n := range svc.named {
			v, err := s.resolve(n.token, chain)
			if err != nil {
				return nil, fmt.Errorf("container: resolve %s for \"@%s\": %w", n.token, svc.name, err)
			}
			bag[n.arg] = v
		}
		args, err = svc.namedArgs(bag)
	} else {
		values := make([]any, len(svc.positional))
		for i, tok := range svc.positional {
			v, err := s.resolve(tok, chain)
			if err != nil {
				return nil, fmt.Errorf("container: resolve %s for \"@%s\": %w", tok, svc.name, err)
			}
			values[i] = v
		}
		args, err = svc.positionalArgs(values)
	}

	if err != nil {
		return nil, ServiceInstantiationError{Service: svc.name, Err: err}
	}
	return args, nil
}
