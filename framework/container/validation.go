package container

import "reflect"

// Validate checks a normalized service graph against the declared parameters
// and scope types and returns the first violation found.
//
// Services are visited by name, positional dependencies in declaration order
// and named dependencies by argument name. Only direct cycles (A -> B -> A,
// including A -> A) are reported here; see WithCycleDetection for the full
// graph check.
func Validate(services map[string]Definition, parameters map[string]any, scopeTypes map[string][]string) error {
	for _, name := range sortedKeys(services) {
		if err := validateService(name, services[name], services, parameters, scopeTypes); err != nil {
			return err
		}
	}
	return nil
}

func validateService(
	name string,
	def Definition,
	services map[string]Definition,
	parameters map[string]any,
	scopeTypes map[string][]string,
) error {
	if def.Factory == nil || reflect.TypeOf(def.Factory).Kind() != reflect.Func {
		return FactoryIsNotAFunctionError{Service: name}
	}

	if def.Lifecycle != Singleton && def.Lifecycle != EveryInstance {
		return InvalidLifecycleError{Service: name, Lifecycle: def.Lifecycle}
	}

	if def.isGlobal() && len(def.Scopes) > 1 {
		return GlobalAndScopedServiceError{Service: name, Scopes: def.Scopes}
	}

	for _, scope := range def.Scopes {
		if scope == GlobalScope {
			continue
		}
		if _, ok := scopeTypes[scope]; !ok {
			return UndefinedScopeBelongingError{Service: name, Scope: scope}
		}
	}

	raw := def.Dependencies.tokens()
	if len(raw) == 0 {
		return nil
	}

	for _, dependency := range raw {
		tok, err := classify(name, dependency)
		if err != nil {
			return err
		}

		switch tok.Kind {
		case ScopeValueRef:
			if def.isGlobal() {
				return ScopedValueDependencyFromGlobalScopeError{Service: name, Dependency: dependency}
			}
			if !scopesProvide(def.Scopes, tok.Name, scopeTypes) {
				return NonExistingScopeValueDependencyError{Service: name, Dependency: dependency}
			}

		case ParameterRef:
			if _, ok := parameters[tok.Name]; !ok {
				return NonExistingParameterDependencyError{Service: name, Dependency: dependency}
			}

		case ServiceRef:
			dep, ok := services[tok.Name]
			if !ok {
				return NonExistingServiceDependencyError{Service: name, Dependency: dependency}
			}
			if !sharesScope(def.Scopes, dep.Scopes) && !dep.isGlobal() {
				return DependencyNotAccessibleInScopeError{Service: name, Dependency: dependency}
			}
			if dependsDirectlyOn(dep, name) {
				return CircularDependencyError{Service: name, Dependency: dependency}
			}
		}
	}
	return nil
}

// scopesProvide reports whether at least one of the scopes lists the value.
func scopesProvide(scopes []string, value string, scopeTypes map[string][]string) bool {
	for _, scope := range scopes {
		if contains(scopeTypes[scope], value) {
			return true
		}
	}
	return false
}

func sharesScope(a, b []string) bool {
	for _, s := range a {
		if contains(b, s) {
			return true
		}
	}
	return false
}

// dependsDirectlyOn reports whether def lists @service among its dependencies.
// Malformed tokens are skipped; they are reported when def itself is validated.
func dependsDirectlyOn(def Definition, service string) bool {
	for _, raw := range def.Dependencies.tokens() {
		if tok, ok := ParseToken(raw); ok && tok.Kind == ServiceRef && tok.Name == service {
			return true
		}
	}
	return false
}

// validateAcyclic runs a depth-first search over service edges and reports
// the first cycle of any length.
func validateAcyclic(services map[string]Definition) error {
	const (
		stateNew uint8 = iota
		stateVisiting
		stateDone
	)

	state := make(map[string]uint8, len(services))
	stack := make([]string, 0, len(services))
	stackPos := make(map[string]int, len(services))

	var dfs func(name string) error
	dfs = func(name string) error {
		state[name] = stateVisiting
		stackPos[name] = len(stack)
		stack = append(stack, name)

		for _, dep := range serviceEdges(services[name]) {
			if _, ok := services[dep]; !ok {
				continue
			}
			switch state[dep] {
			case stateVisiting:
				path := append(append([]string(nil), stack[stackPos[dep]:]...), dep)
				return CircularDependencyError{Service: name, Dependency: Service(dep), Path: path}
			case stateNew:
				if err := dfs(dep); err != nil {
					return err
				}
			}
		}

		stack = stack[:len(stack)-1]
		delete(stackPos, name)
		state[name] = stateDone
		return nil
	}

	for _, name := range sortedKeys(services) {
		if state[name] != stateNew {
			continue
		}
		if err := dfs(name); err != nil {
			return err
		}
	}
	return nil
}

// serviceEdges lists the services def depends on, in validation order.
func serviceEdges(def Definition) []string {
	var out []string
	for _, raw := range def.Dependencies.tokens() {
		if tok, ok := ParseToken(raw); ok && tok.Kind == ServiceRef {
			out = append(out, tok.Name)
		}
	}
	return out
}

// validateScope checks a scope name and its value bag against the catalog.
func validateScope(scope string, values map[string]any, scopeTypes map[string][]string) error {
	if scope == GlobalScope {
		return nil
	}
	required, ok := scopeTypes[scope]
	if !ok {
		return UndefinedScopeError{Scope: scope}
	}
	for _, name := range required {
		if _, ok := values[name]; !ok {
			return MissingScopeValueError{Scope: scope, Value: name}
		}
	}
	return nil
}
