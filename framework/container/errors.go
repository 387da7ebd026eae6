package container

import (
	"fmt"
	"strings"
)

// ── Build-time validation errors ──────────────────────────────────────────────

// FactoryIsNotAFunctionError means a service factory is nil or not a func.
type FactoryIsNotAFunctionError struct {
	Service string
}

func (e FactoryIsNotAFunctionError) Error() string {
	return fmt.Sprintf("container: the factory of service %q is not a function", e.Service)
}

// InvalidLifecycleError means a service declares an unknown lifecycle type.
type InvalidLifecycleError struct {
	Service   string
	Lifecycle Lifecycle
}

func (e InvalidLifecycleError) Error() string {
	return fmt.Sprintf("container: service \"@%s\" has an invalid lifecycle %q (want %q or %q)",
		e.Service, e.Lifecycle, Singleton, EveryInstance)
}

// GlobalAndScopedServiceError means a service is declared both in the global
// scope and in one or more named scopes.
type GlobalAndScopedServiceError struct {
	Service string
	Scopes  []string
}

func (e GlobalAndScopedServiceError) Error() string {
	return fmt.Sprintf("container: service \"@%s\" is both in the global scope and in subscope(s) [%s]",
		e.Service, strings.Join(e.Scopes, ", "))
}

// UndefinedScopeBelongingError means a service belongs to a scope that has no
// scope type.
type UndefinedScopeBelongingError struct {
	Service string
	Scope   string
}

func (e UndefinedScopeBelongingError) Error() string {
	return fmt.Sprintf("container: service \"@%s\" belongs to an undefined scope %q", e.Service, e.Scope)
}

// ScopedValueDependencyFromGlobalScopeError means a global service depends on
// a scope value.
type ScopedValueDependencyFromGlobalScopeError struct {
	Service    string
	Dependency string
}

func (e ScopedValueDependencyFromGlobalScopeError) Error() string {
	return fmt.Sprintf("container: service \"@%s\" depends on the scope value %q but is in the global scope",
		e.Service, e.Dependency)
}

// NonExistingScopeValueDependencyError means none of the service's scopes
// provide the requested scope value.
type NonExistingScopeValueDependencyError struct {
	Service    string
	Dependency string
}

func (e NonExistingScopeValueDependencyError) Error() string {
	return fmt.Sprintf("container: service \"@%s\" depends on a non-existing scope value %q",
		e.Service, e.Dependency)
}

// InvalidDependencyDeclarationError means a dependency token carries none of
// the service, parameter or scope value sigils.
type InvalidDependencyDeclarationError struct {
	Service    string
	Dependency string
}

func (e InvalidDependencyDeclarationError) Error() string {
	return fmt.Sprintf("container: service \"@%s\" has an invalid dependency declaration "+
		"(must be a service, parameter, or scope value, found %q)", e.Service, e.Dependency)
}

// NonExistingServiceDependencyError means a service depends on an undeclared service.
type NonExistingServiceDependencyError struct {
	Service    string
	Dependency string
}

func (e NonExistingServiceDependencyError) Error() string {
	return fmt.Sprintf("container: service \"@%s\" depends on a non-existing service %q",
		e.Service, e.Dependency)
}

// NonExistingParameterDependencyError means a service depends on an undeclared parameter.
type NonExistingParameterDependencyError struct {
	Service    string
	Dependency string
}

func (e NonExistingParameterDependencyError) Error() string {
	return fmt.Sprintf("container: service \"@%s\" depends on a non-existing parameter %q",
		e.Service, e.Dependency)
}

// DependencyNotAccessibleInScopeError means a service depends on another
// service that shares none of its scopes and is not global.
type DependencyNotAccessibleInScopeError struct {
	Service    string
	Dependency string
}

func (e DependencyNotAccessibleInScopeError) Error() string {
	return fmt.Sprintf("container: service \"@%s\" depends on the service %q, which is not accessible in its scopes",
		e.Service, e.Dependency)
}

// CircularDependencyError means a dependency cycle was found.
// Path is set when the full chain is known (runtime guard or full cycle detection).
type CircularDependencyError struct {
	Service    string
	Dependency string
	Path       []string
}

func (e CircularDependencyError) Error() string {
	if len(e.Path) > 0 {
		return "container: circular dependency detected: @" + strings.Join(e.Path, " -> @")
	}
	return fmt.Sprintf("container: circular dependency detected (service \"@%s\" depends on %q, which depends on \"@%s\")",
		e.Service, e.Dependency, e.Service)
}

// ── Runtime errors ────────────────────────────────────────────────────────────

// ServiceNotFoundError means a requested service is not declared.
type ServiceNotFoundError struct {
	Service string
}

func (e ServiceNotFoundError) Error() string {
	return fmt.Sprintf("container: service \"@%s\" does not exist", e.Service)
}

// ParameterNotFoundError means a requested parameter is not declared.
type ParameterNotFoundError struct {
	Parameter string
}

func (e ParameterNotFoundError) Error() string {
	return fmt.Sprintf("container: parameter \"%%%s\" does not exist", e.Parameter)
}

// ScopeValueNotFoundError means the scope instance has no such value.
type ScopeValueNotFoundError struct {
	Scope string
	Value string
}

func (e ScopeValueNotFoundError) Error() string {
	return fmt.Sprintf("container: scope value \"#%s\" does not exist in scope %q", e.Value, e.Scope)
}

// ServiceNotInScopeError means a service was requested from a scope it does
// not belong to.
type ServiceNotInScopeError struct {
	Service string
	Scope   string
}

func (e ServiceNotInScopeError) Error() string {
	return fmt.Sprintf("container: service \"@%s\" is not in the %q scope", e.Service, e.Scope)
}

// UnrecognizedDependencyTokenError means Get was called with a token that is
// neither a service, a parameter nor a scope value.
type UnrecognizedDependencyTokenError struct {
	Token string
}

func (e UnrecognizedDependencyTokenError) Error() string {
	return fmt.Sprintf("container: the requested dependency must be a service, parameter or scope value, "+
		"no type given. Did you mean \"@%s\", \"%%%s\" or \"#%s\"?", e.Token, e.Token, e.Token)
}

// ServiceInstantiationError wraps a failure raised while calling a factory.
type ServiceInstantiationError struct {
	Service string
	Err     error
}

func (e ServiceInstantiationError) Error() string {
	return fmt.Sprintf("container: error instantiating \"@%s\": %v", e.Service, e.Err)
}

func (e ServiceInstantiationError) Unwrap() error { return e.Err }

// UndefinedScopeError means CreateScope was called with an unknown scope name.
type UndefinedScopeError struct {
	Scope string
}

func (e UndefinedScopeError) Error() string {
	return fmt.Sprintf("container: undefined scope %q", e.Scope)
}

// MissingScopeValueError means CreateScope was called without a value the
// scope type requires.
type MissingScopeValueError struct {
	Scope string
	Value string
}

func (e MissingScopeValueError) Error() string {
	return fmt.Sprintf("container: missing scope value \"#%s\" for scope %q", e.Value, e.Scope)
}

// TypeMismatchError means Resolve[T] could not cast the resolved value to T.
type TypeMismatchError struct {
	Token    string
	Expected string
	Actual   string
}

func (e TypeMismatchError) Error() string {
	return fmt.Sprintf("container: %s resolved to %s, expected %s", e.Token, e.Actual, e.Expected)
}
