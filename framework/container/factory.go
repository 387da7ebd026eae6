package container

import (
	"errors"
	"fmt"
	"reflect"
)

var errorType = reflect.TypeOf((*error)(nil)).Elem()

// namedToken is one entry of a Named dependency list, classified.
type namedToken struct {
	arg   string
	token Token
}

// compiledService is a validated Definition with its tokens classified once.
type compiledService struct {
	name       string
	factory    reflect.Value
	positional []Token
	named      []namedToken
	isNamed    bool
	def        Definition
}

// compile turns a validated Definition into a compiledService.
func compile(name string, def Definition) (*compiledService, error) {
	svc := &compiledService{
		name:    name,
		factory: reflect.ValueOf(def.Factory),
		def:     def,
	}

	switch deps := def.Dependencies.(type) {
	case Positional:
		svc.positional = make([]Token, len(deps))
		for i, raw := range deps {
			tok, err := classify(name, raw)
			if err != nil {
				return nil, err
			}
			svc.positional[i] = tok
		}
	case Named:
		svc.isNamed = true
		for _, arg := range deps.names() {
			tok, err := classify(name, deps[arg])
			if err != nil {
				return nil, err
			}
			svc.named = append(svc.named, namedToken{arg: arg, token: tok})
		}
	default:
		return nil, fmt.Errorf("container: service \"@%s\" has unsupported dependencies %T", name, def.Dependencies)
	}
	return svc, nil
}

// dependencies returns every dependency token in resolution order.
func (s *compiledService) dependencies() []Token {
	if !s.isNamed {
		return s.positional
	}
	out := make([]Token, len(s.named))
	for i, n := range s.named {
		out[i] = n.token
	}
	return out
}

// call invokes the factory with already-resolved arguments. A panicking
// factory is reported as an error.
func (s *compiledService) call(args []reflect.Value) (out any, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			out = nil
			err = fmt.Errorf("factory panicked: %v", rec)
		}
	}()

	results := s.factory.Call(args)
	return splitResults(results)
}

// positionalArgs converts resolved values into the factory's parameter types.
func (s *compiledService) positionalArgs(values []any) ([]reflect.Value, error) {
	ft := s.factory.Type()
	numIn := ft.NumIn()

	if ft.IsVariadic() {
		if len(values) < numIn-1 {
			return nil, fmt.Errorf("factory expects at least %d arguments, %d dependencies declared", numIn-1, len(values))
		}
	} else if len(values) != numIn {
		return nil, fmt.Errorf("factory expects %d arguments, %d dependencies declared", numIn, len(values))
	}

	args := make([]reflect.Value, len(values))
	for i, v := range values {
		var want reflect.Type
		if ft.IsVariadic() && i >= numIn-1 {
			want = ft.In(numIn - 1).Elem()
		} else {
			want = ft.In(i)
		}
		arg, err := convertArg(v, want)
		if err != nil {
			return nil, fmt.Errorf("argument %d (%s): %w", i, s.positional[i], err)
		}
		args[i] = arg
	}
	return args, nil
}

// namedArgs wraps the resolved bag into the factory's single parameter.
func (s *compiledService) namedArgs(bag Args) ([]reflect.Value, error) {
	ft := s.factory.Type()
	if ft.NumIn() != 1 || ft.IsVariadic() {
		return nil, fmt.Errorf("factory with named dependencies must take exactly one argument, takes %d", ft.NumIn())
	}
	arg, err := convertArg(bag, ft.In(0))
	if err != nil {
		return nil, err
	}
	return []reflect.Value{arg}, nil
}

func convertArg(v any, want reflect.Type) (reflect.Value, error) {
	if v == nil {
		return reflect.Zero(want), nil
	}
	rv := reflect.ValueOf(v)
	if rv.Type().AssignableTo(want) {
		return rv, nil
	}
	if rv.Kind() == reflect.Map && want.Kind() == reflect.Map && rv.Type().ConvertibleTo(want) {
		return rv.Convert(want), nil
	}
	return reflect.Value{}, fmt.Errorf("cannot use %s as %s", rv.Type(), want)
}

// splitResults accepts func(), func() T, func() error and func() (T, error).
func splitResults(results []reflect.Value) (any, error) {
	switch len(results) {
	case 0:
		return nil, nil
	case 1:
		if results[0].Type() == errorType {
			return nil, asError(results[0])
		}
		return valueOf(results[0]), nil
	case 2:
		if results[1].Type() != errorType {
			return nil, errors.New("factory second result must be an error")
		}
		if err := asError(results[1]); err != nil {
			return nil, err
		}
		return valueOf(results[0]), nil
	default:
		return nil, fmt.Errorf("factory returns %d values, want at most 2", len(results))
	}
}

func asError(v reflect.Value) error {
	if v.IsNil() {
		return nil
	}
	return v.Interface().(error)
}

func valueOf(v reflect.Value) any {
	if !v.IsValid() {
		return nil
	}
	return v.Interface()
}
