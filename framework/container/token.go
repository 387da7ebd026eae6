package container

// ── Dependency tokens ─────────────────────────────────────────────────────────

// Kind tells what a dependency token refers to.
type Kind int

const (
	ServiceRef    Kind = iota + 1 // @name
	ParameterRef                  // %name
	ScopeValueRef                 // #name
)

// Sigils of the token grammar.
const (
	ServiceSigil    = '@'
	ParameterSigil  = '%'
	ScopeValueSigil = '#'
)

func (k Kind) String() string {
	switch k {
	case ServiceRef:
		return "service"
	case ParameterRef:
		return "parameter"
	case ScopeValueRef:
		return "scope value"
	default:
		return "unknown"
	}
}

func (k Kind) sigil() byte {
	switch k {
	case ServiceRef:
		return ServiceSigil
	case ParameterRef:
		return ParameterSigil
	case ScopeValueRef:
		return ScopeValueSigil
	default:
		return 0
	}
}

// Token is a classified dependency declaration.
//
//	tok, _ := container.ParseToken("@mailer")  // {Kind: ServiceRef, Name: "mailer"}
type Token struct {
	Kind Kind
	Name string
}

// String renders the token back into its sigil form.
func (t Token) String() string {
	s := t.Kind.sigil()
	if s == 0 {
		return t.Name
	}
	return string(s) + t.Name
}

// ParseToken classifies a raw token by its leading sigil.
// It reports false when the token has no recognized sigil.
func ParseToken(raw string) (Token, bool) {
	if raw == "" {
		return Token{}, false
	}
	var kind Kind
	switch raw[0] {
	case ServiceSigil:
		kind = ServiceRef
	case ParameterSigil:
		kind = ParameterRef
	case ScopeValueSigil:
		kind = ScopeValueRef
	default:
		return Token{}, false
	}
	return Token{Kind: kind, Name: raw[1:]}, true
}

// classify is ParseToken with the declaring service attached to the failure.
func classify(service, raw string) (Token, error) {
	tok, ok := ParseToken(raw)
	if !ok {
		return Token{}, InvalidDependencyDeclarationError{Service: service, Dependency: raw}
	}
	return tok, nil
}

// Service, Parameter and ScopeValue build raw tokens, e.g. Service("db") == "@db".
func Service(name string) string    { return "@" + name }
func Parameter(name string) string  { return "%" + name }
func ScopeValue(name string) string { return "#" + name }
