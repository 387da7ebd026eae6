package container_test

import (
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/km-arc/go-inject/framework/container"
)

type user struct{ name string }

func scopedConfig(calls *int) container.Config {
	return container.Config{
		Services: map[string]container.Definition{
			"bar": {
				Factory: func(baz string) *user {
					*calls++
					return &user{name: baz}
				},
				Dependencies: container.Positional{"#baz"},
				Scopes:       []string{"someScope"},
			},
		},
		ScopeTypes: map[string][]string{"someScope": {"baz"}},
	}
}

func TestCreateScope_ResolvesScopeValueDependency(t *testing.T) {
	calls := 0
	c := container.MustBuild(scopedConfig(&calls))

	scope, err := c.CreateScope("someScope", map[string]any{"baz": "bazz"})
	require.NoError(t, err)
	assert.Equal(t, "someScope", scope.Name())

	got, err := scope.Get("@bar")
	require.NoError(t, err)
	assert.Equal(t, &user{name: "bazz"}, got)

	baz, err := scope.Get("#baz")
	require.NoError(t, err)
	assert.Equal(t, "bazz", baz)
}

func TestCreateScope_MissingScopeValue(t *testing.T) {
	calls := 0
	c := container.MustBuild(scopedConfig(&calls))

	scope, err := c.CreateScope("someScope", map[string]any{})
	assert.Nil(t, scope)

	var target container.MissingScopeValueError
	require.True(t, errors.As(err, &target))
	assert.Equal(t, "someScope", target.Scope)
	assert.Equal(t, "baz", target.Value)
}

func TestCreateScope_UndefinedScope(t *testing.T) {
	c := container.MustBuild(container.Config{})

	_, err := c.CreateScope("nope", map[string]any{"a": 1})

	var target container.UndefinedScopeError
	require.True(t, errors.As(err, &target))
	assert.Equal(t, "nope", target.Scope)
}

func TestCreateScope_GlobalNeedsNoValues(t *testing.T) {
	c := container.MustBuild(container.Config{Services: map[string]container.Definition{"foo": {Factory: noop}}})

	scope, err := c.CreateScope(container.GlobalScope, nil)
	require.NoError(t, err)
	assert.Equal(t, container.GlobalScope, scope.Name())

	_, err = scope.Get("@foo")
	assert.NoError(t, err)
}

func TestCreateScope_NoRequiredValues(t *testing.T) {
	c := container.MustBuild(container.Config{ScopeTypes: map[string][]string{"job": nil}})

	_, err := c.CreateScope("job", nil)
	assert.NoError(t, err)
}

func TestCreateScope_ValuesAreCopied(t *testing.T) {
	calls := 0
	c := container.MustBuild(scopedConfig(&calls))

	values := map[string]any{"baz": "first"}
	scope, err := c.CreateScope("someScope", values)
	require.NoError(t, err)
	values["baz"] = "second"

	got, err := scope.Get("#baz")
	require.NoError(t, err)
	assert.Equal(t, "first", got)
}

func TestScope_Isolation(t *testing.T) {
	calls := 0
	c := container.MustBuild(scopedConfig(&calls))

	s1, err := c.CreateScope("someScope", map[string]any{"baz": "one"})
	require.NoError(t, err)
	s2, err := c.CreateScope("someScope", map[string]any{"baz": "two"})
	require.NoError(t, err)

	a1, err := s1.Get("@bar")
	require.NoError(t, err)
	a2, err := s1.Get("@bar")
	require.NoError(t, err)
	b1, err := s2.Get("@bar")
	require.NoError(t, err)

	assert.Same(t, a1, a2, "singleton cached per scope instance")
	assert.NotSame(t, a1, b1, "scope instances never share caches")
	assert.Equal(t, "one", a1.(*user).name)
	assert.Equal(t, "two", b1.(*user).name)
	assert.Equal(t, 2, calls)
}

func TestScope_GlobalServiceBuiltPerScopeInstance(t *testing.T) {
	calls := 0
	c := container.MustBuild(container.Config{
		Services: map[string]container.Definition{
			"clock": {Factory: func() *user { calls++; return &user{} }},
		},
		ScopeTypes: map[string][]string{"request": nil},
	})

	global, err := c.Get("@clock")
	require.NoError(t, err)
	req, err := c.CreateScope("request", nil)
	require.NoError(t, err)
	scoped, err := req.Get("@clock")
	require.NoError(t, err)

	assert.NotSame(t, global, scoped)
	assert.Equal(t, 2, calls)
}

func TestScope_ServiceNotInScope(t *testing.T) {
	calls := 0
	cfg := scopedConfig(&calls)
	cfg.AddScopeType("other")
	c := container.MustBuild(cfg)

	_, err := c.Get("@bar")
	var target container.ServiceNotInScopeError
	require.True(t, errors.As(err, &target))
	assert.Equal(t, container.GlobalScope, target.Scope)

	other, err := c.CreateScope("other", nil)
	require.NoError(t, err)
	_, err = other.Get("@bar")
	require.True(t, errors.As(err, &target))
	assert.Equal(t, "other", target.Scope)
	assert.Equal(t, 0, calls)
}

func TestScope_EveryInstance(t *testing.T) {
	calls := 0
	c := container.MustBuild(container.Config{
		Services: map[string]container.Definition{
			"foo": {
				Factory:   func() *user { calls++; return &user{} },
				Lifecycle: container.EveryInstance,
			},
		},
	})

	first, err := c.Get("@foo")
	require.NoError(t, err)
	second, err := c.Get("@foo")
	require.NoError(t, err)

	assert.NotSame(t, first, second)
	assert.Equal(t, 2, calls)
}

func TestScope_SingletonDependenciesResolvedOnce(t *testing.T) {
	depCalls, calls := 0, 0
	c := container.MustBuild(container.Config{
		Services: map[string]container.Definition{
			"dep": {Factory: func() int { depCalls++; return depCalls }, Lifecycle: container.EveryInstance},
			"foo": {Factory: func(n int) int { calls++; return n }, Dependencies: container.Positional{"@dep"}},
		},
	})

	for i := 0; i < 3; i++ {
		v, err := c.Get("@foo")
		require.NoError(t, err)
		assert.Equal(t, 1, v)
	}
	assert.Equal(t, 1, depCalls)
	assert.Equal(t, 1, calls)
}

func TestScope_FactoryErrorNotCached(t *testing.T) {
	errDown := errors.New("database down")
	attempts := 0
	c := container.MustBuild(container.Config{
		Services: map[string]container.Definition{
			"db": {Factory: func() (string, error) {
				attempts++
				if attempts == 1 {
					return "", errDown
				}
				return "connected", nil
			}},
		},
	})

	_, err := c.Get("@db")
	var target container.ServiceInstantiationError
	require.True(t, errors.As(err, &target))
	assert.Equal(t, "db", target.Service)
	assert.ErrorIs(t, err, errDown)

	got, err := c.Get("@db")
	require.NoError(t, err)
	assert.Equal(t, "connected", got)
	assert.Equal(t, 2, attempts)
}

func TestScope_ErrorOnlyFactory(t *testing.T) {
	errInit := errors.New("init failed")
	c := container.MustBuild(container.Config{
		Services: map[string]container.Definition{
			"init": {Factory: func() error { return errInit }},
		},
	})

	_, err := c.Get("@init")
	assert.ErrorIs(t, err, errInit)
}

func TestScope_FactoryPanicWrapped(t *testing.T) {
	c := container.MustBuild(container.Config{
		Services: map[string]container.Definition{
			"boom": {Factory: func() string { panic("kaboom") }},
		},
	})

	_, err := c.Get("@boom")

	var target container.ServiceInstantiationError
	require.True(t, errors.As(err, &target))
	assert.Equal(t, "boom", target.Service)
	assert.Contains(t, err.Error(), "kaboom")
}

func TestScope_DependencyErrorKeepsContext(t *testing.T) {
	errDown := errors.New("down")
	c := container.MustBuild(container.Config{
		Services: map[string]container.Definition{
			"db":   {Factory: func() (string, error) { return "", errDown }},
			"repo": {Factory: func(db string) string { return db }, Dependencies: container.Positional{"@db"}},
		},
	})

	_, err := c.Get("@repo")

	var target container.ServiceInstantiationError
	require.True(t, errors.As(err, &target))
	assert.Equal(t, "db", target.Service, "innermost failing service is preserved")
	assert.ErrorIs(t, err, errDown)
	assert.Contains(t, err.Error(), `"@repo"`)
}

func TestScope_RuntimeCycleGuard(t *testing.T) {
	c := container.MustBuild(container.Config{
		Services: map[string]container.Definition{
			"a": {Factory: func(any) int { return 1 }, Dependencies: container.Positional{"@b"}},
			"b": {Factory: func(any) int { return 1 }, Dependencies: container.Positional{"@c"}},
			"c": {Factory: func(any) int { return 1 }, Dependencies: container.Positional{"@a"}},
		},
	})

	_, err := c.Get("@a")

	var target container.CircularDependencyError
	require.True(t, errors.As(err, &target))
	assert.Equal(t, []string{"a", "b", "c", "a"}, target.Path)
}

func TestScope_CreateScopeFromScope(t *testing.T) {
	calls := 0
	cfg := scopedConfig(&calls)
	c := container.MustBuild(cfg)

	s1, err := c.CreateScope("someScope", map[string]any{"baz": "one"})
	require.NoError(t, err)

	s2, err := s1.CreateScope("someScope", map[string]any{"baz": "two"})
	require.NoError(t, err)
	got, err := s2.Get("#baz")
	require.NoError(t, err)
	assert.Equal(t, "two", got, "derived scopes do not inherit values")

	_, err = s1.CreateScope("someScope", nil)
	var target container.MissingScopeValueError
	assert.True(t, errors.As(err, &target), "derived scopes are validated against the catalog")
}

func TestScope_Resolve(t *testing.T) {
	calls := 0
	c := container.MustBuild(scopedConfig(&calls))
	scope, err := c.CreateScope("someScope", map[string]any{"baz": "ada"})
	require.NoError(t, err)

	u, err := container.Resolve[*user](scope, "@bar")
	require.NoError(t, err)
	assert.Equal(t, "ada", u.name)
}

func TestScope_ConcurrentScopes(t *testing.T) {
	var mu sync.Mutex
	calls := 0
	c := container.MustBuild(container.Config{
		Services: map[string]container.Definition{
			"bar": {
				Factory: func(baz string) *user {
					mu.Lock()
					calls++
					mu.Unlock()
					return &user{name: baz}
				},
				Dependencies: container.Positional{"#baz"},
				Scopes:       []string{"someScope"},
			},
		},
		ScopeTypes: map[string][]string{"someScope": {"baz"}},
	})

	const workers = 8
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			scope, err := c.CreateScope("someScope", map[string]any{"baz": fmt.Sprint(i)})
			if !assert.NoError(t, err) {
				return
			}
			for j := 0; j < 4; j++ {
				u, err := container.Resolve[*user](scope, "@bar")
				assert.NoError(t, err)
				assert.Equal(t, fmt.Sprint(i), u.name)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, workers, calls)
}

func TestScope_Logging(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	c := container.MustBuild(container.Config{
		Services: map[string]container.Definition{
			"ok":  {Factory: noop},
			"bad": {Factory: func() (string, error) { return "", errors.New("nope") }},
		},
		ScopeTypes: map[string][]string{"request": nil},
	}, container.WithLogger(zap.New(core)))

	assert.Equal(t, 1, logs.FilterMessage("container built").Len())

	_, err := c.Get("@ok")
	require.NoError(t, err)
	instantiated := logs.FilterMessage("service instantiated").All()
	require.Len(t, instantiated, 1)
	assert.Equal(t, "ok", instantiated[0].ContextMap()["service"])

	_, err = c.Get("@bad")
	require.Error(t, err)
	failed := logs.FilterMessage("service instantiation failed").All()
	require.Len(t, failed, 1)
	assert.Equal(t, zapcore.WarnLevel, failed[0].Level)

	_, err = c.CreateScope("request", nil)
	require.NoError(t, err)
	assert.Equal(t, 1, logs.FilterMessage("scope created").Len())
}
