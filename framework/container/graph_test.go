package container_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/km-arc/go-inject/framework/container"
)

func graphContainer(t *testing.T) *container.Container {
	t.Helper()
	return container.MustBuild(container.Config{
		Parameters: map[string]any{"dsn": "sqlite://"},
		Services: map[string]container.Definition{
			"db":   {Factory: func(string) int { return 0 }, Dependencies: container.Positional{"%dsn"}},
			"repo": {Factory: func(int) int { return 0 }, Dependencies: container.Positional{"@db"}},
			"handler": {
				Factory:      func(container.Args) int { return 0 },
				Dependencies: container.Named{"repo": "@repo", "user": "#user"},
				Lifecycle:    container.EveryInstance,
				Scopes:       []string{"request"},
			},
		},
		ScopeTypes: map[string][]string{"request": {"user"}},
	})
}

func TestGraph_NodesAndEdges(t *testing.T) {
	g := graphContainer(t).Graph()

	assert.Equal(t, []container.GraphNode{
		{Service: "db", Lifecycle: container.Singleton, Scopes: []string{container.GlobalScope}},
		{Service: "handler", Lifecycle: container.EveryInstance, Scopes: []string{"request"}},
		{Service: "repo", Lifecycle: container.Singleton, Scopes: []string{container.GlobalScope}},
	}, g.Nodes)
	assert.Equal(t, []container.GraphEdge{
		{From: "handler", To: "repo"},
		{From: "repo", To: "db"},
	}, g.Edges)
}

func TestGraph_DOT(t *testing.T) {
	dot := graphContainer(t).Graph().DOT()

	assert.Contains(t, dot, "digraph container {")
	assert.Contains(t, dot, `n0 [label="@db"];`)
	assert.Contains(t, dot, `n1 [label="@handler\n(request)"];`)
	assert.Contains(t, dot, "n1 -> n2;")
	assert.Contains(t, dot, "n2 -> n0;")
}

func TestGraph_Mermaid(t *testing.T) {
	m := graphContainer(t).Graph().Mermaid()

	assert.Contains(t, m, "graph TD\n")
	assert.Contains(t, m, `n1["@handler<br/>(request)"]`)
	assert.Contains(t, m, "n2 --> n0")
}

func TestGraph_Empty(t *testing.T) {
	g := container.MustBuild(container.Config{}).Graph()

	assert.Empty(t, g.Nodes)
	assert.Equal(t, "digraph container {\n  rankdir=LR;\n}\n", g.DOT())
	assert.Equal(t, "graph TD\n", g.Mermaid())
}
