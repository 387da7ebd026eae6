package container

import (
	"fmt"
	"strings"
)

// GraphNode is one declared service.
type GraphNode struct {
	Service   string    `json:"service"`
	Lifecycle Lifecycle `json:"lifecycle"`
	Scopes    []string  `json:"scopes"`
}

// GraphEdge means "From depends on To". Only service dependencies are edges.
type GraphEdge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Graph is a snapshot of the service dependency graph.
type Graph struct {
	Nodes []GraphNode `json:"nodes"`
	Edges []GraphEdge `json:"edges"`
}

// Graph returns the service graph, nodes sorted by name and edges in
// dependency order.
func (c *Container) Graph() Graph {
	var g Graph
	for _, name := range c.Services() {
		svc := c.services[name]
		g.Nodes = append(g.Nodes, GraphNode{
			Service:   name,
			Lifecycle: svc.def.Lifecycle,
			Scopes:    append([]string(nil), svc.def.Scopes...),
		})
		for _, tok := range svc.dependencies() {
			if tok.Kind == ServiceRef {
				g.Edges = append(g.Edges, GraphEdge{From: name, To: tok.Name})
			}
		}
	}
	return g
}

// DOT exports Graphviz DOT text. Scoped services are labelled with their scopes.
func (g Graph) DOT() string {
	var b strings.Builder
	b.WriteString("digraph container {\n")
	b.WriteString("  rankdir=LR;\n")

	aliases := make(map[string]string, len(g.Nodes))
	for i, n := range g.Nodes {
		alias := fmt.Sprintf("n%d", i)
		aliases[n.Service] = alias
		b.WriteString(fmt.Sprintf("  %s [label=\"%s\"];\n", alias, escapeQuotes(n.label("\\n"))))
	}
	for _, e := range g.Edges {
		from, okFrom := aliases[e.From]
		to, okTo := aliases[e.To]
		if !okFrom || !okTo {
			continue
		}
		b.WriteString(fmt.Sprintf("  %s -> %s;\n", from, to))
	}
	b.WriteString("}\n")
	return b.String()
}

// Mermaid exports Mermaid graph text.
func (g Graph) Mermaid() string {
	var b strings.Builder
	b.WriteString("graph TD\n")

	aliases := make(map[string]string, len(g.Nodes))
	for i, n := range g.Nodes {
		alias := fmt.Sprintf("n%d", i)
		aliases[n.Service] = alias
		b.WriteString(fmt.Sprintf("    %s[\"%s\"]\n", alias, escapeQuotes(n.label("<br/>"))))
	}
	for _, e := range g.Edges {
		from, okFrom := aliases[e.From]
		to, okTo := aliases[e.To]
		if !okFrom || !okTo {
			continue
		}
		b.WriteString(fmt.Sprintf("    %s --> %s\n", from, to))
	}
	return b.String()
}

func (n GraphNode) label(sep string) string {
	label := "@" + n.Service
	if len(n.Scopes) > 0 && !(len(n.Scopes) == 1 && n.Scopes[0] == GlobalScope) {
		label += sep + "(" + strings.Join(n.Scopes, ", ") + ")"
	}
	return label
}

func escapeQuotes(s string) string {
	return strings.ReplaceAll(s, "\"", "\\\"")
}
