// Package depgraph builds and queries the cross-file dependency graph.
// Nodes are canonical repo-relative paths; edges exist only where an import
// specifier resolved to a file in the known set, so external packages never
// create phantom nodes.
package depgraph

import (
	"sort"

	"arc/internal/extract"
)

// Edge is one resolved import relationship
type Edge struct {
	From       string   `json:"from"`
	To         string   `json:"to"`
	Kind       string   `json:"kind"` // "import" or "dynamic"
	Specifiers []string `json:"specifiers,omitempty"`
}

// Graph is the dependency graph over one file set. Forward and reverse
// adjacency are materialized at build time so every downstream query is
// O(1) per node. The graph is immutable after Build returns.
type Graph struct {
	Nodes   map[string]*extract.FileFacts `json:"nodes"`
	Edges   []Edge                        `json:"edges"`
	Forward map[string][]Edge             `json:"-"`
	Reverse map[string][]string           `json:"-"`
}

// NewGraph creates an empty graph
func NewGraph() *Graph {
	return &Graph{
		Nodes:   make(map[string]*extract.FileFacts),
		Edges:   []Edge{},
		Forward: make(map[string][]Edge),
		Reverse: make(map[string][]string),
	}
}

// HasNode reports whether path is a known file
func (g *Graph) HasNode(path string) bool {
	_, ok := g.Nodes[path]
	return ok
}

// Paths returns all node paths, sorted
func (g *Graph) Paths() []string {
	paths := make([]string, 0, len(g.Nodes))
	for p := range g.Nodes {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Dependents returns the unique files that import path (fan-in)
func (g *Graph) Dependents(path string) []string {
	return append([]string(nil), g.Reverse[path]...)
}

// Dependencies returns the unique files that path imports (fan-out)
func (g *Graph) Dependencies(path string) []string {
	seen := make(map[string]bool)
	var deps []string
	for _, e := range g.Forward[path] {
		if !seen[e.To] {
			seen[e.To] = true
			deps = append(deps, e.To)
		}
	}
	return deps
}

func (g *Graph) addEdge(e Edge) {
	g.Edges = append(g.Edges, e)
	g.Forward[e.From] = append(g.Forward[e.From], e)

	for _, from := range g.Reverse[e.To] {
		if from == e.From {
			return
		}
	}
	g.Reverse[e.To] = append(g.Reverse[e.To], e.From)
}
