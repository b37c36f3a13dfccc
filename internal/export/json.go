// Package export serializes a dependency graph for outer tooling, as plain
// JSON or as a SCIP index.
package export

import (
	"encoding/json"
	"time"

	"arc/internal/depgraph"
	"arc/internal/extract"
)

// GraphDocument is the JSON export shape: the full graph plus the derived
// views outer tooling usually wants alongside it
type GraphDocument struct {
	GeneratedAt time.Time                     `json:"generatedAt"`
	FileCount   int                           `json:"fileCount"`
	EdgeCount   int                           `json:"edgeCount"`
	Nodes       map[string]*extract.FileFacts `json:"nodes"`
	Edges       []depgraph.Edge               `json:"edges"`
	Cycles      [][]string                    `json:"cycles,omitempty"`
	Importance  map[string]int                `json:"importance"`
}

// JSON renders the graph with cycle and importance annotations
func JSON(g *depgraph.Graph) ([]byte, error) {
	doc := GraphDocument{
		GeneratedAt: time.Now().UTC(),
		FileCount:   len(g.Nodes),
		EdgeCount:   len(g.Edges),
		Nodes:       g.Nodes,
		Edges:       g.Edges,
		Cycles:      depgraph.DetectCycles(g),
		Importance:  make(map[string]int, len(g.Nodes)),
	}
	for _, path := range g.Paths() {
		doc.Importance[path] = depgraph.ImportanceScore(g, path)
	}
	return json.MarshalIndent(doc, "", "  ")
}
