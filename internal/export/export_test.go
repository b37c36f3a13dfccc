package export

import (
	"encoding/json"
	"testing"

	scippb "github.com/sourcegraph/scip/bindings/go/scip"
	"google.golang.org/protobuf/proto"

	"arc/internal/depgraph"
	"arc/internal/extract"
)

func exportFixture() *depgraph.Graph {
	g := depgraph.NewGraph()

	a := extract.EmptyFacts("src/a.ts")
	a.Exports = []string{"handler"}
	a.Functions = []string{"handler"}
	a.Imports = []extract.Import{{Source: "./b", ResolvedPath: "src/b.ts", Line: 1}}

	b := extract.EmptyFacts("src/b.ts")
	b.Exports = []string{"store"}
	b.Classes = []string{"Store"}

	g.Nodes["src/a.ts"] = a
	g.Nodes["src/b.ts"] = b

	edge := depgraph.Edge{From: "src/a.ts", To: "src/b.ts", Kind: "import"}
	g.Edges = append(g.Edges, edge)
	g.Forward["src/a.ts"] = []depgraph.Edge{edge}
	g.Reverse["src/b.ts"] = []string{"src/a.ts"}
	return g
}

func TestJSONExport(t *testing.T) {
	data, err := JSON(exportFixture())
	if err != nil {
		t.Fatalf("JSON: %v", err)
	}

	var doc GraphDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if doc.FileCount != 2 || doc.EdgeCount != 1 {
		t.Errorf("counts = (%d, %d), want (2, 1)", doc.FileCount, doc.EdgeCount)
	}
	if len(doc.Cycles) != 0 {
		t.Errorf("cycles = %v, want none", doc.Cycles)
	}
	// src/b.ts: one dependent, one export
	if doc.Importance["src/b.ts"] != 3 {
		t.Errorf("importance[src/b.ts] = %d, want 3", doc.Importance["src/b.ts"])
	}
	if doc.Importance["src/a.ts"] != 1 {
		t.Errorf("importance[src/a.ts] = %d, want 1", doc.Importance["src/a.ts"])
	}
}

func TestSCIPExport(t *testing.T) {
	data, err := SCIP(exportFixture(), "/repo")
	if err != nil {
		t.Fatalf("SCIP: %v", err)
	}

	var index scippb.Index
	if err := proto.Unmarshal(data, &index); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	if index.Metadata == nil || index.Metadata.ToolInfo.Name != "arc" {
		t.Fatalf("metadata = %+v", index.Metadata)
	}
	if index.Metadata.ProjectRoot != "file:///repo" {
		t.Errorf("project root = %q", index.Metadata.ProjectRoot)
	}
	if len(index.Documents) != 2 {
		t.Fatalf("documents = %d, want 2", len(index.Documents))
	}

	// Paths() sorts, so src/a.ts comes first
	docA := index.Documents[0]
	if docA.RelativePath != "src/a.ts" || docA.Language != "typescript" {
		t.Errorf("doc A = %q %q", docA.RelativePath, docA.Language)
	}
	// one export symbol plus one function symbol
	if len(docA.Symbols) != 2 {
		t.Errorf("doc A symbols = %d, want 2", len(docA.Symbols))
	}
	if len(docA.Occurrences) != 1 {
		t.Fatalf("doc A occurrences = %d, want 1", len(docA.Occurrences))
	}
	occ := docA.Occurrences[0]
	if occ.Range[0] != 0 || occ.SymbolRoles != int32(scippb.SymbolRole_Import) {
		t.Errorf("occurrence = %+v", occ)
	}

	docB := index.Documents[1]
	if len(docB.Occurrences) != 0 {
		t.Errorf("doc B occurrences = %d, want 0", len(docB.Occurrences))
	}
	var hasClass bool
	for _, sym := range docB.Symbols {
		if sym.Kind == scippb.SymbolInformation_Class && sym.DisplayName == "Store" {
			hasClass = true
		}
	}
	if !hasClass {
		t.Errorf("doc B missing class symbol: %+v", docB.Symbols)
	}
}
