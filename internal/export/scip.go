package export

import (
	"fmt"
	"strings"

	scippb "github.com/sourcegraph/scip/bindings/go/scip"
	"google.golang.org/protobuf/proto"

	"arc/internal/depgraph"
	"arc/internal/version"
)

var languageByExt = map[string]string{
	".ts":   "typescript",
	".tsx":  "typescript",
	".js":   "javascript",
	".jsx":  "javascript",
	".go":   "go",
	".py":   "python",
	".java": "java",
	".rs":   "rust",
}

// SCIP renders the graph as a serialized SCIP index. Every file becomes a
// document; exported symbols become definition SymbolInformation entries
// and resolved imports become reference occurrences at their import line.
func SCIP(g *depgraph.Graph, projectRoot string) ([]byte, error) {
	index := &scippb.Index{
		Metadata: &scippb.Metadata{
			Version: scippb.ProtocolVersion_UnspecifiedProtocolVersion,
			ToolInfo: &scippb.ToolInfo{
				Name:    "arc",
				Version: version.Version,
			},
			ProjectRoot:          "file://" + projectRoot,
			TextDocumentEncoding: scippb.TextEncoding_UTF8,
		},
	}

	for _, path := range g.Paths() {
		facts := g.Nodes[path]
		doc := &scippb.Document{
			RelativePath: path,
			Language:     languageFor(path),
		}

		for _, name := range facts.Exports {
			doc.Symbols = append(doc.Symbols, &scippb.SymbolInformation{
				Symbol:      symbolID(path, name),
				DisplayName: name,
			})
		}
		for _, fn := range facts.Functions {
			doc.Symbols = append(doc.Symbols, &scippb.SymbolInformation{
				Symbol:      symbolID(path, fn),
				DisplayName: fn,
				Kind:        scippb.SymbolInformation_Function,
			})
		}
		for _, class := range facts.Classes {
			doc.Symbols = append(doc.Symbols, &scippb.SymbolInformation{
				Symbol:      symbolID(path, class),
				DisplayName: class,
				Kind:        scippb.SymbolInformation_Class,
			})
		}

		for _, imp := range facts.Imports {
			if imp.ResolvedPath == "" {
				continue
			}
			line := int32(imp.Line - 1)
			if line < 0 {
				line = 0
			}
			doc.Occurrences = append(doc.Occurrences, &scippb.Occurrence{
				Range:       []int32{line, 0, line, int32(len(imp.Source))},
				Symbol:      fileSymbol(imp.ResolvedPath),
				SymbolRoles: int32(scippb.SymbolRole_Import),
			})
		}

		index.Documents = append(index.Documents, doc)
	}

	return proto.Marshal(index)
}

// symbolID formats a SCIP symbol for one named export of one file
func symbolID(path string, name string) string {
	return fmt.Sprintf("arc . . . %s/%s.", descriptorPath(path), name)
}

// fileSymbol formats the symbol standing for a whole file
func fileSymbol(path string) string {
	return fmt.Sprintf("arc . . . %s/", descriptorPath(path))
}

func descriptorPath(path string) string {
	return strings.ReplaceAll(path, " ", "_")
}

func languageFor(path string) string {
	if i := strings.LastIndex(path, "."); i >= 0 {
		if lang, ok := languageByExt[path[i:]]; ok {
			return lang
		}
	}
	return ""
}
