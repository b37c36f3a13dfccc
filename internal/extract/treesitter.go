//go:build cgo

package extract

import (
	"context"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/typescript/typescript"
)

// TreeSitterEnricher refines regex-extracted function and class facts with
// tree-sitter parses where a grammar is available. The regex output remains
// the portable baseline; enrichment only replaces facts on a clean parse.
type TreeSitterEnricher struct{}

// NewTreeSitterEnricher creates an enricher. Only available in cgo builds.
func NewTreeSitterEnricher() *TreeSitterEnricher {
	return &TreeSitterEnricher{}
}

// Available reports whether tree-sitter enrichment is compiled in.
func (e *TreeSitterEnricher) Available() bool { return true }

var sitterLanguages = map[string]*sitter.Language{
	"typescript": typescript.GetLanguage(),
	"javascript": javascript.GetLanguage(),
	"go":         golang.GetLanguage(),
	"python":     python.GetLanguage(),
}

var functionNodeTypes = map[string]map[string]bool{
	"typescript": {"function_declaration": true, "method_definition": true, "generator_function_declaration": true},
	"javascript": {"function_declaration": true, "method_definition": true, "generator_function_declaration": true},
	"go":         {"function_declaration": true, "method_declaration": true},
	"python":     {"function_definition": true},
}

var classNodeTypes = map[string]map[string]bool{
	"typescript": {"class_declaration": true, "interface_declaration": true},
	"javascript": {"class_declaration": true},
	"go":         {},
	"python":     {"class_definition": true},
}

// Enrich replaces facts.Functions and facts.Classes from a tree-sitter
// parse of content. A parse failure leaves the regex facts untouched.
func (e *TreeSitterEnricher) Enrich(ctx context.Context, facts *FileFacts, content []byte, language string) {
	lang, ok := sitterLanguages[language]
	if !ok {
		return
	}

	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(lang)

	tree, err := parser.ParseCtx(ctx, nil, content)
	if err != nil || tree == nil {
		return
	}
	defer tree.Close()

	fnTypes := functionNodeTypes[language]
	clsTypes := classNodeTypes[language]

	var functions, classes []string
	seenFn := make(map[string]bool)
	seenCls := make(map[string]bool)

	// Explicit stack walk; source trees can nest deeply
	stack := []*sitter.Node{tree.RootNode()}
	for len(stack) > 0 {
		node := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		nodeType := node.Type()
		if fnTypes[nodeType] || clsTypes[nodeType] {
			if name := nodeName(node, content); name != "" {
				if fnTypes[nodeType] && !seenFn[name] {
					seenFn[name] = true
					functions = append(functions, name)
				}
				if clsTypes[nodeType] && !seenCls[name] {
					seenCls[name] = true
					classes = append(classes, name)
				}
			}
		}

		for i := int(node.NamedChildCount()) - 1; i >= 0; i-- {
			stack = append(stack, node.NamedChild(i))
		}
	}

	if len(functions) > 0 {
		facts.Functions = functions
	}
	if len(classes) > 0 {
		facts.Classes = classes
	}
}

func nodeName(node *sitter.Node, source []byte) string {
	if name := node.ChildByFieldName("name"); name != nil {
		return name.Content(source)
	}
	return ""
}
