//go:build !cgo

package extract

import "context"

// TreeSitterEnricher is unavailable without cgo; all methods are no-ops so
// callers need no build-tag awareness.
type TreeSitterEnricher struct{}

// NewTreeSitterEnricher creates a no-op enricher for non-cgo builds.
func NewTreeSitterEnricher() *TreeSitterEnricher {
	return &TreeSitterEnricher{}
}

// Available reports whether tree-sitter enrichment is compiled in.
func (e *TreeSitterEnricher) Available() bool { return false }

// Enrich is a no-op without cgo.
func (e *TreeSitterEnricher) Enrich(ctx context.Context, facts *FileFacts, content []byte, language string) {
}
