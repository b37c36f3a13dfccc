package depgraph

import (
	"context"
	"encoding/hex"
	"errors"
	"io/fs"
	"os"
	gopath "path"
	"runtime"
	"sort"
	"sync"

	"golang.org/x/crypto/blake2b"

	"arc/internal/extract"
	"arc/internal/logging"
	"arc/internal/paths"
)

// FileReader abstracts file access so tests can inject in-memory content.
// A missing file must be reported with fs.ErrNotExist.
type FileReader interface {
	Read(path string) ([]byte, error)
}

// OSReader reads from the local filesystem
type OSReader struct{}

// Read implements FileReader
func (OSReader) Read(path string) ([]byte, error) {
	return os.ReadFile(path)
}

// Builder analyzes files and assembles dependency graphs. Safe for reuse
// across builds; holds no per-build state.
type Builder struct {
	registry    *extract.Registry
	reader      FileReader
	enricher    *extract.TreeSitterEnricher
	logger      *logging.Logger
	workers     int
	maxFileSize int
}

// BuilderOption configures a Builder
type BuilderOption func(*Builder)

// WithReader injects a FileReader (default: OSReader)
func WithReader(r FileReader) BuilderOption {
	return func(b *Builder) { b.reader = r }
}

// WithWorkers sets the parallel extraction worker count (default: NumCPU)
func WithWorkers(n int) BuilderOption {
	return func(b *Builder) { b.workers = n }
}

// WithMaxFileSize caps the size of files scanned for facts
func WithMaxFileSize(n int) BuilderOption {
	return func(b *Builder) { b.maxFileSize = n }
}

// WithEnricher attaches tree-sitter enrichment (no-op without cgo)
func WithEnricher(e *extract.TreeSitterEnricher) BuilderOption {
	return func(b *Builder) { b.enricher = e }
}

// NewBuilder creates a Builder over the given extractor registry
func NewBuilder(registry *extract.Registry, logger *logging.Logger, opts ...BuilderOption) *Builder {
	b := &Builder{
		registry:    registry,
		reader:      OSReader{},
		logger:      logger,
		workers:     runtime.NumCPU(),
		maxFileSize: 1_000_000,
	}
	for _, opt := range opts {
		opt(b)
	}
	if b.workers < 1 {
		b.workers = runtime.NumCPU()
	}
	return b
}

// AnalyzeFile extracts facts for one file. A missing file yields (nil, nil);
// any other read failure is logged and degrades to empty facts. One bad file
// never aborts a build.
func (b *Builder) AnalyzeFile(file string, workingDir string) (*extract.FileFacts, error) {
	canonical, err := paths.Canonicalize(file, workingDir)
	if err != nil {
		b.logger.Warn("Cannot canonicalize path", map[string]interface{}{
			"file":  file,
			"error": err.Error(),
		})
		return extract.EmptyFacts(paths.Normalize(file)), nil
	}

	content, err := b.reader.Read(paths.JoinRepo(workingDir, canonical))
	if err != nil {
		if isNotExist(err) {
			return nil, nil
		}
		b.logger.Warn("Read failed, using empty facts", map[string]interface{}{
			"file":  canonical,
			"error": err.Error(),
		})
		return extract.EmptyFacts(canonical), nil
	}

	if b.maxFileSize > 0 && len(content) > b.maxFileSize {
		b.logger.Debug("Skipping oversized file", map[string]interface{}{
			"file": canonical,
			"size": len(content),
		})
		return extract.EmptyFacts(canonical), nil
	}

	extractor, ok := b.registry.ForPath(canonical)
	if !ok {
		// Unsupported files still get a node so connectivity through them
		// is preserved
		facts := extract.EmptyFacts(canonical)
		facts.Fingerprint = fingerprint(content)
		return facts, nil
	}

	facts := extractor.Extract(canonical, content)
	facts.Fingerprint = fingerprint(content)
	if b.enricher != nil && b.enricher.Available() {
		b.enricher.Enrich(context.Background(), facts, content, extractor.Language())
	}
	return facts, nil
}

// Build analyzes every file and assembles the graph. Fact extraction runs
// in parallel per file; edge resolution runs in a second pass once all
// facts exist, since cross-file resolution needs the complete file set.
// Output is deterministic for a fixed file set and content.
func (b *Builder) Build(files []string, workingDir string) *Graph {
	canonical := make([]string, 0, len(files))
	seen := make(map[string]bool)
	for _, f := range files {
		c, err := paths.Canonicalize(f, workingDir)
		if err != nil {
			c = paths.Normalize(f)
		}
		if !seen[c] {
			seen[c] = true
			canonical = append(canonical, c)
		}
	}
	sort.Strings(canonical)

	// Pass 1: extract facts in parallel. Workers share nothing but the
	// result slot for their own index.
	results := make([]*extract.FileFacts, len(canonical))
	var wg sync.WaitGroup
	sem := make(chan struct{}, b.workers)
	for i, file := range canonical {
		wg.Add(1)
		sem <- struct{}{}
		go func(i int, file string) {
			defer wg.Done()
			defer func() { <-sem }()
			facts, _ := b.AnalyzeFile(file, workingDir)
			results[i] = facts
		}(i, file)
	}
	wg.Wait()

	g := NewGraph()
	for _, facts := range results {
		if facts != nil {
			g.Nodes[facts.Path] = facts
		}
	}

	// Pass 2: resolve imports against the complete node set and materialize
	// both adjacency directions in the same pass.
	for _, file := range canonical {
		facts, ok := g.Nodes[file]
		if !ok {
			continue
		}
		extractor, ok := b.registry.ForPath(file)
		if !ok {
			continue
		}
		for i := range facts.Imports {
			imp := &facts.Imports[i]
			target := b.resolveImport(g, extractor, file, imp.Source)
			if target == "" {
				continue
			}
			imp.ResolvedPath = target
			kind := "import"
			if imp.IsDynamic {
				kind = "dynamic"
			}
			g.addEdge(Edge{
				From:       file,
				To:         target,
				Kind:       kind,
				Specifiers: imp.Specifiers,
			})
		}
	}

	b.logger.Debug("Dependency graph built", map[string]interface{}{
		"files": len(g.Nodes),
		"edges": len(g.Edges),
	})
	return g
}

// resolveImport tries the extractor's ordered suffix list over the known
// file set. Returns "" for external or unresolved specifiers.
func (b *Builder) resolveImport(g *Graph, extractor extract.Extractor, from string, spec string) string {
	rel, ok := extractor.ResolveSpecifier(spec)
	if !ok {
		return ""
	}
	base := gopath.Join(gopath.Dir(from), rel)
	for _, suffix := range extractor.ResolutionSuffixes() {
		candidate := gopath.Clean(base + suffix)
		if candidate == from {
			continue // self-import would be degenerate
		}
		if g.HasNode(candidate) {
			return candidate
		}
	}
	return ""
}

func fingerprint(content []byte) string {
	sum := blake2b.Sum256(content)
	return hex.EncodeToString(sum[:16])
}

func isNotExist(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}
