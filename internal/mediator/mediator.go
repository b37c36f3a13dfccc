// Package mediator answers impact questions over one session's dependency
// graph: ripple effect of a hypothetical change, blast radius of a raised
// issue, coverage of critical files, and advisory interventions.
package mediator

import (
	"sort"
	"strings"

	"arc/internal/config"
	"arc/internal/depgraph"
	"arc/internal/logging"
)

// Mediator wraps one session's graph. It holds no round state of its own
// beyond the coverage tracker; every analysis reads the current graph.
type Mediator struct {
	graph    *depgraph.Graph
	coverage *CoverageTracker
	logger   *logging.Logger
	cfg      config.MediatorConfig
}

// New creates a mediator over a freshly built session graph
func New(g *depgraph.Graph, cfg config.MediatorConfig, logger *logging.Logger) *Mediator {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Mediator{
		graph:    g,
		coverage: NewCoverageTracker(g, cfg.CriticalImportanceMin),
		logger:   logger,
		cfg:      cfg,
	}
}

// SetGraph swaps in a rebuilt graph after context expansion. Coverage marks
// survive the swap; the critical set is recomputed from the new graph.
func (m *Mediator) SetGraph(g *depgraph.Graph) {
	m.graph = g
	m.coverage = m.coverage.withGraph(g)
}

// Graph returns the current session graph
func (m *Mediator) Graph() *depgraph.Graph {
	return m.graph
}

// Coverage returns the critical-file coverage tracker
func (m *Mediator) Coverage() *CoverageTracker {
	return m.coverage
}

// RippleEffect computes what else is touched if file (optionally function)
// changes: reverse-BFS up to maxDepth, depth-1 dependents classified DIRECT,
// deeper ones INDIRECT, test files split out. Returns nil if the file is not
// a graph node. maxDepth <= 0 falls back to the configured ripple depth.
func (m *Mediator) RippleEffect(file string, function string, maxDepth int) *RippleEffect {
	if maxDepth <= 0 {
		maxDepth = m.cfg.MaxRippleDepth
	}
	if !m.graph.HasNode(file) {
		return nil
	}

	effect := &RippleEffect{
		Source:       file,
		Function:     function,
		Direct:       []string{},
		Indirect:     []string{},
		RelatedTests: []string{},
	}

	type item struct {
		node  string
		depth int
	}
	visited := map[string]bool{file: true}
	queue := []item{{file, 0}}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur.depth == maxDepth {
			continue
		}
		for _, dependent := range m.graph.Reverse[cur.node] {
			if visited[dependent] {
				continue
			}
			visited[dependent] = true
			depth := cur.depth + 1
			if depth > effect.CascadeDepth {
				effect.CascadeDepth = depth
			}
			switch {
			case IsTestFile(dependent):
				effect.RelatedTests = append(effect.RelatedTests, dependent)
			case depth == 1:
				effect.Direct = append(effect.Direct, dependent)
			default:
				effect.Indirect = append(effect.Indirect, dependent)
			}
			queue = append(queue, item{dependent, depth})
		}
	}

	sort.Strings(effect.Direct)
	sort.Strings(effect.Indirect)
	sort.Strings(effect.RelatedTests)
	return effect
}

// IsTestFile applies cross-language test-naming heuristics to a
// repo-relative path.
func IsTestFile(path string) bool {
	lower := strings.ToLower(path)
	for _, dir := range []string{"test/", "tests/", "__tests__/", "spec/"} {
		if strings.HasPrefix(lower, dir) || strings.Contains(lower, "/"+dir) {
			return true
		}
	}
	base := lower
	if i := strings.LastIndex(lower, "/"); i >= 0 {
		base = lower[i+1:]
	}
	return strings.Contains(base, "_test.") ||
		strings.Contains(base, ".test.") ||
		strings.Contains(base, ".spec.") ||
		strings.HasPrefix(base, "test_")
}
