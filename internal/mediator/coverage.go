package mediator

import (
	"sort"

	"arc/internal/depgraph"
)

// CoverageTracker records which high-importance files have been referenced
// by any round's output. Gaps are proactive guidance, never a gate.
type CoverageTracker struct {
	critical      map[string]bool
	referenced    map[string]bool
	minImportance int
}

// NewCoverageTracker computes the critical file set from importance scores
func NewCoverageTracker(g *depgraph.Graph, minImportance int) *CoverageTracker {
	t := &CoverageTracker{
		critical:      make(map[string]bool),
		referenced:    make(map[string]bool),
		minImportance: minImportance,
	}
	for _, path := range g.Paths() {
		if depgraph.ImportanceScore(g, path) >= minImportance {
			t.critical[path] = true
		}
	}
	return t
}

// withGraph recomputes the critical set against a new graph, keeping marks
func (t *CoverageTracker) withGraph(g *depgraph.Graph) *CoverageTracker {
	next := NewCoverageTracker(g, t.minImportance)
	for path := range t.referenced {
		next.referenced[path] = true
	}
	return next
}

// MarkReferenced records files mentioned in round output
func (t *CoverageTracker) MarkReferenced(paths ...string) {
	for _, p := range paths {
		t.referenced[p] = true
	}
}

// CriticalFiles returns the sorted critical set
func (t *CoverageTracker) CriticalFiles() []string {
	return sortedKeys(t.critical)
}

// CriticalGaps returns critical files no round has referenced yet, sorted
func (t *CoverageTracker) CriticalGaps() []string {
	var gaps []string
	for path := range t.critical {
		if !t.referenced[path] {
			gaps = append(gaps, path)
		}
	}
	sort.Strings(gaps)
	return gaps
}

func sortedKeys(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
