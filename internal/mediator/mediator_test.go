package mediator

import (
	"reflect"
	"sort"
	"testing"

	"arc/internal/config"
	"arc/internal/depgraph"
	"arc/internal/extract"
	"arc/internal/logging"
)

// testGraph wires nodes and adjacency directly from a dependency map
// (from -> files it imports)
func testGraph(adj map[string][]string) *depgraph.Graph {
	g := depgraph.NewGraph()
	add := func(path string) {
		if _, ok := g.Nodes[path]; !ok {
			g.Nodes[path] = extract.EmptyFacts(path)
		}
	}
	var froms []string
	for from := range adj {
		froms = append(froms, from)
	}
	sort.Strings(froms)
	for _, from := range froms {
		add(from)
		for _, to := range adj[from] {
			add(to)
			e := depgraph.Edge{From: from, To: to, Kind: "import"}
			g.Edges = append(g.Edges, e)
			g.Forward[from] = append(g.Forward[from], e)
			g.Reverse[to] = append(g.Reverse[to], from)
		}
	}
	return g
}

func newTestMediator(adj map[string][]string) *Mediator {
	return New(testGraph(adj), config.Default().Mediator, logging.NewNop())
}

func TestRippleEffectClassification(t *testing.T) {
	m := newTestMediator(map[string][]string{
		"api.ts":            {"core.ts"},
		"svc.ts":            {"core.ts"},
		"core.test.ts":      {"core.ts"},
		"app.ts":            {"api.ts"},
		"unrelated.ts":      {},
		"tests/deep.e2e.ts": {"app.ts"},
	})

	effect := m.RippleEffect("core.ts", "", 3)
	if effect == nil {
		t.Fatal("expected a ripple effect")
	}
	if !reflect.DeepEqual(effect.Direct, []string{"api.ts", "svc.ts"}) {
		t.Errorf("direct = %v", effect.Direct)
	}
	if !reflect.DeepEqual(effect.Indirect, []string{"app.ts"}) {
		t.Errorf("indirect = %v", effect.Indirect)
	}
	if !reflect.DeepEqual(effect.RelatedTests, []string{"core.test.ts", "tests/deep.e2e.ts"}) {
		t.Errorf("related tests = %v", effect.RelatedTests)
	}
	if effect.CascadeDepth != 3 {
		t.Errorf("cascade depth = %d, want 3", effect.CascadeDepth)
	}
	if effect.TotalAffected() != 3 {
		t.Errorf("total affected = %d, want 3 (tests excluded)", effect.TotalAffected())
	}
}

func TestRippleEffectDepthBound(t *testing.T) {
	m := newTestMediator(map[string][]string{
		"b.ts": {"a.ts"},
		"c.ts": {"b.ts"},
		"d.ts": {"c.ts"},
	})

	effect := m.RippleEffect("a.ts", "", 1)
	if len(effect.Direct) != 1 || len(effect.Indirect) != 0 {
		t.Errorf("depth 1 ripple = %+v", effect)
	}
	if effect.CascadeDepth != 1 {
		t.Errorf("cascade depth = %d", effect.CascadeDepth)
	}
}

func TestRippleEffectUnknownFile(t *testing.T) {
	m := newTestMediator(map[string][]string{"a.ts": {}})
	if effect := m.RippleEffect("ghost.ts", "", 3); effect != nil {
		t.Errorf("unknown file should yield nil, got %+v", effect)
	}
}

func TestIsTestFile(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"src/core.ts", false},
		{"src/core.test.ts", true},
		{"src/core.spec.ts", true},
		{"pkg/store_test.go", true},
		{"tests/integration.py", true},
		{"src/__tests__/core.ts", true},
		{"test_models.py", true},
		{"src/latest.ts", false},
		{"contest/entry.ts", false},
	}
	for _, tt := range tests {
		if got := IsTestFile(tt.path); got != tt.want {
			t.Errorf("IsTestFile(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestParseLocation(t *testing.T) {
	tests := []struct {
		in   string
		want Location
	}{
		{"src/a.ts:10", Location{File: "src/a.ts", Line: 10}},
		{"src/a.ts", Location{File: "src/a.ts"}},
		{"src/a.ts:xx", Location{File: "src/a.ts"}},
		{"src/a.ts:0", Location{File: "src/a.ts"}},
		{"src/a.ts:-4", Location{File: "src/a.ts"}},
		{" src/a.ts:7 ", Location{File: "src/a.ts", Line: 7}},
	}
	for _, tt := range tests {
		if got := ParseLocation(tt.in); got != tt.want {
			t.Errorf("ParseLocation(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}

func TestIssueImpact(t *testing.T) {
	m := newTestMediator(map[string][]string{
		"api.ts":  {"core.ts", "util.ts"},
		"svc.ts":  {"core.ts"},
		"app.ts":  {"api.ts"},
		"util.ts": {},
	})
	m.Graph().Nodes["core.ts"].Functions = []string{"connect", "close"}

	impact := m.IssueImpact("SEC-01", "core.ts:42")
	if impact == nil {
		t.Fatal("expected an impact analysis")
	}
	if impact.Location != (Location{File: "core.ts", Line: 42}) {
		t.Errorf("location = %+v", impact.Location)
	}
	if impact.TotalAffectedFiles != 3 {
		t.Errorf("total affected = %d, want 3", impact.TotalAffectedFiles)
	}
	if impact.CascadeDepth != 2 {
		t.Errorf("cascade depth = %d, want 2", impact.CascadeDepth)
	}
	if impact.RiskLevel != RiskMedium {
		t.Errorf("risk = %s, want MEDIUM", impact.RiskLevel)
	}
	if !reflect.DeepEqual(impact.AffectedFunctions, []string{"connect", "close"}) {
		t.Errorf("affected functions = %v", impact.AffectedFunctions)
	}
	if impact.Summary == "" {
		t.Error("summary should not be empty")
	}
}

func TestIssueImpactOutsideGraph(t *testing.T) {
	m := newTestMediator(map[string][]string{"a.ts": {}})

	impact := m.IssueImpact("BUG-1", "vendor/lib.ts:3")
	if impact == nil {
		t.Fatal("expected a degraded analysis, not nil")
	}
	if impact.RiskLevel != RiskLow || impact.TotalAffectedFiles != 0 {
		t.Errorf("degraded analysis = %+v", impact)
	}
}

func TestIssueImpactEmptyLocation(t *testing.T) {
	m := newTestMediator(map[string][]string{"a.ts": {}})
	if impact := m.IssueImpact("BUG-2", "  "); impact != nil {
		t.Errorf("empty location should yield nil, got %+v", impact)
	}
}

func TestDeriveRiskLevel(t *testing.T) {
	tests := []struct {
		total int
		depth int
		want  RiskLevel
	}{
		{0, 0, RiskLow},
		{1, 1, RiskLow},
		{3, 1, RiskMedium},
		{5, 2, RiskHigh},
		{10, 1, RiskHigh},
		{15, 3, RiskCritical},
		{40, 4, RiskCritical},
	}
	for _, tt := range tests {
		if got := deriveRiskLevel(tt.total, tt.depth); got != tt.want {
			t.Errorf("deriveRiskLevel(%d, %d) = %s, want %s", tt.total, tt.depth, got, tt.want)
		}
	}
}

func TestCoverageTracking(t *testing.T) {
	// core.ts: 3 dependents and 1 export = importance 7, above the
	// default threshold of 6; everything else scores lower
	m := newTestMediator(map[string][]string{
		"a.ts": {"core.ts"},
		"b.ts": {"core.ts"},
		"c.ts": {"core.ts"},
	})
	m.Graph().Nodes["core.ts"].Exports = []string{"Core"}
	m.SetGraph(m.Graph()) // recompute critical set after facts changed

	if got := m.Coverage().CriticalFiles(); !reflect.DeepEqual(got, []string{"core.ts"}) {
		t.Fatalf("critical files = %v", got)
	}
	if got := m.Coverage().CriticalGaps(); !reflect.DeepEqual(got, []string{"core.ts"}) {
		t.Fatalf("initial gaps = %v", got)
	}

	m.Coverage().MarkReferenced("core.ts")
	if got := m.Coverage().CriticalGaps(); len(got) != 0 {
		t.Errorf("gaps after reference = %v", got)
	}

	// Marks survive a graph swap
	m.SetGraph(m.Graph())
	if got := m.Coverage().CriticalGaps(); len(got) != 0 {
		t.Errorf("gaps after graph swap = %v", got)
	}
}
