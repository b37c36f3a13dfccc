package mediator

// RiskLevel grades the blast radius of a change or issue
type RiskLevel string

const (
	RiskCritical RiskLevel = "CRITICAL"
	RiskHigh     RiskLevel = "HIGH"
	RiskMedium   RiskLevel = "MEDIUM"
	RiskLow      RiskLevel = "LOW"
)

// RippleEffect describes what else is touched if a file changes.
// Depth-1 reverse dependents are direct impact, deeper ones indirect.
// Test files are split out and never counted as functional impact.
type RippleEffect struct {
	Source       string   `json:"source"`
	Function     string   `json:"function,omitempty"`
	Direct       []string `json:"direct"`
	Indirect     []string `json:"indirect"`
	RelatedTests []string `json:"relatedTests"`
	CascadeDepth int      `json:"cascadeDepth"`
}

// TotalAffected counts functional impact only (direct + indirect)
func (r *RippleEffect) TotalAffected() int {
	return len(r.Direct) + len(r.Indirect)
}

// Location is a parsed issue location. Line 0 means no line number.
type Location struct {
	File string `json:"file"`
	Line int    `json:"line,omitempty"`
}

// ImpactAnalysis is the blast radius of one raised issue, derived on demand
// from the session graph and never cached across graph edits.
type ImpactAnalysis struct {
	IssueID            string    `json:"issueId"`
	Location           Location  `json:"location"`
	Callers            []string  `json:"callers"`
	Dependencies       []string  `json:"dependencies"`
	RelatedTests       []string  `json:"relatedTests"`
	AffectedFunctions  []string  `json:"affectedFunctions"`
	CascadeDepth       int       `json:"cascadeDepth"`
	TotalAffectedFiles int       `json:"totalAffectedFiles"`
	RiskLevel          RiskLevel `json:"riskLevel"`
	Summary            string    `json:"summary"`
}

// InterventionType tags an advisory intervention
type InterventionType string

const (
	// InterventionContextExpand flags scope runaway: too many new files in one round
	InterventionContextExpand InterventionType = "CONTEXT_EXPAND"
	// InterventionLoopBreak flags the same issue contested repeatedly
	InterventionLoopBreak InterventionType = "LOOP_BREAK"
	// InterventionSoftCorrect flags an oversized tracked context
	InterventionSoftCorrect InterventionType = "SOFT_CORRECT"
)

// Intervention is an advisory record returned alongside a round result.
// The orchestrator surfaces these to its caller and never acts on them.
type Intervention struct {
	Type    InterventionType `json:"type"`
	Subject string           `json:"subject,omitempty"`
	Reason  string           `json:"reason"`
}
