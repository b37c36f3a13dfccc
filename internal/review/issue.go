package review

import (
	"sort"
	"time"

	"arc/internal/evidence"
	"arc/internal/mediator"
	"arc/internal/protocol"
)

// Status is an issue's lifecycle state, derived from the transition log
type Status string

const (
	StatusRaised     Status = "RAISED"
	StatusChallenged Status = "CHALLENGED"
	StatusResolved   Status = "RESOLVED"
	StatusUnresolved Status = "UNRESOLVED"
	StatusDismissed  Status = "DISMISSED"
	StatusMerged     Status = "MERGED"
	StatusSplit      Status = "SPLIT"
)

// Transition is one append-only entry in an issue's audit trail
type Transition struct {
	Round     int           `json:"round"`
	To        Status        `json:"to"`
	Reason    string        `json:"reason,omitempty"`
	By        protocol.Role `json:"by"`
	Timestamp time.Time     `json:"timestamp"`
}

// Issue is one raised finding. Current status is a reduction over
// Transitions; entries are appended, never rewritten, so history survives
// merges, splits and overwrites structurally.
type Issue struct {
	ID            string                   `json:"id"`
	Category      string                   `json:"category,omitempty"`
	Severity      string                   `json:"severity,omitempty"`
	Summary       string                   `json:"summary"`
	Location      string                   `json:"location,omitempty"`
	Evidence      string                   `json:"evidence,omitempty"`
	RaisedBy      protocol.Role            `json:"raisedBy"`
	RaisedInRound int                      `json:"raisedInRound"`
	CriticVerdict string                   `json:"criticVerdict,omitempty"`
	EvidenceCheck *evidence.Result         `json:"evidenceCheck,omitempty"`
	Impact        *mediator.ImpactAnalysis `json:"impactAnalysis,omitempty"`
	MergedInto    string                   `json:"mergedInto,omitempty"`
	SplitFrom     string                   `json:"splitFrom,omitempty"`
	SplitInto     []string                 `json:"splitInto,omitempty"`
	Transitions   []Transition             `json:"transitions"`
}

// Status reduces the transition log to the current state. An issue with no
// transitions yet is RAISED.
func (i *Issue) Status() Status {
	if len(i.Transitions) == 0 {
		return StatusRaised
	}
	return i.Transitions[len(i.Transitions)-1].To
}

// Transition appends an audit entry moving the issue to a new status
func (i *Issue) Transition(round int, to Status, reason string, by protocol.Role) {
	i.Transitions = append(i.Transitions, Transition{
		Round:     round,
		To:        to,
		Reason:    reason,
		By:        by,
		Timestamp: time.Now().UTC(),
	})
}

// Annotate appends an audit entry that keeps the current status, used for
// recorded changes like severity adjustments
func (i *Issue) Annotate(round int, reason string, by protocol.Role) {
	i.Transition(round, i.Status(), reason, by)
}

// IsOpen reports whether the issue still needs adjudication or resolution
func (i *Issue) IsOpen() bool {
	switch i.Status() {
	case StatusResolved, StatusDismissed, StatusMerged, StatusSplit:
		return false
	default:
		return true
	}
}

// Clone deep-copies the issue for checkpoint snapshots
func (i *Issue) Clone() *Issue {
	out := *i
	out.Transitions = append([]Transition(nil), i.Transitions...)
	out.SplitInto = append([]string(nil), i.SplitInto...)
	if i.EvidenceCheck != nil {
		ec := *i.EvidenceCheck
		ec.Warnings = append([]string(nil), i.EvidenceCheck.Warnings...)
		out.EvidenceCheck = &ec
	}
	if i.Impact != nil {
		impact := *i.Impact
		impact.Callers = append([]string(nil), i.Impact.Callers...)
		impact.Dependencies = append([]string(nil), i.Impact.Dependencies...)
		impact.RelatedTests = append([]string(nil), i.Impact.RelatedTests...)
		impact.AffectedFunctions = append([]string(nil), i.Impact.AffectedFunctions...)
		out.Impact = &impact
	}
	return &out
}

func sortedIssues(issues map[string]*Issue) []*Issue {
	out := make([]*Issue, 0, len(issues))
	for _, issue := range issues {
		out = append(out, issue)
	}
	sort.Slice(out, func(a, b int) bool { return out[a].ID < out[b].ID })
	return out
}
