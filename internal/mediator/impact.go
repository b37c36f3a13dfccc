package mediator

import (
	"fmt"
	"strconv"
	"strings"

	"arc/internal/paths"
)

// ParseLocation parses "file[:line]". A trailing segment that is not a
// positive integer degrades to no line number rather than failing.
func ParseLocation(s string) Location {
	s = paths.Normalize(strings.TrimSpace(s))
	i := strings.LastIndex(s, ":")
	if i < 0 {
		return Location{File: s}
	}
	line, err := strconv.Atoi(s[i+1:])
	if err != nil || line < 1 {
		return Location{File: s[:i]}
	}
	return Location{File: s[:i], Line: line}
}

// IssueImpact resolves an issue's location to a graph node, runs the ripple
// computation and derives a risk level from total affected count and cascade
// depth. An empty location returns nil. A location outside the graph yields
// a zero-impact LOW analysis so the issue still carries an assessment.
func (m *Mediator) IssueImpact(issueID string, location string) *ImpactAnalysis {
	if strings.TrimSpace(location) == "" {
		return nil
	}
	loc := ParseLocation(location)

	ripple := m.RippleEffect(loc.File, "", 0)
	if ripple == nil {
		m.logger.Debug("impact target not in graph", map[string]interface{}{
			"issue": issueID,
			"file":  loc.File,
		})
		return &ImpactAnalysis{
			IssueID:           issueID,
			Location:          loc,
			Callers:           []string{},
			Dependencies:      []string{},
			RelatedTests:      []string{},
			AffectedFunctions: []string{},
			RiskLevel:         RiskLow,
			Summary:           fmt.Sprintf("%s is not part of the dependency graph; no measurable impact.", loc.File),
		}
	}

	callers := append(append([]string{}, ripple.Direct...), ripple.Indirect...)
	deps := m.graph.Dependencies(loc.File)
	if deps == nil {
		deps = []string{}
	}

	var functions []string
	if facts := m.graph.Nodes[loc.File]; facts != nil {
		functions = append(functions, facts.Functions...)
	}
	if functions == nil {
		functions = []string{}
	}

	total := ripple.TotalAffected()
	level := deriveRiskLevel(total, ripple.CascadeDepth)

	return &ImpactAnalysis{
		IssueID:            issueID,
		Location:           loc,
		Callers:            callers,
		Dependencies:       deps,
		RelatedTests:       ripple.RelatedTests,
		AffectedFunctions:  functions,
		CascadeDepth:       ripple.CascadeDepth,
		TotalAffectedFiles: total,
		RiskLevel:          level,
		Summary:            summarize(level, total, ripple.CascadeDepth, len(ripple.RelatedTests)),
	}
}
