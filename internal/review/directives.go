package review

import (
	"regexp"
	"strings"
)

// Lifecycle directives embedded in round output. One directive per line:
//
//	CHALLENGE <id>[: reason]
//	DISMISS <id>[: reason]
//	UNRESOLVED <id>[: reason]
//	SEVERITY <id> <critical|high|medium|low>
//	MERGE <id> INTO <id>
//	SPLIT <id> INTO <id>[, <id>...]
type Directive struct {
	Kind     string
	Issue    string
	Reason   string
	Severity string
	Into     []string
}

const (
	directiveChallenge  = "challenge"
	directiveDismiss    = "dismiss"
	directiveUnresolved = "unresolved"
	directiveSeverity   = "severity"
	directiveMerge      = "merge"
	directiveSplit      = "split"
)

var (
	verdictPattern  = regexp.MustCompile(`(?i)^\s*(CHALLENGE|DISMISS|UNRESOLVED)\s+([A-Za-z0-9_.\-]+)\s*(?::\s*(.+))?$`)
	severityPattern = regexp.MustCompile(`(?i)^\s*SEVERITY\s+([A-Za-z0-9_.\-]+)\s+(critical|high|medium|low)\s*$`)
	mergePattern    = regexp.MustCompile(`(?i)^\s*MERGE\s+([A-Za-z0-9_.\-]+)\s+INTO\s+([A-Za-z0-9_.\-]+)\s*$`)
	splitPattern    = regexp.MustCompile(`(?i)^\s*SPLIT\s+([A-Za-z0-9_.\-]+)\s+INTO\s+([A-Za-z0-9_.\-]+(?:\s*,\s*[A-Za-z0-9_.\-]+)*)\s*$`)
)

// parseDirectives scans round output line by line, preserving order
func parseDirectives(output string) []Directive {
	var out []Directive
	for _, line := range strings.Split(output, "\n") {
		if m := severityPattern.FindStringSubmatch(line); m != nil {
			out = append(out, Directive{
				Kind:     directiveSeverity,
				Issue:    m[1],
				Severity: strings.ToLower(m[2]),
			})
			continue
		}
		if m := mergePattern.FindStringSubmatch(line); m != nil {
			out = append(out, Directive{Kind: directiveMerge, Issue: m[1], Into: []string{m[2]}})
			continue
		}
		if m := splitPattern.FindStringSubmatch(line); m != nil {
			var into []string
			for _, id := range strings.Split(m[2], ",") {
				if id = strings.TrimSpace(id); id != "" {
					into = append(into, id)
				}
			}
			out = append(out, Directive{Kind: directiveSplit, Issue: m[1], Into: into})
			continue
		}
		if m := verdictPattern.FindStringSubmatch(line); m != nil {
			out = append(out, Directive{
				Kind:   strings.ToLower(m[1]),
				Issue:  m[2],
				Reason: strings.TrimSpace(m[3]),
			})
		}
	}
	return out
}
