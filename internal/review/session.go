package review

import (
	"sort"
	"time"

	"arc/internal/protocol"
)

// Round is one immutable submitted round. NewIssues lists ids first seen in
// this round; IssuesRaised also includes re-raised ids.
type Round struct {
	Number         int                  `json:"number"`
	Role           protocol.Role        `json:"role"`
	Output         string               `json:"output"`
	IssuesRaised   []string             `json:"issuesRaised,omitempty"`
	NewIssues      []string             `json:"newIssues,omitempty"`
	IssuesResolved []string             `json:"issuesResolved,omitempty"`
	Contested      []string             `json:"contested,omitempty"`
	NewFiles       []string             `json:"newFiles,omitempty"`
	Violations     []protocol.Violation `json:"violations,omitempty"`
	SubmittedAt    time.Time            `json:"submittedAt"`
}

// Session is the per-review mutable state owned by the orchestrator.
// All access is serialized by the orchestrator's per-session lock.
type Session struct {
	ID                string            `json:"id"`
	Target            string            `json:"target"`
	Requirements      []string          `json:"requirements,omitempty"`
	Mode              protocol.Mode     `json:"mode"`
	MinRounds         int               `json:"minRounds"`
	MaxRounds         int               `json:"maxRounds"`
	ConvergenceWindow int               `json:"convergenceWindow"`
	CreatedAt         time.Time         `json:"createdAt"`
	Round             int               `json:"round"`
	NextRole          protocol.Role     `json:"nextRole"`
	ContextFiles      []string          `json:"contextFiles"`
	Issues            map[string]*Issue `json:"issues"`
	Rounds            []Round           `json:"rounds"`
	Completed         bool              `json:"completed"`
	Converged         bool              `json:"converged,omitempty"`
	CompletionReason  string            `json:"completionReason,omitempty"`
}

// HasIssue reports whether an issue id exists
func (s *Session) HasIssue(id string) bool {
	_, ok := s.Issues[id]
	return ok
}

// OpenIssueCount counts issues still awaiting adjudication or resolution
func (s *Session) OpenIssueCount() int {
	n := 0
	for _, issue := range s.Issues {
		if issue.IsOpen() {
			n++
		}
	}
	return n
}

// IssueList returns all issues sorted by id
func (s *Session) IssueList() []*Issue {
	return sortedIssues(s.Issues)
}

// AddContext merges candidate files into the tracked context and returns
// the ones that were actually new, sorted.
func (s *Session) AddContext(files []string) []string {
	known := make(map[string]bool, len(s.ContextFiles))
	for _, f := range s.ContextFiles {
		known[f] = true
	}

	var added []string
	for _, f := range files {
		if !known[f] {
			known[f] = true
			added = append(added, f)
			s.ContextFiles = append(s.ContextFiles, f)
		}
	}
	sort.Strings(s.ContextFiles)
	sort.Strings(added)
	return added
}

// activity summarizes raised/contested issue ids per round, oldest first,
// for intervention analysis
func (s *Session) activity() [][]string {
	out := make([][]string, 0, len(s.Rounds))
	for _, r := range s.Rounds {
		ids := append([]string(nil), r.IssuesRaised...)
		ids = append(ids, r.Contested...)
		out = append(out, ids)
	}
	return out
}
