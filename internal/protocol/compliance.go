package protocol

import "fmt"

// Severity grades a compliance violation. Only ERROR violations reject a
// round under strict compliance; WARNING is diagnostic.
type Severity string

const (
	SeverityError   Severity = "ERROR"
	SeverityWarning Severity = "WARNING"
)

// Violation is one detected breach of the role-separation contract
type Violation struct {
	Severity Severity `json:"severity"`
	Code     string   `json:"code"`
	Message  string   `json:"message"`
}

// Round is the slice of a submitted round the checker inspects
type Round struct {
	Role           Role
	Output         string
	IssuesRaised   int
	IssuesResolved int
}

// Checker enforces the structural role-separation rules. It is stateless;
// construct one per orchestrator and share freely.
type Checker struct{}

// NewChecker creates a compliance checker
func NewChecker() *Checker {
	return &Checker{}
}

// Check inspects a round against the contract. expectedRole is the role the
// orchestrator computed for this round; empty means any role is accepted.
func (c *Checker) Check(round Round, expectedRole Role) []Violation {
	var violations []Violation

	if expectedRole != "" && round.Role != expectedRole {
		violations = append(violations, Violation{
			Severity: SeverityError,
			Code:     "ROLE_OUT_OF_TURN",
			Message:  fmt.Sprintf("round submitted as %s but %s was expected", round.Role, expectedRole),
		})
	}

	// The critic adjudicates; raising new issues is the verifier's job
	if round.Role == RoleCritic && round.IssuesRaised > 0 {
		violations = append(violations, Violation{
			Severity: SeverityError,
			Code:     "CRITIC_RAISED_ISSUES",
			Message:  fmt.Sprintf("critic raised %d new issue(s); critics flag concerns for the verifier instead", round.IssuesRaised),
		})
	}

	// The verifier raises; resolving its own issues in the same breath
	// short-circuits adjudication
	if round.Role == RoleVerifier && round.IssuesRaised > 0 && round.IssuesResolved > 0 {
		violations = append(violations, Violation{
			Severity: SeverityWarning,
			Code:     "VERIFIER_SELF_RESOLVED",
			Message:  "verifier raised and resolved issues in the same round; resolutions should follow critic review",
		})
	}

	if round.Output == "" && round.IssuesRaised == 0 && round.IssuesResolved == 0 {
		violations = append(violations, Violation{
			Severity: SeverityWarning,
			Code:     "EMPTY_ROUND",
			Message:  "round carries no output and no issue activity",
		})
	}

	return violations
}

// HasError reports whether any violation is rejection-grade
func HasError(violations []Violation) bool {
	for _, v := range violations {
		if v.Severity == SeverityError {
			return true
		}
	}
	return false
}
