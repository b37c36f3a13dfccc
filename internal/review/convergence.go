package review

import "fmt"

// Convergence reports the stop condition after a round. Completed is true
// both for true convergence and for the forced stop at the round cap;
// IsConverged distinguishes the two.
type Convergence struct {
	IsConverged bool   `json:"isConverged"`
	Completed   bool   `json:"completed"`
	Reason      string `json:"reason,omitempty"`
}

// evaluateConvergence applies the stop condition: converged once the
// minimum round count is reached, the trailing window introduced no new
// issues and nothing is left open. Hitting maxRounds completes the session
// without convergence.
func evaluateConvergence(s *Session) Convergence {
	if s.Round >= s.MinRounds && windowQuiet(s) && s.OpenIssueCount() == 0 {
		return Convergence{
			IsConverged: true,
			Completed:   true,
			Reason: fmt.Sprintf("no new issues in the last %d round(s) and all issues closed",
				s.ConvergenceWindow),
		}
	}

	if s.Round >= s.MaxRounds {
		return Convergence{
			IsConverged: false,
			Completed:   true,
			Reason:      fmt.Sprintf("round cap %d reached; stopping without convergence", s.MaxRounds),
		}
	}

	return Convergence{}
}

// windowQuiet reports whether the trailing ConvergenceWindow rounds exist
// and introduced no first-seen issues
func windowQuiet(s *Session) bool {
	if len(s.Rounds) < s.ConvergenceWindow {
		return false
	}
	for _, r := range s.Rounds[len(s.Rounds)-s.ConvergenceWindow:] {
		if len(r.NewIssues) > 0 {
			return false
		}
	}
	return true
}
