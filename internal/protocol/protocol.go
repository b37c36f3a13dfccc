// Package protocol models the adversarial review roles and the structural
// role-compliance contract between them.
package protocol

import (
	"fmt"
	"strings"
)

// Role is one side of the adversarial protocol. The verifier raises issues;
// the critic adjudicates them.
type Role string

const (
	RoleVerifier Role = "verifier"
	RoleCritic   Role = "critic"
)

// ParseRole validates a role string
func ParseRole(s string) (Role, error) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleVerifier:
		return RoleVerifier, nil
	case RoleCritic:
		return RoleCritic, nil
	default:
		return "", fmt.Errorf("unknown role %q (expected verifier or critic)", s)
	}
}

// Mode selects how roles advance between rounds
type Mode string

const (
	// ModeAlternate swaps verifier and critic every round
	ModeAlternate Mode = "alternate"
	// ModeSingle keeps one role for the whole session
	ModeSingle Mode = "single"
	// ModeFastTrack alternates but skips critic rounds while no issues
	// are open for adjudication
	ModeFastTrack Mode = "fast-track"
)

// ParseMode validates a mode string
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeAlternate:
		return ModeAlternate, nil
	case ModeSingle:
		return ModeSingle, nil
	case ModeFastTrack:
		return ModeFastTrack, nil
	default:
		return "", fmt.Errorf("unknown mode %q (expected alternate, single or fast-track)", s)
	}
}

// NextRole computes the deterministic next role. openIssues is the count of
// issues awaiting adjudication; only fast-track looks at it.
func NextRole(current Role, mode Mode, openIssues int) Role {
	switch mode {
	case ModeSingle:
		return current
	case ModeFastTrack:
		if current == RoleVerifier && openIssues == 0 {
			return RoleVerifier
		}
		return toggle(current)
	default:
		return toggle(current)
	}
}

func toggle(r Role) Role {
	if r == RoleVerifier {
		return RoleCritic
	}
	return RoleVerifier
}
