package mediator

import (
	"fmt"
	"sort"

	"arc/internal/config"
)

// RoundActivity is the issue ids raised or contested in one round,
// oldest round first in a history slice.
type RoundActivity struct {
	Round    int
	IssueIDs []string
}

// InterventionInput is everything intervention analysis may look at.
// It is a snapshot; AnalyzeInterventions never reads session state.
type InterventionInput struct {
	History          []RoundActivity
	NewFiles         []string
	ContextFileCount int
}

// AnalyzeInterventions is a pure function over the round snapshot. Matching
// interventions are returned in priority order: scope runaway first, then
// issue ping-pong, then oversized context. The caller decides what to do
// with them; nothing here blocks the round.
func AnalyzeInterventions(in InterventionInput, cfg config.MediatorConfig) []Intervention {
	var out []Intervention

	if cfg.DiscoveryBurstThreshold > 0 && len(in.NewFiles) > cfg.DiscoveryBurstThreshold {
		out = append(out, Intervention{
			Type:   InterventionContextExpand,
			Reason: fmt.Sprintf("%d new files discovered in one round (threshold %d); review scope is expanding rapidly", len(in.NewFiles), cfg.DiscoveryBurstThreshold),
		})
	}

	for _, id := range loopingIssues(in.History, cfg.LoopWindow, cfg.LoopThreshold) {
		out = append(out, Intervention{
			Type:    InterventionLoopBreak,
			Subject: id,
			Reason:  fmt.Sprintf("issue %s raised or contested %d+ times in the last %d rounds; force a resolution", id, cfg.LoopThreshold, cfg.LoopWindow),
		})
	}

	if cfg.ContextFileCap > 0 && in.ContextFileCount > cfg.ContextFileCap {
		out = append(out, Intervention{
			Type:   InterventionSoftCorrect,
			Reason: fmt.Sprintf("tracked context holds %d files (cap %d); narrow the review focus", in.ContextFileCount, cfg.ContextFileCap),
		})
	}

	return out
}

// loopingIssues finds issue ids active in at least threshold of the last
// window rounds. One appearance per round counts once.
func loopingIssues(history []RoundActivity, window int, threshold int) []string {
	if window < 1 || threshold < 1 || len(history) == 0 {
		return nil
	}
	start := len(history) - window
	if start < 0 {
		start = 0
	}

	counts := make(map[string]int)
	for _, round := range history[start:] {
		seen := make(map[string]bool)
		for _, id := range round.IssueIDs {
			if seen[id] {
				continue
			}
			seen[id] = true
			counts[id]++
		}
	}

	var looping []string
	for id, n := range counts {
		if n >= threshold {
			looping = append(looping, id)
		}
	}
	sort.Strings(looping)
	return looping
}
