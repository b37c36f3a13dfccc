package mediator

import (
	"fmt"
	"math"
)

// Risk is a weighted blend of two factors: fan-out of the affected-file set
// (log scale, saturating at 25 files) and cascade depth (saturating at 4
// hops). Fan-out dominates since a wide blast radius breaks more consumers
// than a deep narrow chain.
const (
	fanoutWeight     = 0.6
	depthWeight      = 0.4
	fanoutSaturation = 25
	depthSaturation  = 4

	criticalThreshold = 0.75
	highThreshold     = 0.5
	mediumThreshold   = 0.25
)

func riskScore(totalAffected int, cascadeDepth int) float64 {
	var fanout float64
	if totalAffected > 0 {
		fanout = math.Log10(float64(totalAffected)+1) / math.Log10(fanoutSaturation+1)
		if fanout > 1.0 {
			fanout = 1.0
		}
	}

	depth := float64(cascadeDepth) / depthSaturation
	if depth > 1.0 {
		depth = 1.0
	}

	return fanoutWeight*fanout + depthWeight*depth
}

// deriveRiskLevel converts affected-file count and cascade depth to a level
func deriveRiskLevel(totalAffected int, cascadeDepth int) RiskLevel {
	score := riskScore(totalAffected, cascadeDepth)
	switch {
	case score >= criticalThreshold:
		return RiskCritical
	case score >= highThreshold:
		return RiskHigh
	case score >= mediumThreshold:
		return RiskMedium
	default:
		return RiskLow
	}
}

func summarize(level RiskLevel, totalAffected int, cascadeDepth int, testCount int) string {
	switch level {
	case RiskCritical:
		return fmt.Sprintf("Critical risk: %d file(s) affected across %d dependency hop(s). Changes here cascade widely.", totalAffected, cascadeDepth)
	case RiskHigh:
		return fmt.Sprintf("High risk: %d file(s) affected across %d dependency hop(s). Changes may break multiple consumers.", totalAffected, cascadeDepth)
	case RiskMedium:
		return fmt.Sprintf("Medium risk: %d file(s) affected across %d dependency hop(s). Changes require targeted testing.", totalAffected, cascadeDepth)
	default:
		if testCount > 0 {
			return fmt.Sprintf("Low risk: %d file(s) affected; %d related test file(s) cover the area.", totalAffected, testCount)
		}
		return fmt.Sprintf("Low risk: %d file(s) affected. Changes have limited impact.", totalAffected)
	}
}
