package service

// Canonical risk scoring helpers. Every component that produces a [0,100]
// risk score goes through ClampRisk; no call site carries its own clamp.

// ClampRisk bounds a risk score to [0,100].
func ClampRisk(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// ClampConfidence bounds a confidence value to [0,1].
func ClampConfidence(confidence float64) float64 {
	if confidence < 0 {
		return 0
	}
	if confidence > 1 {
		return 1
	}
	return confidence
}

// tierBonus returns the additive bonus for a value crossing tiered
// thresholds: high earns highBonus, low earns lowBonus, below both earns 0.
func tierBonus(value, lowThreshold, highThreshold, lowBonus, highBonus float64) float64 {
	switch {
	case value > highThreshold:
		return highBonus
	case value > lowThreshold:
		return lowBonus
	default:
		return 0
	}
}
