// Package budget classifies context-window utilization. It is a pure
// function over the prompt token count the server reported for the last
// turn and the model's context limit.
package budget

// Tier buckets context usage for warning display.
type Tier int

const (
	TierOK Tier = iota
	TierWarning
	TierCritical
)

// Warning and critical thresholds as fractions of the context limit.
const (
	warnRatio     = 0.75
	criticalRatio = 0.95
)

// Usage is the classified utilization of the context window.
type Usage struct {
	Ratio float64
	Tier  Tier
}

// Classify computes promptTokens/contextLimit and buckets it. A
// non-positive limit or token count classifies as ok: without a real
// budget there is nothing to warn about.
func Classify(promptTokens, contextLimit int) Usage {
	if contextLimit <= 0 || promptTokens <= 0 {
		return Usage{}
	}

	u := Usage{Ratio: float64(promptTokens) / float64(contextLimit)}
	switch {
	case u.Ratio > criticalRatio:
		u.Tier = TierCritical
	case u.Ratio >= warnRatio:
		u.Tier = TierWarning
	default:
		u.Tier = TierOK
	}
	return u
}
