// Package scoring combines declaration indicators and media scores into the suspicion score.
package scoring

import "github.com/samvad-hq/samvad-declaration-auditor/internal/domain"

// Combine sums every declaration indicator value and every media final-score
// leaf. Booleans count as 0 or 1, numbers count as themselves, anything else is
// ignored. The sum is neither averaged nor capped.
func Combine(analysis domain.DeclarationAnalysis, metrics domain.MediaMetrics) float64 {
	var score float64
	for _, ind := range analysis.Indicators() {
		score += leafValue(ind.Value)
	}
	for _, leaf := range metrics.FinalScore.Leaves() {
		score += leafValue(leaf.Value)
	}
	return score
}

func leafValue(v any) float64 {
	switch val := v.(type) {
	case bool:
		if val {
			return 1
		}
		return 0
	case int:
		return float64(val)
	case int64:
		return float64(val)
	case float64:
		return val
	default:
		return 0
	}
}
