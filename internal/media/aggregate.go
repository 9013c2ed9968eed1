package media

import "github.com/samvad-hq/samvad-declaration-auditor/internal/domain"

// Thresholds bound the 0-2 media scales: a count of zero scores 0, a count up
// to the threshold scores 1, anything above scores 2.
type Thresholds struct {
	NegativeMentions   int
	SuspiciousActivity int
}

// DefaultThresholds are the fixed scoring policy.
var DefaultThresholds = Thresholds{
	NegativeMentions:   5,
	SuspiciousActivity: 3,
}

func (t Thresholds) normalized() Thresholds {
	if t.NegativeMentions <= 0 {
		t.NegativeMentions = DefaultThresholds.NegativeMentions
	}
	if t.SuspiciousActivity <= 0 {
		t.SuspiciousActivity = DefaultThresholds.SuspiciousActivity
	}
	return t
}

// Aggregate folds judgments into counts and the bucketed final score.
// Empty input yields zero metrics.
func Aggregate(judgments []domain.ArticleJudgment, thresholds Thresholds) domain.MediaMetrics {
	thresholds = thresholds.normalized()

	var m domain.MediaMetrics
	for _, j := range judgments {
		if j.NegativeMentions {
			m.NegativeMentionsCount++
		}
		if j.SuspiciousActivity {
			m.SuspiciousActivityCount++
		}
		m.SuspiciousGiftsAndOther = m.SuspiciousGiftsAndOther || j.SuspiciousGiftsAndOther
		if j.FinishedInvestigation {
			m.FinishedInvestigationCount++
		}
	}

	m.FinalScore = domain.FinalScore{
		NegativeMentionsScore:   bucket(m.NegativeMentionsCount, thresholds.NegativeMentions),
		SuspiciousActivityScore: bucket(m.SuspiciousActivityCount, thresholds.SuspiciousActivity),
		SuspiciousGiftsAndOther: m.SuspiciousGiftsAndOther,
		FinishedInvestigation:   m.FinishedInvestigationCount > 0,
	}
	return m
}

func bucket(count, threshold int) int {
	switch {
	case count == 0:
		return 0
	case count <= threshold:
		return 1
	default:
		return 2
	}
}
