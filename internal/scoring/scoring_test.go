package scoring

import (
	"testing"

	"github.com/samvad-hq/samvad-declaration-auditor/internal/domain"
)

func TestCombineScenario(t *testing.T) {
	analysis := domain.DeclarationAnalysis{
		LargeGifts:     domain.BoolIndicator{Value: true},
		SuddenChanges:  domain.BoolIndicator{Value: false},
		IncomeProperty: domain.ScaleIndicator{Value: 2},
	}
	metrics := domain.MediaMetrics{FinalScore: domain.FinalScore{
		NegativeMentionsScore:   1,
		SuspiciousActivityScore: 0,
		SuspiciousGiftsAndOther: true,
		FinishedInvestigation:   false,
	}}

	if got := Combine(analysis, metrics); got != 5 {
		t.Fatalf("Combine = %v, want 5", got)
	}
}

func TestCombineIsNotCapped(t *testing.T) {
	analysis := domain.DeclarationAnalysis{
		LargeGifts:     domain.BoolIndicator{Value: true},
		SuddenChanges:  domain.BoolIndicator{Value: true},
		IncomeProperty: domain.ScaleIndicator{Value: 2},
	}
	metrics := domain.MediaMetrics{FinalScore: domain.FinalScore{
		NegativeMentionsScore:   2,
		SuspiciousActivityScore: 2,
		SuspiciousGiftsAndOther: true,
		FinishedInvestigation:   true,
	}}
	if got := Combine(analysis, metrics); got != 10 {
		t.Fatalf("Combine = %v, want 10", got)
	}

	analysis.IncomeProperty.Value = 7
	if got := Combine(analysis, metrics); got != 15 {
		t.Fatalf("expected unbounded sum 15, got %v", got)
	}
}

func TestCombineZero(t *testing.T) {
	if got := Combine(domain.DeclarationAnalysis{}, domain.MediaMetrics{}); got != 0 {
		t.Fatalf("expected 0, got %v", got)
	}
}

func TestLeafValueIgnoresUnknownTypes(t *testing.T) {
	cases := map[any]float64{
		true:     1,
		false:    0,
		3:        3,
		2.5:      2.5,
		"string": 0,
		nil:      0,
	}
	for in, want := range cases {
		if got := leafValue(in); got != want {
			t.Fatalf("leafValue(%v) = %v, want %v", in, got, want)
		}
	}
}
