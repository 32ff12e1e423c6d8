package services

import (
	"testing"

	"github.com/grokmeetu/meetu-backend/internal/types"
)

func item(id string, score, motivation, pressure float64, credit types.CreditLevel) types.RecommendationItem {
	return types.RecommendationItem{
		ChatroomID:            id,
		PredictedScore:        score,
		MotivationMatch:       motivation,
		PressureCompatibility: pressure,
		CreditLevel:           credit,
	}
}

func TestApplyThresholdsStrictBoundaries(t *testing.T) {
	th := types.Thresholds{Motivation: 0.1, Pressure: 0.5, CreditLevel: types.CreditLevelPartial}

	cases := []struct {
		name string
		it   types.RecommendationItem
		keep bool
	}{
		{
			name: "all_gates_pass",
			it:   item("C1", 4, 0.5, 0.9, types.CreditLevelPartial),
			keep: true,
		},
		{
			name: "motivation_exactly_at_threshold_drops",
			it:   item("C2", 4, 0.1, 0.9, types.CreditLevelPartial),
			keep: false,
		},
		{
			name: "pressure_exactly_at_threshold_drops",
			it:   item("C3", 4, 0.5, 0.5, types.CreditLevelPartial),
			keep: false,
		},
		{
			name: "credit_level_must_match_exactly",
			it:   item("C4", 4, 0.5, 0.9, types.CreditLevelFull),
			keep: false,
		},
		{
			name: "just_above_thresholds_pass",
			it:   item("C5", 4, 0.10001, 0.6, types.CreditLevelPartial),
			keep: true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ApplyThresholds([]types.RecommendationItem{tc.it}, th)
			kept := len(got) == 1
			if kept != tc.keep {
				t.Fatalf("item %s kept=%v, want %v", tc.it.ChatroomID, kept, tc.keep)
			}
		})
	}
}

func TestSortByPredictedScoreStable(t *testing.T) {
	items := []types.RecommendationItem{
		item("C1", 3.0, 0.5, 0.9, types.CreditLevelPartial),
		item("C2", 4.5, 0.5, 0.9, types.CreditLevelPartial),
		item("C3", 3.0, 0.5, 0.9, types.CreditLevelPartial),
		item("C4", 5.0, 0.5, 0.9, types.CreditLevelPartial),
	}

	SortByPredictedScore(items)

	wantOrder := []string{"C4", "C2", "C1", "C3"}
	for i, want := range wantOrder {
		if items[i].ChatroomID != want {
			t.Fatalf("position %d=%s, want %s (ties must keep insertion order)", i, items[i].ChatroomID, want)
		}
	}
}

func TestRankAggregatesOutcomes(t *testing.T) {
	th := types.DefaultThresholds()
	it1 := item("C1", 3.2, 0.5, 0.9, types.CreditLevelPartial)
	it2 := item("C2", 4.8, 0.5, 0.9, types.CreditLevelPartial)
	it3 := item("C3", 4.0, 0.05, 0.9, types.CreditLevelPartial) // below motivation gate

	outcomes := []EvaluationOutcome{
		{ChatroomID: "C1", Item: &it1},
		{ChatroomID: "CX", SkipReason: "predict failed"},
		{ChatroomID: "C2", Item: &it2},
		{ChatroomID: "C3", Item: &it3},
	}

	got := Rank(outcomes, th, testLogger(t))
	if len(got) != 2 {
		t.Fatalf("len(ranked)=%d, want 2", len(got))
	}
	if got[0].ChatroomID != "C2" || got[1].ChatroomID != "C1" {
		t.Fatalf("ranked order=%s,%s, want C2,C1", got[0].ChatroomID, got[1].ChatroomID)
	}
}
