package services

import (
	"sort"

	"github.com/grokmeetu/meetu-backend/internal/logger"
	"github.com/grokmeetu/meetu-backend/internal/types"
)

// ApplyThresholds keeps an item only when every gate passes: motivation and
// pressure strictly greater than their thresholds, credit level an exact
// match. The strict/inclusive boundary behavior is a tested contract.
func ApplyThresholds(items []types.RecommendationItem, th types.Thresholds) []types.RecommendationItem {
	kept := make([]types.RecommendationItem, 0, len(items))
	for _, item := range items {
		if item.MotivationMatch <= th.Motivation {
			continue
		}
		if item.PressureCompatibility <= th.Pressure {
			continue
		}
		if item.CreditLevel != th.CreditLevel {
			continue
		}
		kept = append(kept, item)
	}
	return kept
}

// SortByPredictedScore orders items by predicted score descending; ties keep
// their original order.
func SortByPredictedScore(items []types.RecommendationItem) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].PredictedScore > items[j].PredictedScore
	})
}

// Rank aggregates per-candidate outcomes into the final ordered list:
// skipped candidates are counted, survivors pass the threshold gates and are
// sorted by predicted score.
func Rank(outcomes []EvaluationOutcome, th types.Thresholds, log *logger.Logger) []types.RecommendationItem {
	items := make([]types.RecommendationItem, 0, len(outcomes))
	skipped := 0
	for _, outcome := range outcomes {
		if outcome.Item == nil {
			skipped++
			continue
		}
		items = append(items, *outcome.Item)
	}
	if skipped > 0 && log != nil {
		log.Warn("Candidates skipped during evaluation", "skipped", skipped, "total", len(outcomes))
	}

	items = ApplyThresholds(items, th)
	SortByPredictedScore(items)
	return items
}
