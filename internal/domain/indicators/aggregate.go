package indicators

import (
	"sort"

	"github.com/yanqian/cogniwell/internal/domain/health"
)

// MaxRanked caps the ranked list.
const MaxRanked = 5

// RankedIndicator is an indicator with its occurrence statistics.
type RankedIndicator struct {
	Indicator  health.IndicatorName `json:"indicator"`
	Frequency  int                  `json:"frequency"`
	Percentage float64              `json:"percentage"`
}

// Aggregate counts truthy indicators across results and ranks them by frequency.
// Ties keep the order in which indicators were first seen. Percentages are relative
// to the number of results, not the number of indicator hits.
func Aggregate(results []health.DetectionResult) []RankedIndicator {
	if len(results) == 0 {
		return []RankedIndicator{}
	}
	counts := make(map[health.IndicatorName]int)
	order := make([]health.IndicatorName, 0)
	for _, r := range results {
		for _, ind := range r.RiskIndicators {
			if !ind.Truthy() {
				continue
			}
			if _, seen := counts[ind.Name]; !seen {
				order = append(order, ind.Name)
			}
			counts[ind.Name]++
		}
	}

	ranked := make([]RankedIndicator, 0, len(order))
	total := float64(len(results))
	for _, name := range order {
		ranked = append(ranked, RankedIndicator{
			Indicator:  name,
			Frequency:  counts[name],
			Percentage: float64(counts[name]) / total * 100,
		})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Frequency > ranked[j].Frequency
	})
	if len(ranked) > MaxRanked {
		ranked = ranked[:MaxRanked]
	}
	return ranked
}
