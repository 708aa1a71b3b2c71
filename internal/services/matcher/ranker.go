package matcher

import (
	"math"
	"sort"

	"stand-lead-engine/internal/models"
)

const (
	// MinMatchScore is the aggregate below which a builder is never returned.
	MinMatchScore = 30

	// MaxResults caps how many matches a single run returns.
	MaxResults = 8
)

// Aggregate returns round(Σ sub-score × weight), clamped to [0,100].
func Aggregate(c models.Criteria, w models.WeightProfile) int {
	sum := c.Geographic*w.Geographic +
		c.Experience*w.Experience +
		c.Quality*w.Quality +
		c.Availability*w.Availability +
		c.ServiceFit*w.ServiceFit +
		c.ResponseTime*w.ResponseTime +
		c.Price*w.Price +
		c.Sustainability*w.Sustainability

	return int(clamp(math.Round(sum)))
}

// Rank drops results under MinMatchScore, sorts the rest by score descending
// and truncates to limit. Ties keep their input order.
func Rank(results []*models.MatchResult, limit int) []*models.MatchResult {
	ranked := make([]*models.MatchResult, 0, len(results))
	for _, r := range results {
		if r.Score >= MinMatchScore {
			ranked = append(ranked, r)
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})

	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	return ranked
}
