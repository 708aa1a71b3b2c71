package matcher

import (
	"math"
	"strings"

	"stand-lead-engine/internal/models"
)

// coverageBaseline is the number of major exhibition countries coverage is measured against.
const coverageBaseline = 25

// GenerateMatchingAnalytics summarises a set of recent matching runs.
func GenerateMatchingAnalytics(batches [][]*models.MatchResult) models.MatchingAnalytics {
	var all []*models.MatchResult
	for _, batch := range batches {
		all = append(all, batch...)
	}

	if len(all) == 0 {
		return models.MatchingAnalytics{TopPerformingCriteria: "none"}
	}

	n := float64(len(all))
	var scoreSum, geo, exp, quality, service float64
	countries := make(map[string]bool)
	var dist models.ConfidenceDistribution

	for _, m := range all {
		scoreSum += float64(m.Score)
		geo += m.Breakdown.Geographic
		exp += m.Breakdown.Experience
		quality += m.Breakdown.Quality
		service += m.Breakdown.ServiceFit

		if m.Builder != nil && m.Builder.Headquarters.Country != "" {
			countries[strings.ToLower(m.Builder.Headquarters.Country)] = true
		}

		switch m.Confidence {
		case models.ConfidenceHigh:
			dist.High++
		case models.ConfidenceMedium:
			dist.Medium++
		default:
			dist.Low++
		}
	}

	// Ordered so ties resolve to the earlier criterion.
	averages := []struct {
		name  models.Criterion
		value float64
	}{
		{models.CriterionGeographic, geo / n},
		{models.CriterionExperience, exp / n},
		{models.CriterionQuality, quality / n},
		{models.CriterionServiceFit, service / n},
	}
	top := averages[0]
	for _, a := range averages[1:] {
		if a.value > top.value {
			top = a
		}
	}

	return models.MatchingAnalytics{
		AvgMatchScore:         int(math.Round(scoreSum / n)),
		TopPerformingCriteria: string(top.name),
		GeographicCoverage:    int(math.Round(float64(len(countries)) / coverageBaseline * 100)),
		QualityDistribution:   dist,
	}
}

// EstimatedResponseTime buckets the average builder response time of a
// match set into the window quoted back to the client.
func EstimatedResponseTime(matches []*models.MatchResult) string {
	if len(matches) == 0 {
		return "48 hours"
	}

	total := 0
	for _, m := range matches {
		total += m.Builder.ResponseHours
	}
	avg := float64(total) / float64(len(matches))

	switch {
	case avg <= 2:
		return "2-4 hours"
	case avg <= 6:
		return "6-12 hours"
	case avg <= 24:
		return "24-48 hours"
	default:
		return "2-3 business days"
	}
}
