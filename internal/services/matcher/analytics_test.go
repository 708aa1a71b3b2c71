package matcher

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"stand-lead-engine/internal/models"
)

func analyticsResult(country string, score int, c models.Criteria, conf models.Confidence) *models.MatchResult {
	return &models.MatchResult{
		Builder:    &models.Builder{Headquarters: models.Location{Country: country}},
		Score:      score,
		Breakdown:  c,
		Confidence: conf,
	}
}

func TestGenerateMatchingAnalytics(t *testing.T) {
	batches := [][]*models.MatchResult{
		{
			analyticsResult("Germany", 90, models.Criteria{Geographic: 100, Experience: 80, Quality: 70, ServiceFit: 60}, models.ConfidenceHigh),
			analyticsResult("germany", 70, models.Criteria{Geographic: 80, Experience: 60, Quality: 90, ServiceFit: 60}, models.ConfidenceMedium),
		},
		{
			analyticsResult("France", 51, models.Criteria{Geographic: 60, Experience: 40, Quality: 50, ServiceFit: 60}, models.ConfidenceLow),
		},
	}

	got := GenerateMatchingAnalytics(batches)

	assert.Equal(t, 70, got.AvgMatchScore)
	assert.Equal(t, string(models.CriterionGeographic), got.TopPerformingCriteria)
	// 2 distinct countries out of 25
	assert.Equal(t, 8, got.GeographicCoverage)
	assert.Equal(t, models.ConfidenceDistribution{High: 1, Medium: 1, Low: 1}, got.QualityDistribution)
}

func TestGenerateMatchingAnalyticsTieKeepsEarlierCriterion(t *testing.T) {
	c := models.Criteria{Geographic: 50, Experience: 70, Quality: 70, ServiceFit: 70}
	got := GenerateMatchingAnalytics([][]*models.MatchResult{{analyticsResult("Spain", 60, c, models.ConfidenceLow)}})

	assert.Equal(t, string(models.CriterionExperience), got.TopPerformingCriteria)
}

func TestGenerateMatchingAnalyticsEmpty(t *testing.T) {
	got := GenerateMatchingAnalytics(nil)

	assert.Equal(t, models.MatchingAnalytics{TopPerformingCriteria: "none"}, got)
}

func TestEstimatedResponseTime(t *testing.T) {
	withHours := func(hours ...int) []*models.MatchResult {
		out := make([]*models.MatchResult, len(hours))
		for i, h := range hours {
			out[i] = &models.MatchResult{Builder: &models.Builder{ResponseHours: h}}
		}
		return out
	}

	assert.Equal(t, "48 hours", EstimatedResponseTime(nil))
	assert.Equal(t, "2-4 hours", EstimatedResponseTime(withHours(1, 3)))
	assert.Equal(t, "6-12 hours", EstimatedResponseTime(withHours(4, 8)))
	assert.Equal(t, "24-48 hours", EstimatedResponseTime(withHours(24, 12)))
	assert.Equal(t, "2-3 business days", EstimatedResponseTime(withHours(48, 24)))
}
