package models

// Confidence is the tier attached to a match result.
type Confidence string

const (
	ConfidenceHigh   Confidence = "High"
	ConfidenceMedium Confidence = "Medium"
	ConfidenceLow    Confidence = "Low"
)

// Criterion names one of the eight scoring dimensions.
type Criterion string

const (
	CriterionGeographic     Criterion = "geographicProximity"
	CriterionExperience     Criterion = "experienceLevel"
	CriterionQuality        Criterion = "qualityMetrics"
	CriterionAvailability   Criterion = "availabilityScore"
	CriterionServiceFit     Criterion = "serviceFit"
	CriterionResponseTime   Criterion = "responseTime"
	CriterionPrice          Criterion = "priceAlignment"
	CriterionSustainability Criterion = "sustainabilityMatch"
)

// Criteria holds the eight sub-scores of one builder, each in [0,100].
type Criteria struct {
	Geographic     float64 `json:"geographic_proximity"`
	Experience     float64 `json:"experience_level"`
	Quality        float64 `json:"quality_metrics"`
	Availability   float64 `json:"availability_score"`
	ServiceFit     float64 `json:"service_fit"`
	ResponseTime   float64 `json:"response_time"`
	Price          float64 `json:"price_alignment"`
	Sustainability float64 `json:"sustainability_match"`
}

// WeightProfile is the per-criterion weight vector.
type WeightProfile struct {
	Geographic     float64 `json:"geographic_proximity"`
	Experience     float64 `json:"experience_level"`
	Quality        float64 `json:"quality_metrics"`
	Availability   float64 `json:"availability_score"`
	ServiceFit     float64 `json:"service_fit"`
	ResponseTime   float64 `json:"response_time"`
	Price          float64 `json:"price_alignment"`
	Sustainability float64 `json:"sustainability_match"`
}

// Sum returns the total of all weights.
func (w WeightProfile) Sum() float64 {
	return w.Geographic + w.Experience + w.Quality + w.Availability +
		w.ServiceFit + w.ResponseTime + w.Price + w.Sustainability
}

// MatchResult is the scored pairing of one builder against one request.
type MatchResult struct {
	Builder          *Builder   `json:"builder"`
	Score            int        `json:"match_score"`
	Breakdown        Criteria   `json:"match_breakdown"`
	EstimatedCost    float64    `json:"estimated_cost"`
	Reasons          []string   `json:"recommendation_reasons"`
	Risks            []string   `json:"risk_factors"`
	TimeToCompletion int        `json:"time_to_completion"`
	Confidence       Confidence `json:"confidence"`
}

// ConfidenceDistribution counts match results per confidence tier.
type ConfidenceDistribution struct {
	High   int `json:"high"`
	Medium int `json:"medium"`
	Low    int `json:"low"`
}

// MatchingAnalytics summarises recent matching runs.
type MatchingAnalytics struct {
	AvgMatchScore         int                    `json:"avg_match_score"`
	TopPerformingCriteria string                 `json:"top_performing_criteria"`
	GeographicCoverage    int                    `json:"geographic_coverage"`
	QualityDistribution   ConfidenceDistribution `json:"quality_distribution"`
}
