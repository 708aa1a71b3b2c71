package matcher

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"stand-lead-engine/internal/models"
)

func TestReasons(t *testing.T) {
	b := mockBuilder(map[string]interface{}{"premium": true})
	anchor := berlinAnchor()
	c := ScoreCriteria(b, mockRequest(nil), anchor, models.Preferences{PrioritizeSustainability: true})

	reasons := Reasons(b, c, anchor)

	assert.Equal(t, []string{
		"Local presence in Berlin, Germany",
		"Extensive experience with IFA Berlin and similar events",
		"Excellent rating (4.8/5) with 120 verified reviews",
		"Award-winning design team with 2 industry recognition(s)",
		"Premium certified builder with enhanced service guarantees",
		"Industry leader in sustainable exhibition practices",
		"Fast response time: within 1 hour",
		"Large dedicated team (40 professionals) for complex projects",
	}, reasons)
}

func TestReasonsEmptyForWeakBuilder(t *testing.T) {
	b := mockBuilder(map[string]interface{}{
		"awards":         []string{},
		"team_size":      8,
		"response_hours": 24,
	})
	c := models.Criteria{Geographic: 40, Experience: 20, Quality: 50, ResponseTime: 50}

	assert.Empty(t, Reasons(b, c, berlinAnchor()))
}

func TestRisks(t *testing.T) {
	b := mockBuilder(map[string]interface{}{"review_count": 5})
	c := models.Criteria{Geographic: 40, Experience: 30, Availability: 55, Price: 30}

	assert.Equal(t, []string{
		"International builder may have higher logistics costs",
		"Limited experience with this type of exhibition",
		"May have limited availability due to high demand",
		"Limited client feedback available",
		"Pricing may not align well with stated budget",
	}, Risks(b, c))

	strong := models.Criteria{Geographic: 100, Experience: 100, Availability: 100, Price: 100}
	assert.Empty(t, Risks(mockBuilder(nil), strong))
}

func TestDetermineConfidence(t *testing.T) {
	high := models.Criteria{Geographic: 100, Experience: 80, Quality: 80}
	medium := models.Criteria{Geographic: 60, Experience: 60, Quality: 60}
	low := models.Criteria{Geographic: 40, Experience: 50, Quality: 60}

	assert.Equal(t, models.ConfidenceHigh, DetermineConfidence(mockBuilder(nil), high))
	assert.Equal(t, models.ConfidenceMedium, DetermineConfidence(mockBuilder(map[string]interface{}{"review_count": 49}), high))
	assert.Equal(t, models.ConfidenceLow, DetermineConfidence(mockBuilder(map[string]interface{}{"verified": false}), high))
	assert.Equal(t, models.ConfidenceMedium, DetermineConfidence(mockBuilder(nil), medium))
	assert.Equal(t, models.ConfidenceLow, DetermineConfidence(mockBuilder(nil), low))
}

func TestEstimateProjectCost(t *testing.T) {
	b := mockBuilder(nil)

	assert.Equal(t, 48000.0, EstimateProjectCost(b, mockRequest(nil)))
	assert.Equal(t, 18000.0, EstimateProjectCost(b, mockRequest(map[string]interface{}{"budget": "budget-friendly"})))
	assert.Equal(t, 18000.0, EstimateProjectCost(b, mockRequest(map[string]interface{}{"budget": "Basic package"})))
	assert.Equal(t, 96000.0, EstimateProjectCost(b, mockRequest(map[string]interface{}{"budget": "luxury"})))
}

func TestTimeToCompletion(t *testing.T) {
	tests := []struct {
		size float64
		team int
		want int
	}{
		{120, 40, 63},  // 42 * 1.2 * 1.25
		{50, 100, 29},  // 42 * 1 * 0.7
		{200, 50, 84},  // 42 * 2 * 1
		{100, 10, 210}, // 42 * 1 * 5
		{100, 0, 2100},
	}

	for _, tt := range tests {
		b := mockBuilder(map[string]interface{}{"team_size": tt.team})
		req := mockRequest(map[string]interface{}{"stand_size": tt.size})
		assert.Equal(t, tt.want, TimeToCompletion(b, req), "size=%v team=%d", tt.size, tt.team)
	}
}
