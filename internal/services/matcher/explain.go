package matcher

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"stand-lead-engine/internal/models"
)

// Reasons derives the "why recommended" lines from a score breakdown.
func Reasons(b *models.Builder, c models.Criteria, anchor models.Anchor) []string {
	reasons := make([]string, 0, 4)

	if c.Geographic >= 80 {
		reasons = append(reasons, fmt.Sprintf("Local presence in %s, %s", anchor.City, anchor.Country))
	}

	if c.Experience >= 80 {
		reasons = append(reasons, fmt.Sprintf("Extensive experience with %s and similar events", anchor.DisplayName()))
	}

	if c.Quality >= 85 {
		reasons = append(reasons, fmt.Sprintf("Excellent rating (%s/5) with %d verified reviews",
			strconv.FormatFloat(b.Rating, 'f', -1, 64), b.ReviewCount))
	}

	if len(b.Awards) > 0 {
		reasons = append(reasons, fmt.Sprintf("Award-winning design team with %d industry recognition(s)", len(b.Awards)))
	}

	if b.PremiumMember {
		reasons = append(reasons, "Premium certified builder with enhanced service guarantees")
	}

	if c.Sustainability >= 80 {
		reasons = append(reasons, "Industry leader in sustainable exhibition practices")
	}

	if c.ResponseTime >= 85 {
		reasons = append(reasons, "Fast response time: "+formatHours(b.ResponseHours))
	}

	if b.TeamSize >= 30 {
		reasons = append(reasons, fmt.Sprintf("Large dedicated team (%d professionals) for complex projects", b.TeamSize))
	}

	return reasons
}

// Risks derives risk lines from low sub-scores and thin review history.
func Risks(b *models.Builder, c models.Criteria) []string {
	risks := make([]string, 0, 2)

	if c.Geographic < 60 {
		risks = append(risks, "International builder may have higher logistics costs")
	}

	if c.Experience < 50 {
		risks = append(risks, "Limited experience with this type of exhibition")
	}

	if c.Availability < 60 {
		risks = append(risks, "May have limited availability due to high demand")
	}

	if b.ReviewCount < 20 {
		risks = append(risks, "Limited client feedback available")
	}

	if c.Price < 50 {
		risks = append(risks, "Pricing may not align well with stated budget")
	}

	return risks
}

// DetermineConfidence tiers a match on the headline criteria and the
// builder's verification and review depth.
func DetermineConfidence(b *models.Builder, c models.Criteria) models.Confidence {
	avg := (c.Geographic + c.Experience + c.Quality) / 3

	switch {
	case avg >= 80 && b.Verified && b.ReviewCount >= 50:
		return models.ConfidenceHigh
	case avg >= 60 && b.Verified:
		return models.ConfidenceMedium
	default:
		return models.ConfidenceLow
	}
}

// EstimateProjectCost prices the stand at the midpoint of the tier implied by
// the budget text, times the stand size.
func EstimateProjectCost(b *models.Builder, req *models.QuoteRequest) float64 {
	budget := strings.ToLower(req.Budget)

	band := b.PriceRange.Custom
	switch {
	case strings.Contains(budget, "budget") || strings.Contains(budget, "basic"):
		band = b.PriceRange.Basic
	case strings.Contains(budget, "premium") || strings.Contains(budget, "luxury"):
		band = b.PriceRange.Premium
	}

	return band.Midpoint() * req.StandSize
}

// baseBuildDays is the typical turnaround of a 100 sqm stand for a 50 person team.
const baseBuildDays = 42

// TimeToCompletion estimates build days from stand size and team size.
func TimeToCompletion(b *models.Builder, req *models.QuoteRequest) int {
	sizeMultiplier := math.Max(1, req.StandSize/100)

	// A builder without a declared team is treated as a one-person shop.
	teamMultiplier := 50.0
	if b.TeamSize > 0 {
		teamMultiplier = math.Max(0.7, 50/float64(b.TeamSize))
	}

	return int(math.Round(baseBuildDays * sizeMultiplier * teamMultiplier))
}

func formatHours(h int) string {
	if h == 1 {
		return "within 1 hour"
	}
	return fmt.Sprintf("within %d hours", h)
}
