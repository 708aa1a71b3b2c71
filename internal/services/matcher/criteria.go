package matcher

import (
	"math"
	"strings"

	"stand-lead-engine/internal/models"
)

// europeanCountries are treated as close enough to each other for a partial
// geographic score.
var europeanCountries = map[string]bool{
	"germany":        true,
	"france":         true,
	"united kingdom": true,
	"italy":          true,
	"spain":          true,
	"netherlands":    true,
}

// budgetBrackets maps a budget bracket to the project value it stands for.
var budgetBrackets = map[string]float64{
	"budget-friendly": 30000,
	"mid-range":       75000,
	"premium":         150000,
	"luxury":          300000,
}

const defaultBudget = 75000

// BudgetFor returns the project value a budget bracket stands for.
func BudgetFor(bracket string) float64 {
	if v, ok := budgetBrackets[strings.ToLower(strings.TrimSpace(bracket))]; ok {
		return v
	}
	return defaultBudget
}

// ScoreCriteria computes all eight sub-scores. It has no side effects.
func ScoreCriteria(b *models.Builder, req *models.QuoteRequest, anchor models.Anchor, prefs models.Preferences) models.Criteria {
	return models.Criteria{
		Geographic:     GeographicScore(b, anchor),
		Experience:     ExperienceScore(b, req, anchor),
		Quality:        QualityScore(b),
		Availability:   AvailabilityScore(b),
		ServiceFit:     ServiceFitScore(b, req, anchor),
		ResponseTime:   ResponseTimeScore(b),
		Price:          PriceAlignmentScore(b, req),
		Sustainability: SustainabilityScore(b, prefs),
	}
}

// GeographicScore is 100 for a local office, 80 for an office in the same
// country, 60 when both sides are in Europe, and 40 otherwise.
func GeographicScore(b *models.Builder, anchor models.Anchor) float64 {
	for _, loc := range b.ServiceLocations {
		if strings.EqualFold(loc.City, anchor.City) && strings.EqualFold(loc.Country, anchor.Country) {
			return 100
		}
	}

	for _, loc := range b.ServiceLocations {
		if strings.EqualFold(loc.Country, anchor.Country) {
			return 80
		}
	}

	builderInEurope := false
	for _, loc := range b.ServiceLocations {
		if europeanCountries[strings.ToLower(loc.Country)] {
			builderInEurope = true
			break
		}
	}
	if builderInEurope && europeanCountries[strings.ToLower(anchor.Country)] {
		return 60
	}

	return 40
}

// ExperienceScore rewards show experience, industry fit, years in business
// and completed projects.
func ExperienceScore(b *models.Builder, req *models.QuoteRequest, anchor models.Anchor) float64 {
	score := 0.0

	slug := req.TradeShowSlug
	if slug == "" {
		slug = anchor.TradeShowSlug
	}
	if slug != "" && contains(b.TradeShowExperience, strings.ToLower(slug)) {
		score += 40
	}

	for _, spec := range b.Specializations {
		if anchor.HasIndustry(spec) {
			score += 30
			break
		}
	}

	if b.EstablishedYear > 0 && anchor.ReferenceYear > b.EstablishedYear {
		years := float64(anchor.ReferenceYear - b.EstablishedYear)
		score += math.Min(20, years*2)
	}

	score += math.Min(10, float64(b.ProjectsCompleted)/50)

	return clamp(score)
}

// QualityScore combines rating, verification, certifications, awards and
// premium membership.
func QualityScore(b *models.Builder) float64 {
	score := b.Rating / 5 * 40

	if b.Verified {
		score += 20
	}
	score += math.Min(20, float64(len(b.Certifications))*5)
	score += math.Min(10, float64(len(b.Awards))*2)
	if b.PremiumMember {
		score += 10
	}

	return clamp(score)
}

// AvailabilityScore uses team size and response time as a proxy for workload.
func AvailabilityScore(b *models.Builder) float64 {
	score := 70.0

	switch {
	case b.TeamSize >= 40:
		score += 20
	case b.TeamSize >= 25:
		score += 15
	case b.TeamSize >= 15:
		score += 10
	}

	switch {
	case b.ResponseHours <= 2:
		score += 10
	case b.ResponseHours <= 6:
		score += 5
	default:
		score -= 5
	}

	return clamp(score)
}

// ServiceFitScore checks the services a stand of this size and industry needs.
func ServiceFitScore(b *models.Builder, req *models.QuoteRequest, anchor models.Anchor) float64 {
	score := 0.0

	if req.StandSize >= 100 {
		if b.OffersService(models.ServiceDesign) {
			score += 30
		}
	} else {
		score += 20
	}

	if anchor.HasIndustry("technology") && b.OffersService(models.ServiceTechnology) {
		score += 25
	}

	if b.OffersService(models.ServiceConstruction) {
		score += 25
	}

	for _, lang := range b.Languages {
		if strings.Contains(strings.ToLower(lang), "english") {
			score += 20
			break
		}
	}

	return clamp(score)
}

// ResponseTimeScore is a step function of declared response hours.
func ResponseTimeScore(b *models.Builder) float64 {
	h := b.ResponseHours
	switch {
	case h <= 2:
		return 100
	case h <= 4:
		return 85
	case h <= 8:
		return 70
	case h <= 24:
		return 50
	default:
		return 30
	}
}

// PriceAlignmentScore compares the request budget with the builder's average
// project price.
func PriceAlignmentScore(b *models.Builder, req *models.QuoteRequest) float64 {
	avg := b.PriceRange.AverageProject
	if avg <= 0 {
		return 30
	}

	ratio := BudgetFor(req.Budget) / avg
	switch {
	case ratio >= 0.8 && ratio <= 1.2:
		return 100
	case ratio >= 0.6 && ratio <= 1.5:
		return 80
	case ratio >= 0.4 && ratio <= 2.0:
		return 60
	default:
		return 30
	}
}

// SustainabilityScore only counts when the client asked for it.
func SustainabilityScore(b *models.Builder, prefs models.Preferences) float64 {
	if !prefs.PrioritizeSustainability {
		return 0
	}
	return clamp(b.SustainabilityScore)
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
