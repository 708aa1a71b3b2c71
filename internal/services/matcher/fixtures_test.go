package matcher

import (
	"stand-lead-engine/internal/models"
)

// mockBuilder creates a verified Berlin builder with strong defaults.
func mockBuilder(overrides map[string]interface{}) *models.Builder {
	b := &models.Builder{
		ID:                  "bld-berlin",
		CompanyName:         "Spree Messebau GmbH",
		EstablishedYear:     2010,
		Headquarters:        models.Location{City: "Berlin", Country: "Germany"},
		ServiceLocations:    []models.Location{{City: "Berlin", Country: "Germany"}},
		Verified:            true,
		Rating:              4.8,
		ReviewCount:         120,
		TeamSize:            40,
		ProjectsCompleted:   600,
		ResponseHours:       1,
		Languages:           []string{"English", "German"},
		Certifications:      []string{"ISO 9001", "ISO 14001", "ESSA", "FAMAB"},
		Awards:              []string{"Red Dot", "ADAM Award"},
		Services:            []models.ServiceCategory{models.ServiceDesign, models.ServiceConstruction, models.ServiceTechnology},
		Specializations:     []string{"technology"},
		TradeShowExperience: []string{"ifa-berlin"},
		SustainabilityScore: 85,
		Status:              models.BuilderStatusActive,
		Plan:                models.PlanProfessional,
		ContactEmail:        "projects@spree-messebau.example",
	}
	b.PriceRange = models.PriceRange{
		Basic:          models.PriceBand{Min: 100, Max: 200},
		Custom:         models.PriceBand{Min: 300, Max: 500},
		Premium:        models.PriceBand{Min: 600, Max: 1000},
		AverageProject: 75000,
		Currency:       "EUR",
	}

	if v, ok := overrides["id"]; ok {
		b.ID = v.(string)
	}
	if v, ok := overrides["verified"]; ok {
		b.Verified = v.(bool)
	}
	if v, ok := overrides["premium"]; ok {
		b.PremiumMember = v.(bool)
	}
	if v, ok := overrides["rating"]; ok {
		b.Rating = v.(float64)
	}
	if v, ok := overrides["review_count"]; ok {
		b.ReviewCount = v.(int)
	}
	if v, ok := overrides["team_size"]; ok {
		b.TeamSize = v.(int)
	}
	if v, ok := overrides["response_hours"]; ok {
		b.ResponseHours = v.(int)
	}
	if v, ok := overrides["locations"]; ok {
		b.ServiceLocations = v.([]models.Location)
	}
	if v, ok := overrides["headquarters"]; ok {
		b.Headquarters = v.(models.Location)
	}
	if v, ok := overrides["status"]; ok {
		b.Status = v.(models.BuilderStatus)
	}
	if v, ok := overrides["plan"]; ok {
		b.Plan = v.(models.PlanTier)
	}
	if v, ok := overrides["current_leads"]; ok {
		b.CurrentLeads = v.(int)
	}
	if v, ok := overrides["specializations"]; ok {
		b.Specializations = v.([]string)
	}
	if v, ok := overrides["experience"]; ok {
		b.TradeShowExperience = v.([]string)
	}
	if v, ok := overrides["average_project"]; ok {
		b.PriceRange.AverageProject = v.(float64)
	}
	if v, ok := overrides["certifications"]; ok {
		b.Certifications = v.([]string)
	}
	if v, ok := overrides["awards"]; ok {
		b.Awards = v.([]string)
	}
	if v, ok := overrides["languages"]; ok {
		b.Languages = v.([]string)
	}
	if v, ok := overrides["services"]; ok {
		b.Services = v.([]models.ServiceCategory)
	}

	return b
}

// mockRequest creates a mid-range 120 sqm quote request for IFA Berlin.
func mockRequest(overrides map[string]interface{}) *models.QuoteRequest {
	r := &models.QuoteRequest{
		ID:            "qr-001",
		TradeShowSlug: "ifa-berlin",
		TradeShowName: "IFA Berlin",
		StandSize:     120,
		Budget:        "mid-range",
		CompanyName:   "Acme Audio",
		ContactEmail:  "events@acme.example",
	}

	if v, ok := overrides["stand_size"]; ok {
		r.StandSize = v.(float64)
	}
	if v, ok := overrides["budget"]; ok {
		r.Budget = v.(string)
	}
	if v, ok := overrides["trade_show_slug"]; ok {
		r.TradeShowSlug = v.(string)
	}

	return r
}

func berlinAnchor() models.Anchor {
	return models.Anchor{
		City:          "Berlin",
		Country:       "Germany",
		TradeShowSlug: "ifa-berlin",
		TradeShowName: "IFA Berlin",
		Industries:    []string{"technology", "consumer-electronics"},
		ReferenceYear: 2025,
	}
}
