package matcher

import "stand-lead-engine/internal/models"

// DefaultWeights returns the weight profile used when no preference is set.
func DefaultWeights() models.WeightProfile {
	return models.WeightProfile{
		Geographic:     0.20,
		Experience:     0.25,
		Quality:        0.20,
		Availability:   0.10,
		ServiceFit:     0.15,
		ResponseTime:   0.05,
		Price:          0.05,
		Sustainability: 0.00,
	}
}

// ResolveWeights maps preferences onto a fresh weight profile.
//
// Each preference replaces a fixed subset of weights, applied in the order
// experience, cost, sustainability, local, so later preferences win on shared
// fields. The result is not renormalized and may sum to more than 1.0.
func ResolveWeights(prefs models.Preferences) models.WeightProfile {
	w := DefaultWeights()

	if prefs.PrioritizeExperience {
		w.Experience = 0.35
		w.Quality = 0.25
		w.Geographic = 0.15
	}

	if prefs.PrioritizeCost {
		w.Price = 0.20
		w.Geographic = 0.15
		w.Experience = 0.20
	}

	if prefs.PrioritizeSustainability {
		w.Sustainability = 0.15
		w.Quality = 0.15
		w.Experience = 0.20
	}

	if prefs.PrioritizeLocalBuilders {
		w.Geographic = 0.35
		w.Experience = 0.20
		w.ResponseTime = 0.10
	}

	return w
}
