package matcher

import (
	"strings"

	"stand-lead-engine/internal/models"
)

// FilterCandidates narrows the directory to builders that are contextually
// and operationally eligible for the anchor. Output preserves input order and
// holds each builder ID at most once. An empty result is valid.
func FilterCandidates(builders []*models.Builder, anchor models.Anchor) []*models.Builder {
	out := make([]*models.Builder, 0, len(builders))
	seen := make(map[string]bool, len(builders))

	for _, b := range builders {
		if b == nil || seen[b.ID] {
			continue
		}
		if !isRelevant(b, anchor) {
			continue
		}
		if !b.Verified || !b.IsActive() || !b.HasCapacity() {
			continue
		}
		seen[b.ID] = true
		out = append(out, b)
	}

	return out
}

// isRelevant reports whether a builder serves the anchor location or carries
// experience with its show or industries.
func isRelevant(b *models.Builder, anchor models.Anchor) bool {
	for _, loc := range b.ServiceLocations {
		if anchor.City != "" && strings.EqualFold(loc.City, anchor.City) {
			return true
		}
		if anchor.Country != "" && strings.EqualFold(loc.Country, anchor.Country) {
			return true
		}
	}

	if anchor.TradeShowSlug != "" && contains(b.TradeShowExperience, strings.ToLower(anchor.TradeShowSlug)) {
		return true
	}

	for _, spec := range b.Specializations {
		if anchor.HasIndustry(spec) {
			return true
		}
	}

	return false
}

// ApplyPreferenceFilters drops builders that violate hard client constraints:
// maximum budget, required certifications and preferred languages.
func ApplyPreferenceFilters(builders []*models.Builder, prefs models.Preferences) []*models.Builder {
	filtered := builders

	if prefs.MaxBudget > 0 {
		filtered = keep(filtered, func(b *models.Builder) bool {
			return b.PriceRange.AverageProject <= prefs.MaxBudget
		})
	}

	if len(prefs.RequiredCertifications) > 0 {
		filtered = keep(filtered, func(b *models.Builder) bool {
			return anySubstring(b.Certifications, prefs.RequiredCertifications)
		})
	}

	if len(prefs.PreferredLanguages) > 0 {
		filtered = keep(filtered, func(b *models.Builder) bool {
			return anySubstring(b.Languages, prefs.PreferredLanguages)
		})
	}

	return filtered
}

// CountOpenLeads returns, per builder ID, how many open leads list it as assigned.
func CountOpenLeads(leads []*models.Lead) map[string]int {
	counts := make(map[string]int)
	for _, l := range leads {
		if l == nil || !l.Status.IsOpen() {
			continue
		}
		for _, id := range l.AssignedBuilders {
			counts[id]++
		}
	}
	return counts
}

// ApplyOpenLeadCounts sets CurrentLeads on each builder from counts.
func ApplyOpenLeadCounts(builders []*models.Builder, counts map[string]int) {
	for _, b := range builders {
		b.CurrentLeads = counts[b.ID]
	}
}

func keep(builders []*models.Builder, fn func(*models.Builder) bool) []*models.Builder {
	out := make([]*models.Builder, 0, len(builders))
	for _, b := range builders {
		if fn(b) {
			out = append(out, b)
		}
	}
	return out
}

// anySubstring reports whether any of have contains any of want, case-insensitively.
func anySubstring(have, want []string) bool {
	for _, w := range want {
		w = strings.ToLower(w)
		for _, h := range have {
			if strings.Contains(strings.ToLower(h), w) {
				return true
			}
		}
	}
	return false
}
