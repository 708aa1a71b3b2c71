package models

import "strings"

// TradeShow is an exhibition event builders can be matched against.
type TradeShow struct {
	Slug       string   `json:"slug" yaml:"slug"`
	Name       string   `json:"name" yaml:"name"`
	City       string   `json:"city" yaml:"city"`
	Country    string   `json:"country" yaml:"country"`
	Venue      string   `json:"venue,omitempty" yaml:"venue,omitempty"`
	Industries []string `json:"industries" yaml:"industries"`
	StartDate  string   `json:"start_date,omitempty" yaml:"start_date,omitempty"`
	EndDate    string   `json:"end_date,omitempty" yaml:"end_date,omitempty"`
}

// Anchor is the geographic and industry context eligibility is judged against.
type Anchor struct {
	City          string   `json:"city"`
	Country       string   `json:"country"`
	TradeShowSlug string   `json:"trade_show_slug,omitempty"`
	TradeShowName string   `json:"trade_show_name,omitempty"`
	Industries    []string `json:"industries,omitempty"`
	ReferenceYear int      `json:"reference_year"`
}

// Anchor builds the matching context for this show.
func (t *TradeShow) Anchor(referenceYear int) Anchor {
	return Anchor{
		City:          t.City,
		Country:       t.Country,
		TradeShowSlug: t.Slug,
		TradeShowName: t.Name,
		Industries:    normalizeSlugs(t.Industries),
		ReferenceYear: referenceYear,
	}
}

// HasIndustry reports whether the anchor carries the given industry slug.
func (a Anchor) HasIndustry(slug string) bool {
	for _, i := range a.Industries {
		if strings.EqualFold(i, slug) {
			return true
		}
	}
	return false
}

// DisplayName returns the show name, falling back to a generic label.
func (a Anchor) DisplayName() string {
	if a.TradeShowName != "" {
		return a.TradeShowName
	}
	return "this event"
}
