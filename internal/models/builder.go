// Package models defines the data structures for the stand lead engine.
package models

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

// BuilderStatus represents the directory status of a builder.
type BuilderStatus string

const (
	BuilderStatusActive   BuilderStatus = "active"
	BuilderStatusInactive BuilderStatus = "inactive"
	BuilderStatusPending  BuilderStatus = "pending"
)

// PlanTier is the subscription plan of a builder. It caps concurrent open leads.
type PlanTier string

const (
	PlanFree         PlanTier = "free"
	PlanProfessional PlanTier = "professional"
	PlanEnterprise   PlanTier = "enterprise"
)

// planCaps maps a plan to the maximum number of open leads a builder may hold.
var planCaps = map[PlanTier]int{
	PlanFree:         5,
	PlanProfessional: 20,
	PlanEnterprise:   100,
}

// PlanCap returns the open-lead cap for a plan. Unknown plans get the free cap.
func PlanCap(plan PlanTier) int {
	if c, ok := planCaps[PlanTier(strings.ToLower(string(plan)))]; ok {
		return c
	}
	return planCaps[PlanFree]
}

// ServiceCategory classifies a service a builder offers.
type ServiceCategory string

const (
	ServiceDesign       ServiceCategory = "Design"
	ServiceConstruction ServiceCategory = "Construction"
	ServiceRental       ServiceCategory = "Rental"
	ServiceTechnology   ServiceCategory = "Technology"
	ServiceLogistics    ServiceCategory = "Logistics"
	ServiceManagement   ServiceCategory = "Project Management"
)

// DefaultResponseHours is assumed when a builder declares no response time.
const DefaultResponseHours = 24

// Location is a city/country pair, optionally with coordinates.
type Location struct {
	City    string  `json:"city" yaml:"city"`
	Country string  `json:"country" yaml:"country"`
	Lat     float64 `json:"lat,omitempty" yaml:"lat,omitempty"`
	Lng     float64 `json:"lng,omitempty" yaml:"lng,omitempty"`
}

// PriceBand is a min/max price per square metre for one stand tier.
type PriceBand struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Midpoint returns the centre of the band.
func (b PriceBand) Midpoint() float64 {
	return (b.Min + b.Max) / 2
}

// PriceRange describes a builder's pricing per project tier.
type PriceRange struct {
	Basic          PriceBand `json:"basic_stand"`
	Custom         PriceBand `json:"custom_stand"`
	Premium        PriceBand `json:"premium_stand"`
	AverageProject float64   `json:"average_project"`
	Currency       string    `json:"currency"`
}

// Builder is an exhibition stand builder listed in the directory.
type Builder struct {
	ID                  string            `json:"id" db:"id"`
	CompanyName         string            `json:"company_name" db:"company_name"`
	EstablishedYear     int               `json:"established_year" db:"established_year"`
	Headquarters        Location          `json:"headquarters" db:"headquarters"`
	ServiceLocations    []Location        `json:"service_locations" db:"service_locations"`
	Verified            bool              `json:"verified" db:"verified"`
	PremiumMember       bool              `json:"premium_member" db:"premium_member"`
	Rating              float64           `json:"rating" db:"rating"`
	ReviewCount         int               `json:"review_count" db:"review_count"`
	TeamSize            int               `json:"team_size" db:"team_size"`
	ProjectsCompleted   int               `json:"projects_completed" db:"projects_completed"`
	ResponseHours       int               `json:"response_hours" db:"response_hours"`
	PriceRange          PriceRange        `json:"price_range" db:"price_range"`
	Languages           []string          `json:"languages" db:"languages"`
	Certifications      []string          `json:"certifications" db:"certifications"`
	Awards              []string          `json:"awards" db:"awards"`
	Services            []ServiceCategory `json:"services" db:"services"`
	Specializations     []string          `json:"specializations" db:"specializations"`
	TradeShowExperience []string          `json:"trade_show_experience" db:"trade_show_experience"`
	SustainabilityScore float64           `json:"sustainability_score" db:"sustainability_score"`
	Status              BuilderStatus     `json:"status" db:"status"`
	Plan                PlanTier          `json:"plan" db:"plan"`
	ContactEmail        string            `json:"contact_email" db:"contact_email"`
	ContactPhone        string            `json:"contact_phone,omitempty" db:"contact_phone"`
	CurrentLeads        int               `json:"current_leads" db:"-"`
	CreatedAt           time.Time         `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time         `json:"updated_at" db:"updated_at"`
}

// Normalize resolves the documented defaults once so scoring never has to.
func (b *Builder) Normalize() {
	b.Plan = PlanTier(strings.ToLower(strings.TrimSpace(string(b.Plan))))
	if _, ok := planCaps[b.Plan]; !ok {
		b.Plan = PlanFree
	}

	b.Status = BuilderStatus(strings.ToLower(strings.TrimSpace(string(b.Status))))
	if b.Status == "" {
		b.Status = BuilderStatusActive
	}

	if b.ResponseHours <= 0 {
		b.ResponseHours = DefaultResponseHours
	}
	if b.Rating < 0 {
		b.Rating = 0
	}
	if b.Rating > 5 {
		b.Rating = 5
	}
	if b.SustainabilityScore < 0 {
		b.SustainabilityScore = 0
	}
	if b.SustainabilityScore > 100 {
		b.SustainabilityScore = 100
	}

	b.Specializations = normalizeSlugs(b.Specializations)
	b.TradeShowExperience = normalizeSlugs(b.TradeShowExperience)
	b.Languages = dedupeFold(b.Languages)
	b.ContactEmail = strings.TrimSpace(b.ContactEmail)

	if len(b.ServiceLocations) == 0 && b.Headquarters.City != "" {
		b.ServiceLocations = []Location{b.Headquarters}
	}
}

// IsActive reports whether the builder can receive leads at all.
func (b *Builder) IsActive() bool {
	return b.Status != BuilderStatusInactive
}

// HasCapacity reports whether the builder is below its plan's open-lead cap.
func (b *Builder) HasCapacity() bool {
	return b.CurrentLeads < PlanCap(b.Plan)
}

// OffersService reports whether the builder lists the given service category.
func (b *Builder) OffersService(category ServiceCategory) bool {
	for _, s := range b.Services {
		if strings.EqualFold(string(s), string(category)) {
			return true
		}
	}
	return false
}

// Clone returns a deep copy so callers can mutate ingestion-time fields safely.
func (b *Builder) Clone() *Builder {
	c := *b
	c.ServiceLocations = append([]Location(nil), b.ServiceLocations...)
	c.Languages = append([]string(nil), b.Languages...)
	c.Certifications = append([]string(nil), b.Certifications...)
	c.Awards = append([]string(nil), b.Awards...)
	c.Services = append([]ServiceCategory(nil), b.Services...)
	c.Specializations = append([]string(nil), b.Specializations...)
	c.TradeShowExperience = append([]string(nil), b.TradeShowExperience...)
	return &c
}

var digitsRe = regexp.MustCompile(`\d+`)

// ParseResponseHours extracts the first number from a declared response time
// such as "Within 2 hours". It returns DefaultResponseHours when none is found.
func ParseResponseHours(declared string) int {
	m := digitsRe.FindString(declared)
	if m == "" {
		return DefaultResponseHours
	}
	h, err := strconv.Atoi(m)
	if err != nil || h <= 0 {
		return DefaultResponseHours
	}
	return h
}

func normalizeSlugs(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, s := range in {
		s = strings.ToLower(strings.TrimSpace(s))
		s = strings.ReplaceAll(s, " ", "-")
		if s == "" || seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}

func dedupeFold(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]bool, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		k := strings.ToLower(s)
		if s == "" || seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, s)
	}
	return out
}

// BulkUpsertResult contains the results of a bulk builder upsert.
type BulkUpsertResult struct {
	UpsertedCount int      `json:"upserted_count"`
	FailedCount   int      `json:"failed_count"`
	Errors        []string `json:"errors,omitempty"`
}
