// Package models defines the data structures for the stand lead engine.
package models

import (
	"strings"
	"time"
)

// LeadStatus represents the lifecycle status of a lead.
type LeadStatus string

const (
	LeadStatusNew       LeadStatus = "new"
	LeadStatusRouted    LeadStatus = "routed"
	LeadStatusViewed    LeadStatus = "viewed"
	LeadStatusQuoted    LeadStatus = "quoted"
	LeadStatusConverted LeadStatus = "converted"
	LeadStatusLost      LeadStatus = "lost"
)

// IsOpen reports whether a lead in this status still occupies builder capacity.
func (s LeadStatus) IsOpen() bool {
	switch s {
	case LeadStatusNew, LeadStatusRouted, LeadStatusViewed, LeadStatusQuoted:
		return true
	}
	return false
}

// Priority marks how urgently a lead needs a response.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// IsUrgent reports whether builders should also be reached by SMS.
func (p Priority) IsUrgent() bool {
	return p == PriorityHigh || p == PriorityUrgent
}

// Preferences are the request-time matching preferences of a client.
type Preferences struct {
	PrioritizeExperience     bool     `json:"prioritize_experience"`
	PrioritizeCost           bool     `json:"prioritize_cost"`
	PrioritizeSustainability bool     `json:"prioritize_sustainability"`
	PrioritizeLocalBuilders  bool     `json:"prioritize_local_builders"`
	MaxBudget                float64  `json:"max_budget,omitempty" validate:"gte=0"`
	PreferredLanguages       []string `json:"preferred_languages,omitempty"`
	RequiredCertifications   []string `json:"required_certifications,omitempty"`
}

// QuoteRequest is the scoring input: a client asking builders for a stand quote.
type QuoteRequest struct {
	ID              string      `json:"id"`
	TradeShowSlug   string      `json:"trade_show_slug" validate:"required"`
	TradeShowName   string      `json:"trade_show_name,omitempty"`
	StandSize       float64     `json:"stand_size" validate:"gt=0"`
	Budget          string      `json:"budget"`
	Timeline        string      `json:"timeline,omitempty"`
	CompanyName     string      `json:"company_name" validate:"required"`
	ContactEmail    string      `json:"contact_email" validate:"required,email"`
	Status          string      `json:"status,omitempty"`
	MatchedBuilders []string    `json:"matched_builders,omitempty"`
	Priority        Priority    `json:"priority,omitempty"`
	Preferences     Preferences `json:"preferences"`
	CreatedAt       time.Time   `json:"created_at"`
}

// Lead is a prospective client's submission that gets routed to builders.
type Lead struct {
	ID               string      `json:"id" db:"id"`
	TradeShowSlug    string      `json:"trade_show_slug,omitempty" db:"trade_show_slug"`
	TradeShowName    string      `json:"trade_show_name,omitempty" db:"trade_show_name"`
	CompanyName      string      `json:"company_name" db:"company_name" validate:"required"`
	ContactName      string      `json:"contact_name,omitempty" db:"contact_name"`
	ContactEmail     string      `json:"contact_email" db:"contact_email" validate:"required,email"`
	ContactPhone     string      `json:"contact_phone,omitempty" db:"contact_phone"`
	City             string      `json:"city" db:"city" validate:"required"`
	Country          string      `json:"country" db:"country" validate:"required"`
	Budget           string      `json:"budget,omitempty" db:"budget"`
	EventDate        string      `json:"event_date,omitempty" db:"event_date"`
	StandSize        float64     `json:"stand_size" db:"stand_size" validate:"gte=0"`
	Status           LeadStatus  `json:"status" db:"status"`
	Priority         Priority    `json:"priority,omitempty" db:"priority"`
	Preferences      Preferences `json:"preferences" db:"preferences"`
	AssignedBuilders []string    `json:"assigned_builders" db:"assigned_builders"`
	BuilderEmails    []string    `json:"builder_emails" db:"builder_emails"`
	MatchingBuilders int         `json:"matching_builders" db:"matching_builders"`
	MatchScore       float64     `json:"match_score" db:"match_score"`
	RoutedAt         *time.Time  `json:"routed_at,omitempty" db:"routed_at"`
	ReRouted         bool        `json:"re_routed" db:"re_routed"`
	CreatedAt        time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time   `json:"updated_at" db:"updated_at"`
}

// DefaultStandSize is used when a lead leaves the stand size blank.
const DefaultStandSize = 36

// Normalize resolves lead defaults at ingestion.
func (l *Lead) Normalize() {
	l.City = strings.TrimSpace(l.City)
	l.Country = strings.TrimSpace(l.Country)
	l.TradeShowSlug = strings.ToLower(strings.TrimSpace(l.TradeShowSlug))
	if l.Status == "" {
		l.Status = LeadStatusNew
	}
	if l.Priority == "" {
		l.Priority = PriorityNormal
	}
	if l.StandSize <= 0 {
		l.StandSize = DefaultStandSize
	}
}

// Location renders the lead's city and country for notifications.
func (l *Lead) Location() string {
	return l.City + ", " + l.Country
}

// LastActivity is the instant the re-route cutoff is measured from.
func (l *Lead) LastActivity() time.Time {
	if l.RoutedAt != nil {
		return *l.RoutedAt
	}
	return l.CreatedAt
}

// QuoteRequest projects the lead into the scoring input.
func (l *Lead) QuoteRequest() *QuoteRequest {
	return &QuoteRequest{
		ID:              l.ID,
		TradeShowSlug:   l.TradeShowSlug,
		TradeShowName:   l.TradeShowName,
		StandSize:       l.StandSize,
		Budget:          l.Budget,
		CompanyName:     l.CompanyName,
		ContactEmail:    l.ContactEmail,
		Status:          string(l.Status),
		MatchedBuilders: l.AssignedBuilders,
		Priority:        l.Priority,
		Preferences:     l.Preferences,
		CreatedAt:       l.CreatedAt,
	}
}

// LeadPatch is a partial lead update. Nil fields are left untouched.
type LeadPatch struct {
	Status           *LeadStatus `json:"status,omitempty"`
	AssignedBuilders []string    `json:"assigned_builders,omitempty"`
	BuilderEmails    []string    `json:"builder_emails,omitempty"`
	MatchingBuilders *int        `json:"matching_builders,omitempty"`
	MatchScore       *float64    `json:"match_score,omitempty"`
	RoutedAt         *time.Time  `json:"routed_at,omitempty"`
	ReRouted         *bool       `json:"re_routed,omitempty"`
}

// Apply writes the non-nil fields of the patch onto the lead.
func (p LeadPatch) Apply(l *Lead) {
	if p.Status != nil {
		l.Status = *p.Status
	}
	if p.AssignedBuilders != nil {
		l.AssignedBuilders = append([]string(nil), p.AssignedBuilders...)
	}
	if p.BuilderEmails != nil {
		l.BuilderEmails = append([]string(nil), p.BuilderEmails...)
	}
	if p.MatchingBuilders != nil {
		l.MatchingBuilders = *p.MatchingBuilders
	}
	if p.MatchScore != nil {
		l.MatchScore = *p.MatchScore
	}
	if p.RoutedAt != nil {
		t := *p.RoutedAt
		l.RoutedAt = &t
	}
	if p.ReRouted != nil {
		l.ReRouted = *p.ReRouted
	}
}

// Clone returns a deep copy of the lead.
func (l *Lead) Clone() *Lead {
	c := *l
	c.AssignedBuilders = append([]string(nil), l.AssignedBuilders...)
	c.BuilderEmails = append([]string(nil), l.BuilderEmails...)
	c.Preferences.PreferredLanguages = append([]string(nil), l.Preferences.PreferredLanguages...)
	c.Preferences.RequiredCertifications = append([]string(nil), l.Preferences.RequiredCertifications...)
	if l.RoutedAt != nil {
		t := *l.RoutedAt
		c.RoutedAt = &t
	}
	return &c
}

// Assignment links a lead to one builder it was routed to.
type Assignment struct {
	ID               string    `json:"id"`
	LeadID           string    `json:"lead_id"`
	BuilderID        string    `json:"builder_id"`
	BuilderEmail     string    `json:"builder_email"`
	MatchScore       int       `json:"match_score"`
	AssignedAt       time.Time `json:"assigned_at"`
	NotificationSent bool      `json:"notification_sent"`
}
