package matcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stand-lead-engine/internal/models"
)

func ids(builders []*models.Builder) []string {
	out := make([]string, len(builders))
	for i, b := range builders {
		out[i] = b.ID
	}
	return out
}

func TestFilterCandidates(t *testing.T) {
	anchor := berlinAnchor()
	madrid := []models.Location{{City: "Madrid", Country: "Spain"}}

	builders := []*models.Builder{
		mockBuilder(map[string]interface{}{"id": "local"}),
		mockBuilder(map[string]interface{}{"id": "country", "locations": []models.Location{{City: "Hamburg", Country: "germany"}}}),
		mockBuilder(map[string]interface{}{"id": "show-experience", "locations": madrid, "specializations": []string{}}),
		mockBuilder(map[string]interface{}{"id": "industry", "locations": madrid, "experience": []string{}}),
		mockBuilder(map[string]interface{}{"id": "unrelated", "locations": madrid, "experience": []string{}, "specializations": []string{"automotive"}}),
		mockBuilder(map[string]interface{}{"id": "unverified", "verified": false}),
		mockBuilder(map[string]interface{}{"id": "inactive", "status": models.BuilderStatusInactive}),
		mockBuilder(map[string]interface{}{"id": "full", "plan": models.PlanFree, "current_leads": 5}),
		mockBuilder(map[string]interface{}{"id": "local"}),
	}

	got := FilterCandidates(builders, anchor)
	assert.Equal(t, []string{"local", "country", "show-experience", "industry"}, ids(got))
}

func TestFilterCandidatesUnverifiedWithoutOverlapExcluded(t *testing.T) {
	b := mockBuilder(map[string]interface{}{
		"verified":        false,
		"locations":       []models.Location{{City: "Toronto", Country: "Canada"}},
		"experience":      []string{},
		"specializations": []string{},
		"rating":          5.0,
		"premium":         true,
	})

	assert.Empty(t, FilterCandidates([]*models.Builder{b}, berlinAnchor()))
}

func TestFilterCandidatesCapacity(t *testing.T) {
	anchor := berlinAnchor()

	tests := []struct {
		plan    models.PlanTier
		current int
		want    bool
	}{
		{models.PlanFree, 4, true},
		{models.PlanFree, 5, false},
		{models.PlanProfessional, 19, true},
		{models.PlanProfessional, 20, false},
		{models.PlanEnterprise, 99, true},
		{models.PlanEnterprise, 100, false},
		{models.PlanTier("gold"), 5, false},
	}

	for _, tt := range tests {
		b := mockBuilder(map[string]interface{}{"plan": tt.plan, "current_leads": tt.current})
		got := FilterCandidates([]*models.Builder{b}, anchor)
		assert.Equal(t, tt.want, len(got) == 1, "plan=%s current=%d", tt.plan, tt.current)

		for _, c := range got {
			assert.Less(t, c.CurrentLeads, models.PlanCap(c.Plan))
		}
	}
}

func TestFilterCandidatesEmptyIsValid(t *testing.T) {
	got := FilterCandidates(nil, berlinAnchor())
	require.NotNil(t, got)
	assert.Empty(t, got)
}

func TestApplyPreferenceFilters(t *testing.T) {
	cheap := mockBuilder(map[string]interface{}{"id": "cheap", "average_project": 40000.0, "languages": []string{"Spanish"}})
	pricey := mockBuilder(map[string]interface{}{"id": "pricey", "average_project": 200000.0, "certifications": []string{"FAMAB"}})
	builders := []*models.Builder{cheap, pricey}

	assert.Equal(t, []string{"cheap"}, ids(ApplyPreferenceFilters(builders, models.Preferences{MaxBudget: 100000})))
	assert.Equal(t, []string{"cheap"}, ids(ApplyPreferenceFilters(builders, models.Preferences{RequiredCertifications: []string{"iso"}})))
	assert.Equal(t, []string{"pricey"}, ids(ApplyPreferenceFilters(builders, models.Preferences{PreferredLanguages: []string{"eng"}})))
	assert.Equal(t, []string{"cheap", "pricey"}, ids(ApplyPreferenceFilters(builders, models.Preferences{})))
}

func TestCountOpenLeads(t *testing.T) {
	leads := []*models.Lead{
		{ID: "l1", Status: models.LeadStatusNew, AssignedBuilders: []string{"a", "b"}},
		{ID: "l2", Status: models.LeadStatusRouted, AssignedBuilders: []string{"a"}},
		{ID: "l3", Status: models.LeadStatusQuoted, AssignedBuilders: []string{"a"}},
		{ID: "l4", Status: models.LeadStatusConverted, AssignedBuilders: []string{"a", "b"}},
		{ID: "l5", Status: models.LeadStatusLost, AssignedBuilders: []string{"b"}},
		nil,
	}

	counts := CountOpenLeads(leads)
	assert.Equal(t, 3, counts["a"])
	assert.Equal(t, 1, counts["b"])
	assert.Equal(t, 0, counts["c"])

	builders := []*models.Builder{mockBuilder(map[string]interface{}{"id": "a"}), mockBuilder(map[string]interface{}{"id": "c", "current_leads": 7})}
	ApplyOpenLeadCounts(builders, counts)
	assert.Equal(t, 3, builders[0].CurrentLeads)
	assert.Equal(t, 0, builders[1].CurrentLeads)
}
