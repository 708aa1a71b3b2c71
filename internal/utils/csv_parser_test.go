package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stand-lead-engine/internal/models"
)

func TestCSVParser_ValidFile(t *testing.T) {
	csvContent := `id,company_name,city,country,service_locations,established_year,verified,rating,team_size,response_time,services,trade_shows,custom_min,custom_max,average_project,plan,email
spree-stands,Spree Stands,Berlin,Germany,"Berlin, Germany; Leipzig, Germany",2005,yes,4.8,45,Within 2 hours,Design;Construction,IFA Berlin;bauma,300,500,"75,000",Enterprise,hello@spree.example
rhein-bau,Rhein Bau,Cologne,Germany,,2012,no,4.1,12,,Rental,,,,,,`

	parser := NewCSVParser()
	builders, errs := parser.ParseBuilders(csvContent)

	require.Empty(t, errs)
	require.Len(t, builders, 2)

	b := builders[0]
	assert.Equal(t, "spree-stands", b.ID)
	assert.Equal(t, "Spree Stands", b.CompanyName)
	assert.Equal(t, models.Location{City: "Berlin", Country: "Germany"}, b.Headquarters)
	assert.Equal(t, []models.Location{
		{City: "Berlin", Country: "Germany"},
		{City: "Leipzig", Country: "Germany"},
	}, b.ServiceLocations)
	assert.True(t, b.Verified)
	assert.Equal(t, 4.8, b.Rating)
	assert.Equal(t, 2, b.ResponseHours)
	assert.Equal(t, []models.ServiceCategory{models.ServiceDesign, models.ServiceConstruction}, b.Services)
	assert.Equal(t, []string{"ifa-berlin", "bauma"}, b.TradeShowExperience)
	assert.Equal(t, models.PriceBand{Min: 300, Max: 500}, b.PriceRange.Custom)
	assert.Equal(t, float64(75000), b.PriceRange.AverageProject)
	assert.Equal(t, models.PlanEnterprise, b.Plan)
	assert.Equal(t, "hello@spree.example", b.ContactEmail)

	// Defaults come from Normalize.
	r := builders[1]
	assert.Equal(t, []models.Location{{City: "Cologne", Country: "Germany"}}, r.ServiceLocations)
	assert.Equal(t, models.DefaultResponseHours, r.ResponseHours)
	assert.Equal(t, models.PlanFree, r.Plan)
	assert.Equal(t, models.BuilderStatusActive, r.Status)
}

func TestCSVParser_ColumnAliases(t *testing.T) {
	csvContent := `Builder_ID,Company,HQ_City,HQ_Country,Founded,Email
spree-stands,Spree Stands,Berlin,Germany,2005,hello@spree.example`

	parser := NewCSVParser()
	builders, errs := parser.ParseBuilders(csvContent)

	require.Empty(t, errs)
	require.Len(t, builders, 1)
	assert.Equal(t, "spree-stands", builders[0].ID)
	assert.Equal(t, 2005, builders[0].EstablishedYear)
	assert.Equal(t, "hello@spree.example", builders[0].ContactEmail)
}

func TestCSVParser_MissingRequiredColumns(t *testing.T) {
	csvContent := `id,company_name,city
spree-stands,Spree Stands,Berlin`

	parser := NewCSVParser()
	builders, errs := parser.ParseBuilders(csvContent)

	assert.Empty(t, builders)
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], ErrMissingColumns)
	assert.Contains(t, errs[0].Error(), "country")
}

func TestCSVParser_EmptyFile(t *testing.T) {
	parser := NewCSVParser()
	builders, errs := parser.ParseBuilders("")

	assert.Empty(t, builders)
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], ErrEmptyCSV)
}

func TestCSVParser_InvalidRowsAreSkipped(t *testing.T) {
	csvContent := `id,company_name,city,country,rating,verified,email
good,Good Stands,Berlin,Germany,4.5,true,good@example.com
bad-rating,Bad Rating,Berlin,Germany,9,true,
bad-bool,Bad Bool,Berlin,Germany,4,perhaps,
bad-email,Bad Email,Berlin,Germany,4,true,not-an-email`

	parser := NewCSVParser()
	builders, errs := parser.ParseBuilders(csvContent)

	require.Len(t, builders, 1)
	assert.Equal(t, "good", builders[0].ID)
	require.Len(t, errs, 3)
	assert.ErrorIs(t, errs[0], models.ErrInvalidRating)
	assert.Contains(t, errs[1].Error(), "line 4")
	assert.Contains(t, errs[1].Error(), "invalid verified")
	assert.ErrorIs(t, errs[2], models.ErrInvalidEmail)
}

func TestCSVParser_AllRowsInvalid(t *testing.T) {
	csvContent := `id,company_name,city,country
,Nameless,Berlin,Germany`

	parser := NewCSVParser()
	builders, errs := parser.ParseBuilders(csvContent)

	assert.Empty(t, builders)
	require.Len(t, errs, 2)
	assert.ErrorIs(t, errs[0], ErrNoDataRows)
	assert.ErrorIs(t, errs[1], models.ErrEmptyBuilderID)
}

func TestValidateCSVStructure(t *testing.T) {
	result, err := ValidateCSVStructure("company,city\nSpree,Berlin\nRhein,Cologne\n")
	require.NoError(t, err)

	assert.False(t, result.Valid)
	assert.Equal(t, 2, result.RowCount)
	assert.Equal(t, []string{"id", "country"}, result.MissingColumns)

	result, err = ValidateCSVStructure("id,name,city,country\nspree,Spree,Berlin,Germany\n")
	require.NoError(t, err)
	assert.True(t, result.Valid)
}
