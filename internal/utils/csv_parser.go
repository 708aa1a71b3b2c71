package utils

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"stand-lead-engine/internal/models"
)

// CSVParser errors
var (
	ErrEmptyCSV       = errors.New("CSV content is empty")
	ErrMissingColumns = errors.New("missing required columns")
	ErrNoDataRows     = errors.New("CSV file contains no data rows")
)

// RequiredColumns defines the columns that must be present in a builder import.
var RequiredColumns = []string{
	"id",
	"company_name",
	"city",
	"country",
}

// ColumnAliases maps alternative column names to standard names.
var ColumnAliases = map[string]string{
	"builder_id": "id",
	"builderid":  "id",
	"slug":       "id",

	"company":      "company_name",
	"companyname":  "company_name",
	"company name": "company_name",
	"name":         "company_name",

	"hq_city":    "city",
	"hq_country": "country",

	"established":  "established_year",
	"founded":      "established_year",
	"year_founded": "established_year",

	"locations":      "service_locations",
	"service_cities": "service_locations",

	"is_verified": "verified",
	"premium":     "premium_member",
	"reviews":     "review_count",
	"employees":   "team_size",
	"projects":    "projects_completed",

	"response_time":  "response_hours",
	"responsetime":   "response_hours",
	"response time":  "response_hours",
	"avg_project":    "average_project",
	"average_budget": "average_project",

	"trade_shows":    "trade_show_experience",
	"tradeshows":     "trade_show_experience",
	"sustainability": "sustainability_score",

	"email":         "contact_email",
	"contact email": "contact_email",
	"phone":         "contact_phone",
	"subscription":  "plan",
}

// CSVParser parses builder directory exports.
type CSVParser struct {
	columnMapping map[string]int
}

// NewCSVParser creates a new CSV parser instance.
func NewCSVParser() *CSVParser {
	return &CSVParser{columnMapping: make(map[string]int)}
}

// ParseBuilders parses CSV content into builders. List columns use ';' as
// separator and service_locations entries are written "City, Country".
// Rows that fail to parse or validate are reported and skipped.
func (p *CSVParser) ParseBuilders(content string) ([]*models.Builder, []error) {
	if strings.TrimSpace(content) == "" {
		return nil, []error{ErrEmptyCSV}
	}

	reader := csv.NewReader(strings.NewReader(content))
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, []error{fmt.Errorf("failed to read header: %w", err)}
	}

	if err := p.buildColumnMapping(header); err != nil {
		return nil, []error{err}
	}

	var builders []*models.Builder
	var parseErrors []error
	lineNum := 1

	for {
		lineNum++
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			parseErrors = append(parseErrors, fmt.Errorf("line %d: %w", lineNum, err))
			continue
		}

		b, err := p.parseRow(record)
		if err != nil {
			parseErrors = append(parseErrors, fmt.Errorf("line %d: %w", lineNum, err))
			continue
		}

		if err := models.ValidateBuilder(b); err != nil {
			parseErrors = append(parseErrors, fmt.Errorf("line %d: %w", lineNum, err))
			continue
		}

		b.Normalize()
		builders = append(builders, b)
	}

	if len(builders) == 0 && len(parseErrors) > 0 {
		return nil, append([]error{ErrNoDataRows}, parseErrors...)
	}

	return builders, parseErrors
}

func (p *CSVParser) buildColumnMapping(header []string) error {
	p.columnMapping = make(map[string]int)

	for i, col := range header {
		normalized := normalizeColumn(col)
		p.columnMapping[normalized] = i
	}

	var missing []string
	for _, required := range RequiredColumns {
		if _, ok := p.columnMapping[required]; !ok {
			missing = append(missing, required)
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
	}

	return nil
}

func normalizeColumn(col string) string {
	normalized := strings.ToLower(strings.TrimSpace(col))
	normalized = strings.TrimPrefix(normalized, "\ufeff")
	if alias, ok := ColumnAliases[normalized]; ok {
		return alias
	}
	return normalized
}

func (p *CSVParser) parseRow(record []string) (*models.Builder, error) {
	get := func(column string) string {
		idx, ok := p.columnMapping[column]
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	var err error
	intField := func(column string) int {
		if err != nil {
			return 0
		}
		var v int
		if v, err = parseInt(get(column)); err != nil {
			err = fmt.Errorf("invalid %s: %w", column, err)
		}
		return v
	}
	floatField := func(column string) float64 {
		if err != nil {
			return 0
		}
		var v float64
		if v, err = parseFloat(get(column)); err != nil {
			err = fmt.Errorf("invalid %s: %w", column, err)
		}
		return v
	}
	boolField := func(column string) bool {
		if err != nil {
			return false
		}
		var v bool
		if v, err = parseBool(get(column)); err != nil {
			err = fmt.Errorf("invalid %s: %w", column, err)
		}
		return v
	}

	b := &models.Builder{
		ID:                  get("id"),
		CompanyName:         get("company_name"),
		Headquarters:        models.Location{City: get("city"), Country: get("country")},
		ServiceLocations:    parseLocations(get("service_locations")),
		EstablishedYear:     intField("established_year"),
		Verified:            boolField("verified"),
		PremiumMember:       boolField("premium_member"),
		Rating:              floatField("rating"),
		ReviewCount:         intField("review_count"),
		TeamSize:            intField("team_size"),
		ProjectsCompleted:   intField("projects_completed"),
		ResponseHours:       models.ParseResponseHours(get("response_hours")),
		SustainabilityScore: floatField("sustainability_score"),
		Languages:           splitList(get("languages")),
		Certifications:      splitList(get("certifications")),
		Awards:              splitList(get("awards")),
		Specializations:     splitList(get("specializations")),
		TradeShowExperience: splitList(get("trade_show_experience")),
		Status:              models.BuilderStatus(get("status")),
		Plan:                models.PlanTier(get("plan")),
		ContactEmail:        get("contact_email"),
		ContactPhone:        get("contact_phone"),
		PriceRange: models.PriceRange{
			Basic:          models.PriceBand{Min: floatField("basic_min"), Max: floatField("basic_max")},
			Custom:         models.PriceBand{Min: floatField("custom_min"), Max: floatField("custom_max")},
			Premium:        models.PriceBand{Min: floatField("premium_min"), Max: floatField("premium_max")},
			AverageProject: floatField("average_project"),
			Currency:       strings.ToUpper(get("currency")),
		},
	}
	if err != nil {
		return nil, err
	}

	for _, s := range splitList(get("services")) {
		b.Services = append(b.Services, models.ServiceCategory(s))
	}

	return b, nil
}

// parseLocations reads "Berlin, Germany; Munich, Germany".
func parseLocations(s string) []models.Location {
	var out []models.Location
	for _, entry := range splitList(s) {
		city, country, _ := strings.Cut(entry, ",")
		city = strings.TrimSpace(city)
		if city == "" {
			continue
		}
		out = append(out, models.Location{City: city, Country: strings.TrimSpace(country)})
	}
	return out
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ";") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// parseFloat parses a string to float64, handling common formats. Blank is zero.
func parseFloat(s string) (float64, error) {
	if s == "" {
		return 0, nil
	}

	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimPrefix(s, "$")
	s = strings.TrimPrefix(s, "€")
	s = strings.TrimPrefix(s, "£")
	s = strings.TrimSpace(s)

	return strconv.ParseFloat(s, 64)
}

// parseInt parses a string to int, handling common formats. Blank is zero.
func parseInt(s string) (int, error) {
	if s == "" {
		return 0, nil
	}

	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)

	// Handle float strings (e.g., "45.0")
	if strings.Contains(s, ".") {
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, err
		}
		return int(f), nil
	}

	return strconv.Atoi(s)
}

func parseBool(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "", "no", "n", "0", "false":
		return false, nil
	case "yes", "y", "1", "true":
		return true, nil
	}
	return false, fmt.Errorf("unrecognised boolean %q", s)
}

// ValidateCSVStructure performs a quick validation of CSV structure without full parsing.
func ValidateCSVStructure(content string) (*CSVValidationResult, error) {
	result := &CSVValidationResult{
		Columns:        []string{},
		MissingColumns: []string{},
		Errors:         []string{},
	}

	if strings.TrimSpace(content) == "" {
		result.Errors = append(result.Errors, "empty file")
		return result, nil
	}

	reader := csv.NewReader(strings.NewReader(content))
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("failed to read header: %v", err))
		return result, nil
	}

	normalizedColumns := make(map[string]bool)
	for _, col := range header {
		normalizedColumns[normalizeColumn(col)] = true
		result.Columns = append(result.Columns, col)
	}

	for _, required := range RequiredColumns {
		if !normalizedColumns[required] {
			result.MissingColumns = append(result.MissingColumns, required)
		}
	}

	for {
		_, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("row error: %v", err))
			continue
		}
		result.RowCount++
	}

	result.Valid = len(result.MissingColumns) == 0 && result.RowCount > 0

	return result, nil
}

// CSVValidationResult contains the results of CSV validation.
type CSVValidationResult struct {
	Valid          bool     `json:"valid"`
	RowCount       int      `json:"row_count"`
	Columns        []string `json:"columns"`
	MissingColumns []string `json:"missing_columns"`
	Errors         []string `json:"errors"`
}
