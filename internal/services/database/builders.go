package database

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"stand-lead-engine/internal/models"
)

const builderColumns = `id, company_name, established_year, headquarters, service_locations,
	verified, premium_member, rating, review_count, team_size, projects_completed,
	response_hours, price_range, languages, certifications, awards, services,
	specializations, trade_show_experience, sustainability_score, status, plan,
	contact_email, contact_phone, created_at, updated_at`

// BuilderRepository handles builder database operations.
type BuilderRepository struct {
	db *DB
}

// NewBuilderRepository creates a new builder repository.
func NewBuilderRepository(db *DB) *BuilderRepository {
	return &BuilderRepository{db: db}
}

// List returns every builder in the directory ordered by company name.
func (r *BuilderRepository) List(ctx context.Context) ([]*models.Builder, error) {
	rows, err := r.db.query(ctx, "list_builders", `SELECT `+builderColumns+` FROM builders ORDER BY company_name, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query builders: %w", err)
	}
	defer rows.Close()

	var builders []*models.Builder
	for rows.Next() {
		b, err := scanBuilder(rows)
		if err != nil {
			return nil, err
		}
		builders = append(builders, b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating builders: %w", err)
	}

	return builders, nil
}

// GetByID retrieves a builder. It returns nil, nil when no row matches.
func (r *BuilderRepository) GetByID(ctx context.Context, id string) (*models.Builder, error) {
	row := r.db.queryRow(ctx, "get_builder", `SELECT `+builderColumns+` FROM builders WHERE id = $1`, id)
	b, err := scanBuilder(row)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

// BulkUpsert writes builders in one transaction. Each row runs in its own
// savepoint so a bad row is counted without aborting the batch.
func (r *BuilderRepository) BulkUpsert(ctx context.Context, builders []*models.Builder) (*models.BulkUpsertResult, error) {
	result := &models.BulkUpsertResult{Errors: []string{}}
	now := time.Now().UTC()

	err := r.db.WithTransaction(ctx, "upsert_builders", func(tx pgx.Tx) error {
		for _, b := range builders {
			if err := models.ValidateBuilder(b); err != nil {
				result.FailedCount++
				result.Errors = append(result.Errors, fmt.Sprintf("builder %s: %v", b.ID, err))
				continue
			}

			b = b.Clone()
			b.Normalize()

			if err := upsertBuilder(ctx, tx, b, now); err != nil {
				result.FailedCount++
				result.Errors = append(result.Errors, fmt.Sprintf("builder %s: %v", b.ID, err))
				continue
			}
			result.UpsertedCount++
		}
		return nil
	})

	if err != nil {
		return result, fmt.Errorf("bulk upsert failed: %w", err)
	}

	return result, nil
}

func upsertBuilder(ctx context.Context, tx pgx.Tx, b *models.Builder, now time.Time) error {
	args, err := builderArgs(b, now)
	if err != nil {
		return err
	}

	sp, err := tx.Begin(ctx)
	if err != nil {
		return err
	}

	_, err = sp.Exec(ctx, `
		INSERT INTO builders (`+builderColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17,
			$18, $19, $20, $21, $22, $23, $24, $25, $25)
		ON CONFLICT (id) DO UPDATE SET
			company_name = EXCLUDED.company_name,
			established_year = EXCLUDED.established_year,
			headquarters = EXCLUDED.headquarters,
			service_locations = EXCLUDED.service_locations,
			verified = EXCLUDED.verified,
			premium_member = EXCLUDED.premium_member,
			rating = EXCLUDED.rating,
			review_count = EXCLUDED.review_count,
			team_size = EXCLUDED.team_size,
			projects_completed = EXCLUDED.projects_completed,
			response_hours = EXCLUDED.response_hours,
			price_range = EXCLUDED.price_range,
			languages = EXCLUDED.languages,
			certifications = EXCLUDED.certifications,
			awards = EXCLUDED.awards,
			services = EXCLUDED.services,
			specializations = EXCLUDED.specializations,
			trade_show_experience = EXCLUDED.trade_show_experience,
			sustainability_score = EXCLUDED.sustainability_score,
			status = EXCLUDED.status,
			plan = EXCLUDED.plan,
			contact_email = EXCLUDED.contact_email,
			contact_phone = EXCLUDED.contact_phone,
			updated_at = EXCLUDED.updated_at`,
		args...,
	)
	if err != nil {
		_ = sp.Rollback(ctx)
		return err
	}
	return sp.Commit(ctx)
}

func builderArgs(b *models.Builder, now time.Time) ([]interface{}, error) {
	hq, err := json.Marshal(b.Headquarters)
	if err != nil {
		return nil, fmt.Errorf("failed to encode headquarters: %w", err)
	}
	locations, err := json.Marshal(nonNilLocations(b.ServiceLocations))
	if err != nil {
		return nil, fmt.Errorf("failed to encode service locations: %w", err)
	}
	prices, err := json.Marshal(b.PriceRange)
	if err != nil {
		return nil, fmt.Errorf("failed to encode price range: %w", err)
	}

	return []interface{}{
		b.ID,
		b.CompanyName,
		b.EstablishedYear,
		hq,
		locations,
		b.Verified,
		b.PremiumMember,
		b.Rating,
		b.ReviewCount,
		b.TeamSize,
		b.ProjectsCompleted,
		b.ResponseHours,
		prices,
		nonNil(b.Languages),
		nonNil(b.Certifications),
		nonNil(b.Awards),
		serviceStrings(b.Services),
		nonNil(b.Specializations),
		nonNil(b.TradeShowExperience),
		b.SustainabilityScore,
		string(b.Status),
		string(b.Plan),
		b.ContactEmail,
		b.ContactPhone,
		now,
	}, nil
}

func scanBuilder(row pgx.Row) (*models.Builder, error) {
	var b models.Builder
	var hq, locations, prices []byte
	var services []string
	var status, plan string

	err := row.Scan(
		&b.ID,
		&b.CompanyName,
		&b.EstablishedYear,
		&hq,
		&locations,
		&b.Verified,
		&b.PremiumMember,
		&b.Rating,
		&b.ReviewCount,
		&b.TeamSize,
		&b.ProjectsCompleted,
		&b.ResponseHours,
		&prices,
		&b.Languages,
		&b.Certifications,
		&b.Awards,
		&services,
		&b.Specializations,
		&b.TradeShowExperience,
		&b.SustainabilityScore,
		&status,
		&plan,
		&b.ContactEmail,
		&b.ContactPhone,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan builder: %w", err)
	}

	if err := decodeJSON(hq, &b.Headquarters); err != nil {
		return nil, fmt.Errorf("builder %s headquarters: %w", b.ID, err)
	}
	if err := decodeJSON(locations, &b.ServiceLocations); err != nil {
		return nil, fmt.Errorf("builder %s service locations: %w", b.ID, err)
	}
	if err := decodeJSON(prices, &b.PriceRange); err != nil {
		return nil, fmt.Errorf("builder %s price range: %w", b.ID, err)
	}

	b.Services = make([]models.ServiceCategory, len(services))
	for i, s := range services {
		b.Services[i] = models.ServiceCategory(s)
	}
	b.Status = models.BuilderStatus(status)
	b.Plan = models.PlanTier(plan)
	b.Normalize()

	return &b, nil
}

func decodeJSON(raw []byte, v interface{}) error {
	if len(raw) == 0 {
		return nil
	}
	return json.Unmarshal(raw, v)
}

func serviceStrings(in []models.ServiceCategory) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = string(s)
	}
	return out
}

func nonNil(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}

func nonNilLocations(in []models.Location) []models.Location {
	if in == nil {
		return []models.Location{}
	}
	return in
}
