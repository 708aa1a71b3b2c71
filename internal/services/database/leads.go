package database

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"stand-lead-engine/internal/models"
)

// ErrLeadExists is returned by Create when the lead ID is already taken.
var ErrLeadExists = errors.New("lead already exists")

const leadColumns = `id, trade_show_slug, trade_show_name, company_name, contact_name,
	contact_email, contact_phone, city, country, budget, event_date, stand_size,
	status, priority, preferences, assigned_builders, builder_emails,
	matching_builders, match_score, routed_at, re_routed, created_at, updated_at`

// LeadRepository handles lead database operations.
type LeadRepository struct {
	db *DB
}

// NewLeadRepository creates a new lead repository.
func NewLeadRepository(db *DB) *LeadRepository {
	return &LeadRepository{db: db}
}

// Create inserts a lead. The caller sets the ID and timestamps.
func (r *LeadRepository) Create(ctx context.Context, l *models.Lead) error {
	prefs, err := json.Marshal(l.Preferences)
	if err != nil {
		return fmt.Errorf("failed to encode preferences: %w", err)
	}

	_, err = r.db.exec(ctx, "create_lead", `
		INSERT INTO leads (`+leadColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17,
			$18, $19, $20, $21, $22, $23)`,
		l.ID,
		l.TradeShowSlug,
		l.TradeShowName,
		l.CompanyName,
		l.ContactName,
		l.ContactEmail,
		l.ContactPhone,
		l.City,
		l.Country,
		l.Budget,
		l.EventDate,
		l.StandSize,
		string(l.Status),
		string(l.Priority),
		prefs,
		nonNil(l.AssignedBuilders),
		nonNil(l.BuilderEmails),
		l.MatchingBuilders,
		l.MatchScore,
		l.RoutedAt,
		l.ReRouted,
		l.CreatedAt,
		l.UpdatedAt,
	)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return fmt.Errorf("%w: %s", ErrLeadExists, l.ID)
	}
	if err != nil {
		return fmt.Errorf("failed to create lead: %w", err)
	}
	return nil
}

// GetByID retrieves a lead. It returns nil, nil when no row matches.
func (r *LeadRepository) GetByID(ctx context.Context, id string) (*models.Lead, error) {
	row := r.db.queryRow(ctx, "get_lead", `SELECT `+leadColumns+` FROM leads WHERE id = $1`, id)
	l, err := scanLead(row)
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return l, nil
}

// List returns all leads, oldest first.
func (r *LeadRepository) List(ctx context.Context) ([]*models.Lead, error) {
	rows, err := r.db.query(ctx, "list_leads", `SELECT `+leadColumns+` FROM leads ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query leads: %w", err)
	}
	defer rows.Close()

	var leads []*models.Lead
	for rows.Next() {
		l, err := scanLead(rows)
		if err != nil {
			return nil, err
		}
		leads = append(leads, l)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating leads: %w", err)
	}

	return leads, nil
}

// Update applies a partial update. It returns models.ErrLeadNotFound when
// no row matches.
func (r *LeadRepository) Update(ctx context.Context, id string, patch models.LeadPatch) error {
	query, args := buildLeadUpdate(id, patch, time.Now().UTC())

	tag, err := r.db.exec(ctx, "update_lead", query, args...)
	if err != nil {
		return fmt.Errorf("failed to update lead: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", models.ErrLeadNotFound, id)
	}
	return nil
}

// buildLeadUpdate renders the UPDATE statement for the non-nil patch fields.
func buildLeadUpdate(id string, patch models.LeadPatch, now time.Time) (string, []interface{}) {
	var sets []string
	var args []interface{}

	add := func(column string, value interface{}) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if patch.Status != nil {
		add("status", string(*patch.Status))
	}
	if patch.AssignedBuilders != nil {
		add("assigned_builders", patch.AssignedBuilders)
	}
	if patch.BuilderEmails != nil {
		add("builder_emails", patch.BuilderEmails)
	}
	if patch.MatchingBuilders != nil {
		add("matching_builders", *patch.MatchingBuilders)
	}
	if patch.MatchScore != nil {
		add("match_score", *patch.MatchScore)
	}
	if patch.RoutedAt != nil {
		add("routed_at", *patch.RoutedAt)
	}
	if patch.ReRouted != nil {
		add("re_routed", *patch.ReRouted)
	}
	add("updated_at", now)

	args = append(args, id)
	query := fmt.Sprintf("UPDATE leads SET %s WHERE id = $%d", strings.Join(sets, ", "), len(args))
	return query, args
}

func scanLead(row pgx.Row) (*models.Lead, error) {
	var l models.Lead
	var status, priority string
	var prefs []byte

	err := row.Scan(
		&l.ID,
		&l.TradeShowSlug,
		&l.TradeShowName,
		&l.CompanyName,
		&l.ContactName,
		&l.ContactEmail,
		&l.ContactPhone,
		&l.City,
		&l.Country,
		&l.Budget,
		&l.EventDate,
		&l.StandSize,
		&status,
		&priority,
		&prefs,
		&l.AssignedBuilders,
		&l.BuilderEmails,
		&l.MatchingBuilders,
		&l.MatchScore,
		&l.RoutedAt,
		&l.ReRouted,
		&l.CreatedAt,
		&l.UpdatedAt,
	)
	if err == pgx.ErrNoRows {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan lead: %w", err)
	}

	if err := decodeJSON(prefs, &l.Preferences); err != nil {
		return nil, fmt.Errorf("lead %s preferences: %w", l.ID, err)
	}
	l.Status = models.LeadStatus(status)
	l.Priority = models.Priority(priority)

	return &l, nil
}
