package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"stand-lead-engine/internal/models"
	"stand-lead-engine/internal/services/store"
)

// Store adapts the builder and lead repositories to store.Store.
type Store struct {
	Builders *BuilderRepository
	Leads    *LeadRepository
	now      func() time.Time
}

var (
	_ store.Store         = (*Store)(nil)
	_ store.BuilderWriter = (*Store)(nil)
)

// NewStore creates a PostgreSQL backed store.
func NewStore(db *DB) *Store {
	return &Store{
		Builders: NewBuilderRepository(db),
		Leads:    NewLeadRepository(db),
		now:      time.Now,
	}
}

func (s *Store) GetBuilders(ctx context.Context) ([]*models.Builder, error) {
	return s.Builders.List(ctx)
}

func (s *Store) GetLeads(ctx context.Context) ([]*models.Lead, error) {
	return s.Leads.List(ctx)
}

func (s *Store) GetLead(ctx context.Context, id string) (*models.Lead, error) {
	return s.Leads.GetByID(ctx, id)
}

// CreateLead fills defaults and inserts the lead. A duplicate ID maps to
// store.ErrDuplicateLead.
func (s *Store) CreateLead(ctx context.Context, lead *models.Lead) error {
	store.PrepareLead(lead, s.now().UTC())
	err := s.Leads.Create(ctx, lead)
	if errors.Is(err, ErrLeadExists) {
		return fmt.Errorf("%w: %s", store.ErrDuplicateLead, lead.ID)
	}
	return err
}

func (s *Store) UpdateLead(ctx context.Context, id string, patch models.LeadPatch) error {
	return s.Leads.Update(ctx, id, patch)
}

func (s *Store) UpsertBuilders(ctx context.Context, builders []*models.Builder) (*models.BulkUpsertResult, error) {
	return s.Builders.BulkUpsert(ctx, builders)
}
