// Package store defines the persistence contract shared by routing and
// quote matching, with an in-memory implementation for tools and tests.
package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"stand-lead-engine/internal/models"
)

// ErrDuplicateLead is returned when CreateLead is given an ID that already exists.
var ErrDuplicateLead = errors.New("lead already exists")

// Store is the data source the routing and quote services read from and write to.
// GetLead returns nil, nil when the lead does not exist.
type Store interface {
	GetBuilders(ctx context.Context) ([]*models.Builder, error)
	GetLeads(ctx context.Context) ([]*models.Lead, error)
	GetLead(ctx context.Context, id string) (*models.Lead, error)
	CreateLead(ctx context.Context, lead *models.Lead) error
	UpdateLead(ctx context.Context, id string, patch models.LeadPatch) error
}

// BuilderWriter accepts imported builder rows.
type BuilderWriter interface {
	UpsertBuilders(ctx context.Context, builders []*models.Builder) (*models.BulkUpsertResult, error)
}

// PrepareLead fills the ID, timestamps and defaults of a lead about to be created.
func PrepareLead(lead *models.Lead, now time.Time) {
	if lead.ID == "" {
		lead.ID = uuid.NewString()
	}
	if lead.CreatedAt.IsZero() {
		lead.CreatedAt = now
	}
	lead.UpdatedAt = now
	lead.Normalize()
}

// MemoryStore keeps builders and leads in process memory. Reads return
// copies, so callers may mutate what they get back.
type MemoryStore struct {
	mu           sync.RWMutex
	builders     map[string]*models.Builder
	builderOrder []string
	leads        map[string]*models.Lead
	leadOrder    []string
	now          func() time.Time
}

// NewMemoryStore creates a store seeded with builders and leads.
func NewMemoryStore(builders []*models.Builder, leads []*models.Lead) *MemoryStore {
	s := &MemoryStore{
		builders: make(map[string]*models.Builder),
		leads:    make(map[string]*models.Lead),
		now:      time.Now,
	}
	for _, b := range builders {
		s.putBuilder(b.Clone())
	}
	for _, l := range leads {
		s.leads[l.ID] = l.Clone()
		s.leadOrder = append(s.leadOrder, l.ID)
	}
	return s
}

func (s *MemoryStore) putBuilder(b *models.Builder) {
	if _, ok := s.builders[b.ID]; !ok {
		s.builderOrder = append(s.builderOrder, b.ID)
	}
	s.builders[b.ID] = b
}

// GetBuilders returns every builder in insertion order.
func (s *MemoryStore) GetBuilders(_ context.Context) ([]*models.Builder, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.Builder, 0, len(s.builderOrder))
	for _, id := range s.builderOrder {
		out = append(out, s.builders[id].Clone())
	}
	return out, nil
}

// GetLeads returns every lead in insertion order.
func (s *MemoryStore) GetLeads(_ context.Context) ([]*models.Lead, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*models.Lead, 0, len(s.leadOrder))
	for _, id := range s.leadOrder {
		out = append(out, s.leads[id].Clone())
	}
	return out, nil
}

// GetLead returns one lead, or nil when absent.
func (s *MemoryStore) GetLead(_ context.Context, id string) (*models.Lead, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	l, ok := s.leads[id]
	if !ok {
		return nil, nil
	}
	return l.Clone(), nil
}

// CreateLead stores a new lead, assigning an ID when it has none.
func (s *MemoryStore) CreateLead(_ context.Context, lead *models.Lead) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	PrepareLead(lead, s.now())
	if _, ok := s.leads[lead.ID]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateLead, lead.ID)
	}
	s.leads[lead.ID] = lead.Clone()
	s.leadOrder = append(s.leadOrder, lead.ID)
	return nil
}

// UpdateLead applies patch to the stored lead.
func (s *MemoryStore) UpdateLead(_ context.Context, id string, patch models.LeadPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.leads[id]
	if !ok {
		return fmt.Errorf("%w: %s", models.ErrLeadNotFound, id)
	}
	patch.Apply(l)
	l.UpdatedAt = s.now()
	return nil
}

// UpsertBuilders validates and stores builders, replacing existing IDs.
func (s *MemoryStore) UpsertBuilders(_ context.Context, builders []*models.Builder) (*models.BulkUpsertResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := &models.BulkUpsertResult{}
	for _, b := range builders {
		if err := models.ValidateBuilder(b); err != nil {
			result.FailedCount++
			result.Errors = append(result.Errors, fmt.Sprintf("builder %q: %v", b.ID, err))
			continue
		}
		c := b.Clone()
		c.Normalize()
		c.UpdatedAt = s.now()
		if c.CreatedAt.IsZero() {
			c.CreatedAt = c.UpdatedAt
		}
		s.putBuilder(c)
		result.UpsertedCount++
	}
	return result, nil
}
