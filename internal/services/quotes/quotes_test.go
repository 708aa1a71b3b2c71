package quotes

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"stand-lead-engine/internal/models"
	"stand-lead-engine/internal/services/catalog"
	"stand-lead-engine/internal/services/notifier"
	"stand-lead-engine/internal/services/store"
)

type recordingQueue struct {
	msgs []notifier.Message
}

func (q *recordingQueue) Dispatch(_ context.Context, msgs []notifier.Message) []notifier.Result {
	q.msgs = append(q.msgs, msgs...)
	out := make([]notifier.Result, len(msgs))
	for i, m := range msgs {
		out[i] = notifier.Result{MessageID: m.ID, Success: true}
	}
	return out
}

func berlinBuilder(id, email string) *models.Builder {
	return &models.Builder{
		ID:                  id,
		CompanyName:         id,
		EstablishedYear:     2005,
		ServiceLocations:    []models.Location{{City: "Berlin", Country: "Germany"}},
		Verified:            true,
		Rating:              4.9,
		ReviewCount:         150,
		TeamSize:            45,
		ProjectsCompleted:   800,
		ResponseHours:       2,
		PriceRange:          models.PriceRange{Custom: models.PriceBand{Min: 300, Max: 500}, AverageProject: 75000},
		Languages:           []string{"English"},
		Services:            []models.ServiceCategory{models.ServiceDesign, models.ServiceConstruction, models.ServiceTechnology},
		Specializations:     []string{"technology"},
		TradeShowExperience: []string{"ifa-berlin"},
		Status:              models.BuilderStatusActive,
		Plan:                models.PlanEnterprise,
		ContactEmail:        email,
	}
}

func newTestService(builders []*models.Builder) (*Service, *recordingQueue) {
	q := &recordingQueue{}
	svc := NewService(store.NewMemoryStore(builders, nil), catalog.Default(), q, Options{
		Logger:     zap.NewNop(),
		AppBaseURL: "https://standleads.example",
		Now:        func() time.Time { return time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC) },
	})
	return svc, q
}

func validRequest() *models.QuoteRequest {
	return &models.QuoteRequest{
		TradeShowSlug: "ifa-berlin",
		StandSize:     120,
		Budget:        "mid-range",
		CompanyName:   "Acme Audio",
		ContactEmail:  "events@acme.example",
	}
}

func TestProcessQuoteRequest(t *testing.T) {
	svc, q := newTestService([]*models.Builder{
		berlinBuilder("spree", "spree@example.com"),
		berlinBuilder("silent", ""),
	})

	req := validRequest()
	res, err := svc.ProcessQuoteRequest(context.Background(), req)
	require.NoError(t, err)

	assert.NotEmpty(t, res.RequestID)
	assert.Equal(t, req.ID, res.RequestID)
	assert.Equal(t, "IFA Berlin", req.TradeShowName)
	require.Len(t, res.Matches, 2)
	assert.Equal(t, []string{"spree", "silent"}, req.MatchedBuilders)
	assert.Equal(t, "2-4 hours", res.EstimatedResponseTime)
	assert.Equal(t, 1, res.NotificationsSent)
	assert.Equal(t, []string{"No email found for builder silent"}, res.Errors)

	require.Len(t, q.msgs, 1)
	msg := q.msgs[0]
	assert.Equal(t, notifier.TemplateQuoteMatch, msg.TemplateID)
	assert.Equal(t, "IFA Berlin", msg.Data["tradeShow"])
	assert.Equal(t, "48000", msg.Data["estimatedCost"])

	a := svc.Analytics()
	assert.Equal(t, res.Matches[0].Score, a.AvgMatchScore)
	assert.Equal(t, 2, a.QualityDistribution.High)
}

func TestProcessQuoteRequestUnknownShow(t *testing.T) {
	svc, q := newTestService(nil)
	req := validRequest()
	req.TradeShowSlug = "imaginary-expo"

	_, err := svc.ProcessQuoteRequest(context.Background(), req)
	assert.ErrorIs(t, err, models.ErrTradeShowNotFound)
	assert.Empty(t, q.msgs)
}

func TestProcessQuoteRequestValidation(t *testing.T) {
	svc, _ := newTestService(nil)
	req := validRequest()
	req.ContactEmail = "not-an-email"
	req.StandSize = 0

	_, err := svc.ProcessQuoteRequest(context.Background(), req)
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestProcessQuoteRequestNoMatches(t *testing.T) {
	svc, q := newTestService(nil)

	res, err := svc.ProcessQuoteRequest(context.Background(), validRequest())
	require.NoError(t, err)
	assert.Empty(t, res.Matches)
	assert.Equal(t, "48 hours", res.EstimatedResponseTime)
	assert.Empty(t, q.msgs)
}
