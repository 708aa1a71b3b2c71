// Package quotes matches client quote requests against builders for a
// trade show and invites the matched builders to quote.
package quotes

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"stand-lead-engine/internal/models"
	"stand-lead-engine/internal/services/catalog"
	"stand-lead-engine/internal/services/matcher"
	"stand-lead-engine/internal/services/notifier"
	"stand-lead-engine/internal/services/store"
	"stand-lead-engine/internal/utils"
)

// recentBatches is how many match batches are kept for analytics.
const recentBatches = 100

// QuoteResult is the response to one quote request.
type QuoteResult struct {
	RequestID             string                `json:"request_id"`
	Matches               []*models.MatchResult `json:"matches"`
	EstimatedResponseTime string                `json:"estimated_response_time"`
	NotificationsSent     int                   `json:"notifications_sent"`
	Errors                []string              `json:"errors,omitempty"`
}

// Options configures a Service.
type Options struct {
	Engine     *matcher.Engine
	Logger     *zap.Logger
	AppBaseURL string
	Now        func() time.Time
}

// Service processes quote requests.
type Service struct {
	store      store.Store
	catalog    *catalog.Catalog
	queue      notifier.Queue
	engine     *matcher.Engine
	logger     *zap.Logger
	appBaseURL string
	now        func() time.Time

	mu     sync.Mutex
	recent [][]*models.MatchResult
}

// NewService creates a quote service.
func NewService(s store.Store, c *catalog.Catalog, q notifier.Queue, opts Options) *Service {
	svc := &Service{
		store:      s,
		catalog:    c,
		queue:      q,
		engine:     opts.Engine,
		logger:     utils.OrDefault(opts.Logger, "quotes"),
		appBaseURL: opts.AppBaseURL,
		now:        opts.Now,
	}
	if svc.engine == nil {
		svc.engine = matcher.NewEngine(matcher.WithLogger(svc.logger))
	}
	if svc.now == nil {
		svc.now = time.Now
	}
	return svc
}

// ProcessQuoteRequest validates req, matches it against the directory for
// its trade show and sends a quote_match notification to every match.
// It returns models.ErrTradeShowNotFound for unknown shows.
func (s *Service) ProcessQuoteRequest(ctx context.Context, req *models.QuoteRequest) (*QuoteResult, error) {
	if err := models.Validate(req); err != nil {
		return nil, err
	}

	show, err := s.catalog.Get(req.TradeShowSlug)
	if err != nil {
		return nil, err
	}

	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	if req.CreatedAt.IsZero() {
		req.CreatedAt = s.now()
	}
	if req.TradeShowName == "" {
		req.TradeShowName = show.Name
	}

	var builders []*models.Builder
	var leads []*models.Lead

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		builders, err = s.store.GetBuilders(gctx)
		return err
	})
	g.Go(func() error {
		var err error
		leads, err = s.store.GetLeads(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load matching data: %w", err)
	}

	matcher.ApplyOpenLeadCounts(builders, matcher.CountOpenLeads(leads))

	anchor := show.Anchor(req.CreatedAt.Year())
	matches := s.engine.MatchBuildersForQuote(req, anchor, req.Preferences, builders)
	s.remember(matches)

	req.MatchedBuilders = make([]string, len(matches))
	for i, m := range matches {
		req.MatchedBuilders[i] = m.Builder.ID
	}

	result := &QuoteResult{
		RequestID:             req.ID,
		Matches:               matches,
		EstimatedResponseTime: matcher.EstimatedResponseTime(matches),
	}
	result.NotificationsSent, result.Errors = s.notify(ctx, req, show, matches)

	s.logger.Info("Quote request processed",
		zap.String("request_id", req.ID),
		zap.String("trade_show", show.Slug),
		zap.Int("matches", len(matches)),
		zap.Int("notifications_sent", result.NotificationsSent),
	)
	return result, nil
}

func (s *Service) notify(ctx context.Context, req *models.QuoteRequest, show *models.TradeShow, matches []*models.MatchResult) (int, []string) {
	var errs []string
	var msgs []notifier.Message

	for _, m := range matches {
		b := m.Builder
		if b.ContactEmail == "" {
			errs = append(errs, fmt.Sprintf("No email found for builder %s", b.ID))
			continue
		}
		msgs = append(msgs, notifier.Message{
			Channel:    notifier.ChannelEmail,
			Recipient:  notifier.Recipient{Address: b.ContactEmail, Name: b.CompanyName},
			TemplateID: notifier.TemplateQuoteMatch,
			Data: map[string]string{
				"builderName":   b.CompanyName,
				"clientCompany": req.CompanyName,
				"tradeShow":     show.Name,
				"standSize":     strconv.FormatFloat(req.StandSize, 'f', -1, 64),
				"budget":        req.Budget,
				"matchScore":    strconv.Itoa(m.Score),
				"estimatedCost": strconv.FormatFloat(m.EstimatedCost, 'f', 0, 64),
				"requestId":     req.ID,
				"dashboardUrl":  s.appBaseURL + "/builder/dashboard?tab=quotes&requestId=" + req.ID,
			},
		})
	}

	if len(msgs) == 0 {
		return 0, errs
	}

	sent := 0
	for i, res := range s.queue.Dispatch(ctx, msgs) {
		if res.Success {
			sent++
			continue
		}
		errs = append(errs, fmt.Sprintf("Failed to notify %s: %s", msgs[i].Recipient.Address, res.Error))
	}
	return sent, errs
}

func (s *Service) remember(matches []*models.MatchResult) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.recent = append(s.recent, matches)
	if len(s.recent) > recentBatches {
		s.recent = s.recent[len(s.recent)-recentBatches:]
	}
}

// Analytics summarises the most recent match batches.
func (s *Service) Analytics() models.MatchingAnalytics {
	s.mu.Lock()
	batches := append([][]*models.MatchResult(nil), s.recent...)
	s.mu.Unlock()

	return matcher.GenerateMatchingAnalytics(batches)
}
