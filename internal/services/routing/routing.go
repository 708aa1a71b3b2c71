// Package routing assigns new leads to the best matching builders and
// re-routes leads that received no response.
package routing

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"stand-lead-engine/internal/metrics"
	"stand-lead-engine/internal/models"
	"stand-lead-engine/internal/services/catalog"
	"stand-lead-engine/internal/services/matcher"
	"stand-lead-engine/internal/services/notifier"
	"stand-lead-engine/internal/services/store"
	"stand-lead-engine/internal/utils"
)

// Routing error messages reported in RoutingResult.Errors.
const (
	MsgLeadNotFound = "Lead not found"
	MsgNoQualified  = "No qualified builders in the area"
)

// DefaultReRouteAfter is how long a routed lead may sit without activity.
const DefaultReRouteAfter = 48 * time.Hour

// RoutingResult is the outcome of routing one lead.
type RoutingResult struct {
	Success            bool                `json:"success"`
	LeadID             string              `json:"lead_id"`
	AssignmentsCreated int                 `json:"assignments_created"`
	NotificationsSent  int                 `json:"notifications_sent"`
	MatchedBuilders    []string            `json:"matched_builders"`
	Assignments        []models.Assignment `json:"assignments,omitempty"`
	Errors             []string            `json:"errors,omitempty"`
}

// ReRouteSummary reports one pass of the inactivity sweep.
type ReRouteSummary struct {
	Inactive int             `json:"inactive"`
	ReRouted int             `json:"re_routed"`
	Failed   int             `json:"failed"`
	Results  []RoutingResult `json:"results"`
}

// RoutingAnalytics summarises lead distribution across builders.
type RoutingAnalytics struct {
	TotalLeads         int            `json:"total_leads"`
	RoutedLeads        int            `json:"routed_leads"`
	ActiveAssignments  int            `json:"active_assignments"`
	AverageMatchScore  int            `json:"average_match_score"`
	BuilderUtilization map[string]int `json:"builder_utilization"`
}

// Options configures a Router. Zero values pick sensible defaults.
type Options struct {
	Catalog      *catalog.Catalog
	Engine       *matcher.Engine
	Logger       *zap.Logger
	AppBaseURL   string
	ReRouteAfter time.Duration
	SMSEnabled   bool
	Now          func() time.Time
}

// Router routes leads to builders.
type Router struct {
	store        store.Store
	queue        notifier.Queue
	catalog      *catalog.Catalog
	engine       *matcher.Engine
	logger       *zap.Logger
	appBaseURL   string
	reRouteAfter time.Duration
	smsEnabled   bool
	now          func() time.Time
}

// NewRouter creates a Router over s that notifies builders through q.
func NewRouter(s store.Store, q notifier.Queue, opts Options) *Router {
	r := &Router{
		store:        s,
		queue:        q,
		catalog:      opts.Catalog,
		engine:       opts.Engine,
		logger:       utils.OrDefault(opts.Logger, "routing"),
		appBaseURL:   opts.AppBaseURL,
		reRouteAfter: opts.ReRouteAfter,
		smsEnabled:   opts.SMSEnabled,
		now:          opts.Now,
	}
	if r.engine == nil {
		r.engine = matcher.NewEngine(matcher.WithLogger(r.logger))
	}
	if r.reRouteAfter <= 0 {
		r.reRouteAfter = DefaultReRouteAfter
	}
	if r.now == nil {
		r.now = time.Now
	}
	return r
}

// RouteNewLead matches a lead against the builder directory, records one
// assignment per match, notifies the assigned builders and marks the lead
// routed. Notification failures are collected in Errors and do not fail the
// call. Any other failure, including a panic, yields Success false.
//
// Two concurrent routings may read the same builder open-lead counts before
// either writes, so a builder can briefly exceed its plan cap.
func (r *Router) RouteNewLead(ctx context.Context, leadID string) (result RoutingResult) {
	log := r.logger.With(zap.String("lead_id", leadID))

	defer func() {
		if p := recover(); p != nil {
			log.Error("Lead routing panicked", zap.Any("panic", p))
			result = failed(leadID, fmt.Sprint(p))
		}
		metrics.RoutingOutcomes.WithLabelValues(outcome(result)).Inc()
	}()

	log.Info("Starting lead routing")

	lead, err := r.store.GetLead(ctx, leadID)
	if err != nil {
		log.Error("Failed to load lead", zap.Error(err))
		return failed(leadID, err.Error())
	}
	if lead == nil {
		return failed(leadID, MsgLeadNotFound)
	}

	var builders []*models.Builder
	var leads []*models.Lead

	g, gctx := errgroup.WithContext(ctx)
	g.Go(recovered(func() error {
		var err error
		builders, err = r.store.GetBuilders(gctx)
		return err
	}))
	g.Go(recovered(func() error {
		var err error
		leads, err = r.store.GetLeads(gctx)
		return err
	}))
	if err := g.Wait(); err != nil {
		log.Error("Failed to load routing data", zap.Error(err))
		return failed(leadID, err.Error())
	}

	matcher.ApplyOpenLeadCounts(builders, matcher.CountOpenLeads(leads))

	anchor := r.anchorFor(lead)
	matches := r.engine.MatchBuildersForQuote(lead.QuoteRequest(), anchor, lead.Preferences, builders)

	if len(matches) == 0 {
		log.Warn("No qualified builders found",
			zap.String("city", lead.City),
			zap.String("country", lead.Country),
			zap.Int("builders", len(builders)),
		)
		return RoutingResult{
			Success:         true,
			LeadID:          leadID,
			MatchedBuilders: []string{},
			Errors:          []string{MsgNoQualified},
		}
	}

	assignedAt := r.now()
	assignments := make([]models.Assignment, len(matches))
	for i, m := range matches {
		assignments[i] = models.Assignment{
			ID:           uuid.NewString(),
			LeadID:       lead.ID,
			BuilderID:    m.Builder.ID,
			BuilderEmail: m.Builder.ContactEmail,
			MatchScore:   m.Score,
			AssignedAt:   assignedAt,
		}
	}

	sent, errs := r.notifyBuilders(ctx, lead, anchor, matches, assignments)

	builderIDs := make([]string, len(assignments))
	emails := make([]string, len(assignments))
	total := 0
	for i, a := range assignments {
		builderIDs[i] = a.BuilderID
		emails[i] = a.BuilderEmail
		total += a.MatchScore
	}
	count := len(assignments)
	avg := float64(total) / float64(count)
	status := models.LeadStatusRouted

	patch := models.LeadPatch{
		Status:           &status,
		AssignedBuilders: builderIDs,
		BuilderEmails:    emails,
		MatchingBuilders: &count,
		MatchScore:       &avg,
		RoutedAt:         &assignedAt,
	}
	if err := r.store.UpdateLead(ctx, lead.ID, patch); err != nil {
		log.Error("Failed to update routed lead", zap.Error(err))
		return failed(leadID, err.Error())
	}

	log.Info("Lead routing completed",
		zap.Int("assignments", count),
		zap.Int("notifications_sent", sent),
		zap.Int("errors", len(errs)),
	)

	return RoutingResult{
		Success:            true,
		LeadID:             leadID,
		AssignmentsCreated: count,
		NotificationsSent:  sent,
		MatchedBuilders:    builderIDs,
		Assignments:        assignments,
		Errors:             errs,
	}
}

// notifyBuilders emails every assigned builder and, for urgent leads, also
// texts builders with a phone number. Only emails count towards sent.
func (r *Router) notifyBuilders(ctx context.Context, lead *models.Lead, anchor models.Anchor, matches []*models.MatchResult, assignments []models.Assignment) (int, []string) {
	var errs []string
	var msgs []notifier.Message
	var targets []int // assignment index per email message, -1 for SMS

	for i, m := range matches {
		b := m.Builder
		if b.ContactEmail == "" {
			errs = append(errs, fmt.Sprintf("No email found for builder %s", b.ID))
			continue
		}

		data := r.leadData(lead, anchor, b, assignments[i].MatchScore)
		msgs = append(msgs, notifier.Message{
			Channel:    notifier.ChannelEmail,
			Recipient:  notifier.Recipient{Address: b.ContactEmail, Name: b.CompanyName, Phone: b.ContactPhone},
			TemplateID: notifier.TemplateLeadNotification,
			Data:       data,
		})
		targets = append(targets, i)

		if r.smsEnabled && lead.Priority.IsUrgent() && b.ContactPhone != "" {
			msgs = append(msgs, notifier.Message{
				Channel:    notifier.ChannelSMS,
				Recipient:  notifier.Recipient{Name: b.CompanyName, Phone: b.ContactPhone},
				TemplateID: notifier.TemplateLeadSMS,
				Data:       data,
			})
			targets = append(targets, -1)
		}
	}

	if len(msgs) == 0 {
		return 0, errs
	}

	sent := 0
	results := r.queue.Dispatch(ctx, msgs)
	for j, res := range results {
		msg := msgs[j]
		if res.Success {
			if idx := targets[j]; idx >= 0 {
				assignments[idx].NotificationSent = true
				sent++
			}
			continue
		}
		errs = append(errs, fmt.Sprintf("Failed to notify %s: %s", msg.Destination(), res.Error))
	}
	return sent, errs
}

func (r *Router) leadData(lead *models.Lead, anchor models.Anchor, b *models.Builder, score int) map[string]string {
	projectName := anchor.TradeShowName
	if projectName == "" {
		projectName = "Exhibition Project"
	}
	budget := lead.Budget
	if budget == "" {
		budget = "Not specified"
	}
	eventDate := lead.EventDate
	if eventDate == "" {
		eventDate = "TBD"
	}

	dashboard := r.appBaseURL + "/builder/dashboard"
	return map[string]string{
		"builderName":   b.CompanyName,
		"leadId":        lead.ID,
		"projectName":   projectName,
		"clientCompany": lead.CompanyName,
		"location":      lead.Location(),
		"budget":        budget,
		"eventDate":     eventDate,
		"standSize":     strconv.FormatFloat(lead.StandSize, 'f', -1, 64),
		"matchScore":    strconv.Itoa(score),
		"dashboardUrl":  dashboard,
		"leadUrl":       dashboard + "?tab=leads&leadId=" + lead.ID,
	}
}

// anchorFor builds the matching context from the lead location, enriched
// with the catalog show when the lead names a known one.
func (r *Router) anchorFor(lead *models.Lead) models.Anchor {
	anchor := models.Anchor{
		City:          lead.City,
		Country:       lead.Country,
		TradeShowSlug: lead.TradeShowSlug,
		TradeShowName: lead.TradeShowName,
		ReferenceYear: r.now().Year(),
	}

	if r.catalog == nil || lead.TradeShowSlug == "" {
		return anchor
	}
	show, err := r.catalog.Get(lead.TradeShowSlug)
	if err != nil {
		return anchor
	}

	anchor.Industries = show.Anchor(anchor.ReferenceYear).Industries
	if anchor.TradeShowName == "" {
		anchor.TradeShowName = show.Name
	}
	return anchor
}

// ReRouteInactiveLeads re-routes every routed lead with no activity for the
// configured cutoff, at most once per lead. A failing lead does not stop the sweep.
func (r *Router) ReRouteInactiveLeads(ctx context.Context) (*ReRouteSummary, error) {
	leads, err := r.store.GetLeads(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load leads: %w", err)
	}

	cutoff := r.now().Add(-r.reRouteAfter)
	summary := &ReRouteSummary{Results: []RoutingResult{}}

	for _, l := range leads {
		if l.Status != models.LeadStatusRouted || l.ReRouted || !l.LastActivity().Before(cutoff) {
			continue
		}
		summary.Inactive++

		if err := ctx.Err(); err != nil {
			return summary, err
		}

		reRouted := true
		if err := r.store.UpdateLead(ctx, l.ID, models.LeadPatch{ReRouted: &reRouted}); err != nil {
			r.logger.Error("Failed to flag lead for re-routing", zap.String("lead_id", l.ID), zap.Error(err))
			summary.Failed++
			metrics.ReRoutedLeads.WithLabelValues("failed").Inc()
			continue
		}

		res := r.RouteNewLead(ctx, l.ID)
		summary.Results = append(summary.Results, res)
		if !res.Success {
			r.logger.Error("Failed to re-route lead", zap.String("lead_id", l.ID), zap.Strings("errors", res.Errors))
			summary.Failed++
			metrics.ReRoutedLeads.WithLabelValues("failed").Inc()
			continue
		}
		summary.ReRouted++
		metrics.ReRoutedLeads.WithLabelValues("rerouted").Inc()
	}

	r.logger.Info("Re-route sweep complete",
		zap.Int("inactive", summary.Inactive),
		zap.Int("re_routed", summary.ReRouted),
		zap.Int("failed", summary.Failed),
	)
	return summary, nil
}

// GetRoutingAnalytics reports lead and assignment totals and the open-lead
// load of every builder.
func (r *Router) GetRoutingAnalytics(ctx context.Context) (*RoutingAnalytics, error) {
	var builders []*models.Builder
	var leads []*models.Lead

	g, gctx := errgroup.WithContext(ctx)
	g.Go(recovered(func() error {
		var err error
		builders, err = r.store.GetBuilders(gctx)
		return err
	}))
	g.Go(recovered(func() error {
		var err error
		leads, err = r.store.GetLeads(gctx)
		return err
	}))
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to load routing data: %w", err)
	}

	a := &RoutingAnalytics{
		TotalLeads:         len(leads),
		BuilderUtilization: make(map[string]int, len(builders)),
	}

	var scoreSum float64
	for _, l := range leads {
		if len(l.AssignedBuilders) == 0 {
			continue
		}
		a.RoutedLeads++
		a.ActiveAssignments += len(l.AssignedBuilders)
		scoreSum += l.MatchScore
	}
	if a.RoutedLeads > 0 {
		a.AverageMatchScore = int(math.Round(scoreSum / float64(a.RoutedLeads)))
	}

	open := matcher.CountOpenLeads(leads)
	for _, b := range builders {
		a.BuilderUtilization[b.ID] = open[b.ID]
	}
	return a, nil
}

// recovered turns a panic in a load goroutine into an error so it reaches the result.
func recovered(fn func() error) func() error {
	return func() (err error) {
		defer func() {
			if p := recover(); p != nil {
				err = fmt.Errorf("%v", p)
			}
		}()
		return fn()
	}
}

func failed(leadID, msg string) RoutingResult {
	return RoutingResult{
		LeadID:          leadID,
		MatchedBuilders: []string{},
		Errors:          []string{msg},
	}
}

func outcome(r RoutingResult) string {
	switch {
	case !r.Success:
		return "failed"
	case r.AssignmentsCreated == 0:
		return "no_match"
	default:
		return "routed"
	}
}

// IsNotFound reports whether a routing result failed because the lead is missing.
func IsNotFound(r RoutingResult) bool {
	return !r.Success && len(r.Errors) == 1 && r.Errors[0] == MsgLeadNotFound
}
