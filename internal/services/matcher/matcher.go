// Package matcher implements the builder matching and scoring pipeline.
//
// The pipeline runs in separate stages: candidate filter, preference filter,
// criteria scoring, threshold, sort, truncate. Every stage is a pure function
// of its inputs; Engine only adds logging and metrics around them.
package matcher

import (
	"time"

	"go.uber.org/zap"

	"stand-lead-engine/internal/metrics"
	"stand-lead-engine/internal/models"
	"stand-lead-engine/internal/utils"
)

// Engine runs the matching pipeline.
type Engine struct {
	logger *zap.Logger
	limit  int
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithLimit overrides MaxResults.
func WithLimit(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.limit = n
		}
	}
}

// NewEngine creates a matching engine.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{limit: MaxResults}
	for _, opt := range opts {
		opt(e)
	}
	e.logger = utils.OrDefault(e.logger, "matcher")
	return e
}

// MatchingResult summarises one pipeline run stage by stage.
type MatchingResult struct {
	TotalBuilders     int
	CandidatesPassed  int
	PreferencesPassed int
	AboveThreshold    int
	FinalMatches      int
	ProcessingTime    time.Duration
	Matches           []*models.MatchResult
}

// MatchBuildersForQuote scores the directory against a request and returns at
// most the engine limit of matches, best first. Builders must already carry
// their open-lead counts.
func (e *Engine) MatchBuildersForQuote(req *models.QuoteRequest, anchor models.Anchor, prefs models.Preferences, builders []*models.Builder) []*models.MatchResult {
	return e.Run(req, anchor, prefs, builders).Matches
}

// Run executes the pipeline and reports how many builders survived each stage.
func (e *Engine) Run(req *models.QuoteRequest, anchor models.Anchor, prefs models.Preferences, builders []*models.Builder) *MatchingResult {
	startTime := time.Now()
	result := &MatchingResult{TotalBuilders: len(builders)}

	e.logger.Info("Starting matching pipeline",
		zap.String("request_id", req.ID),
		zap.String("city", anchor.City),
		zap.String("country", anchor.Country),
		zap.String("trade_show", anchor.TradeShowSlug),
		zap.Int("builders", len(builders)),
	)

	// Stage 1: candidate filter
	candidates := FilterCandidates(builders, anchor)
	result.CandidatesPassed = len(candidates)

	e.logger.Debug("Stage 1 complete: candidate filter",
		zap.Int("passed", len(candidates)),
		zap.Int("filtered_out", len(builders)-len(candidates)),
	)

	// Stage 2: hard client constraints
	candidates = ApplyPreferenceFilters(candidates, prefs)
	result.PreferencesPassed = len(candidates)

	e.logger.Debug("Stage 2 complete: preference filter",
		zap.Int("passed", len(candidates)),
		zap.Int("filtered_out", result.CandidatesPassed-len(candidates)),
	)

	// Stage 3: score every candidate
	weights := ResolveWeights(prefs)
	scored := make([]*models.MatchResult, 0, len(candidates))
	for _, b := range candidates {
		scored = append(scored, Score(b, req, anchor, prefs, weights))
	}

	// Stage 4: threshold, sort, truncate
	aboveThreshold := 0
	for _, m := range scored {
		if m.Score >= MinMatchScore {
			aboveThreshold++
		}
	}
	result.AboveThreshold = aboveThreshold
	result.Matches = Rank(scored, e.limit)
	result.FinalMatches = len(result.Matches)
	result.ProcessingTime = time.Since(startTime)

	metrics.MatchRuns.Inc()
	metrics.MatchDuration.Observe(result.ProcessingTime.Seconds())
	for _, m := range result.Matches {
		metrics.MatchScores.Observe(float64(m.Score))
	}

	e.logger.Info("Matching pipeline complete",
		zap.String("request_id", req.ID),
		zap.Int("candidates", result.CandidatesPassed),
		zap.Int("above_threshold", result.AboveThreshold),
		zap.Int("final_matches", result.FinalMatches),
		zap.Duration("processing_time", result.ProcessingTime),
	)

	return result
}

// Score builds the full match result for one builder.
func Score(b *models.Builder, req *models.QuoteRequest, anchor models.Anchor, prefs models.Preferences, weights models.WeightProfile) *models.MatchResult {
	criteria := ScoreCriteria(b, req, anchor, prefs)

	return &models.MatchResult{
		Builder:          b,
		Score:            Aggregate(criteria, weights),
		Breakdown:        criteria,
		EstimatedCost:    EstimateProjectCost(b, req),
		Reasons:          Reasons(b, criteria, anchor),
		Risks:            Risks(b, criteria),
		TimeToCompletion: TimeToCompletion(b, req),
		Confidence:       DetermineConfidence(b, criteria),
	}
}
