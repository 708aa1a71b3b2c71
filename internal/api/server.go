// Package api serves the lead routing and quote matching HTTP API.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"stand-lead-engine/internal/handlers"
	"stand-lead-engine/internal/metrics"
	"stand-lead-engine/internal/models"
	"stand-lead-engine/internal/services/catalog"
	"stand-lead-engine/internal/services/quotes"
	"stand-lead-engine/internal/services/routing"
	"stand-lead-engine/internal/services/store"
	"stand-lead-engine/internal/utils"
)

// maxUploadBytes bounds a builder CSV upload.
const maxUploadBytes = 10 << 20

// Store is the persistence the API reads leads from and imports builders into.
type Store interface {
	store.Store
	store.BuilderWriter
}

// Deps are the services behind the API. Uploads may be nil when no import
// bucket is configured.
type Deps struct {
	Store   Store
	Router  *routing.Router
	Quotes  *quotes.Service
	Catalog *catalog.Catalog
	Health  *handlers.HealthHandler
	Uploads *handlers.PresignedURLHandler
	Logger  *zap.Logger
}

// Server holds all dependencies
type Server struct {
	deps   Deps
	intake *handlers.LeadIntakeHandler
	logger *zap.Logger
}

// Response represents a standard API response
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// PresignedURLRequest represents the request for presigned URL
type PresignedURLRequest struct {
	Filename string `json:"filename"`
}

// ImportResponse contains builder upload results
type ImportResponse struct {
	TotalRows    int      `json:"total_rows"`
	Upserted     int      `json:"upserted"`
	Failed       int      `json:"failed"`
	Errors       []string `json:"errors,omitempty"`
	ProcessingMs int64    `json:"processing_ms"`
}

// New creates the API server.
func New(deps Deps) *Server {
	logger := utils.OrDefault(deps.Logger, "api")
	return &Server{
		deps:   deps,
		intake: handlers.NewLeadIntakeHandler(deps.Store, deps.Router, logger),
		logger: logger,
	}
}

// Handler returns the routed, CORS-wrapped HTTP handler.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", s.healthHandler)
	mux.HandleFunc("GET /api/health", s.healthHandler)
	mux.Handle("GET /metrics", promhttp.Handler())

	mux.HandleFunc("GET /api/tradeshows", s.tradeShowsHandler)

	mux.HandleFunc("POST /api/quotes/match", s.quoteMatchHandler)
	mux.HandleFunc("GET /api/quotes/analytics", s.quoteAnalyticsHandler)

	mux.HandleFunc("POST /api/leads", s.createLeadHandler)
	mux.HandleFunc("GET /api/leads/{id}", s.getLeadHandler)
	mux.HandleFunc("POST /api/leads/{id}/route", s.routeLeadHandler)
	mux.HandleFunc("POST /api/leads/reroute", s.reRouteHandler)
	mux.HandleFunc("GET /api/analytics/routing", s.routingAnalyticsHandler)

	mux.HandleFunc("POST /api/builders/presigned-url", s.presignedURLHandler)
	mux.HandleFunc("POST /api/builders/import", s.importBuildersHandler)

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"*"},
	})

	return c.Handler(s.instrument(mux))
}

// instrument logs each request and counts it by matched route.
func (s *Server) instrument(next *http.ServeMux) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		_, pattern := next.Handler(r)
		next.ServeHTTP(rec, r)

		if pattern == "" {
			pattern = "unmatched"
		}
		metrics.HTTPRequests.WithLabelValues(pattern, strconv.Itoa(rec.status)).Inc()
		s.logger.Debug("HTTP request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)),
		)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	report := s.deps.Health.Report(r.Context())

	status := http.StatusOK
	if report.Status != "healthy" {
		status = http.StatusServiceUnavailable
	}

	writeJSON(w, status, Response{
		Success: status == http.StatusOK,
		Message: "Stand Lead Engine API is running",
		Data:    report,
	})
}

func (s *Server) tradeShowsHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, Response{
		Success: true,
		Data:    s.deps.Catalog.List(),
	})
}

func (s *Server) quoteMatchHandler(w http.ResponseWriter, r *http.Request) {
	var req models.QuoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := s.deps.Quotes.ProcessQuoteRequest(r.Context(), &req)
	switch {
	case errors.Is(err, models.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case errors.Is(err, models.ErrTradeShowNotFound):
		writeError(w, http.StatusNotFound, err.Error())
		return
	case err != nil:
		s.logger.Error("Quote matching failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to match builders")
		return
	}

	writeJSON(w, http.StatusOK, Response{
		Success: true,
		Message: fmt.Sprintf("Matched %d builders", len(result.Matches)),
		Data:    result,
	})
}

func (s *Server) quoteAnalyticsHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, Response{
		Success: true,
		Data:    s.deps.Quotes.Analytics(),
	})
}

func (s *Server) createLeadHandler(w http.ResponseWriter, r *http.Request) {
	var lead models.Lead
	if err := json.NewDecoder(r.Body).Decode(&lead); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, status, err := s.intake.Submit(r.Context(), &lead)
	if err != nil {
		msg := err.Error()
		if status == http.StatusInternalServerError {
			msg = "Failed to store lead"
		}
		writeError(w, status, msg)
		return
	}

	writeJSON(w, status, Response{
		Success: true,
		Message: "Lead received",
		Data:    result,
	})
}

func (s *Server) getLeadHandler(w http.ResponseWriter, r *http.Request) {
	lead, err := s.deps.Store.GetLead(r.Context(), r.PathValue("id"))
	if err != nil {
		s.logger.Error("Error fetching lead", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to fetch lead")
		return
	}
	if lead == nil {
		writeError(w, http.StatusNotFound, routing.MsgLeadNotFound)
		return
	}

	writeJSON(w, http.StatusOK, Response{Success: true, Data: lead})
}

func (s *Server) routeLeadHandler(w http.ResponseWriter, r *http.Request) {
	result := s.deps.Router.RouteNewLead(r.Context(), r.PathValue("id"))

	status := http.StatusOK
	switch {
	case routing.IsNotFound(result):
		status = http.StatusNotFound
	case !result.Success:
		status = http.StatusInternalServerError
	}

	writeJSON(w, status, Response{
		Success: result.Success,
		Data:    result,
		Error:   strings.Join(failureErrors(result), "; "),
	})
}

func failureErrors(r routing.RoutingResult) []string {
	if r.Success {
		return nil
	}
	return r.Errors
}

func (s *Server) reRouteHandler(w http.ResponseWriter, r *http.Request) {
	summary, err := s.deps.Router.ReRouteInactiveLeads(r.Context())
	if err != nil {
		s.logger.Error("Re-route sweep failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to re-route leads")
		return
	}

	writeJSON(w, http.StatusOK, Response{
		Success: true,
		Message: fmt.Sprintf("Re-routed %d of %d inactive leads", summary.ReRouted, summary.Inactive),
		Data:    summary,
	})
}

func (s *Server) routingAnalyticsHandler(w http.ResponseWriter, r *http.Request) {
	analytics, err := s.deps.Router.GetRoutingAnalytics(r.Context())
	if err != nil {
		s.logger.Error("Routing analytics failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed to compute routing analytics")
		return
	}

	writeJSON(w, http.StatusOK, Response{Success: true, Data: analytics})
}

func (s *Server) presignedURLHandler(w http.ResponseWriter, r *http.Request) {
	if s.deps.Uploads == nil {
		writeError(w, http.StatusServiceUnavailable, "Builder import bucket is not configured")
		return
	}

	var req PresignedURLRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && err != io.EOF {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, status, msg := s.deps.Uploads.Presign(r.Context(), req.Filename)
	if result == nil {
		writeError(w, status, msg)
		return
	}

	writeJSON(w, http.StatusOK, Response{Success: true, Data: result})
}

func (s *Server) importBuildersHandler(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "Failed to parse form: "+err.Error())
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, http.StatusBadRequest, "No file provided")
		return
	}
	defer file.Close()

	if !strings.HasSuffix(strings.ToLower(header.Filename), ".csv") {
		writeError(w, http.StatusBadRequest, "Only CSV files are allowed")
		return
	}

	content, err := io.ReadAll(file)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to read file")
		return
	}

	builders, parseErrors := utils.NewCSVParser().ParseBuilders(string(content))
	result := &ImportResponse{
		TotalRows: len(builders) + len(parseErrors),
		Failed:    len(parseErrors),
	}
	for _, e := range parseErrors {
		result.Errors = append(result.Errors, e.Error())
	}

	if len(builders) > 0 {
		upsert, err := s.deps.Store.UpsertBuilders(r.Context(), builders)
		if err != nil {
			s.logger.Error("Builder import failed", zap.Error(err))
			writeError(w, http.StatusInternalServerError, "Failed to import builders")
			return
		}
		result.Upserted = upsert.UpsertedCount
		result.Failed += upsert.FailedCount
		result.Errors = append(result.Errors, upsert.Errors...)
	}

	result.ProcessingMs = time.Since(start).Milliseconds()
	s.logger.Info("Imported builders",
		zap.String("file", header.Filename),
		zap.Int("upserted", result.Upserted),
		zap.Int("failed", result.Failed),
	)

	writeJSON(w, http.StatusOK, Response{
		Success: true,
		Message: "CSV processed successfully",
		Data:    result,
	})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, Response{Success: false, Error: msg})
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
