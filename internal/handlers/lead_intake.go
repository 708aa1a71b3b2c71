package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/aws/aws-lambda-go/events"
	"go.uber.org/zap"

	"stand-lead-engine/internal/models"
	"stand-lead-engine/internal/services/routing"
	"stand-lead-engine/internal/services/store"
	"stand-lead-engine/internal/utils"
)

// LeadRouter routes a stored lead.
type LeadRouter interface {
	RouteNewLead(ctx context.Context, leadID string) routing.RoutingResult
}

// LeadIntakeHandler accepts lead submissions from the website form, stores
// them and routes them straight away.
type LeadIntakeHandler struct {
	store  store.Store
	router LeadRouter
	logger *zap.Logger
}

// NewLeadIntakeHandler creates a new lead intake handler.
func NewLeadIntakeHandler(s store.Store, router LeadRouter, logger *zap.Logger) *LeadIntakeHandler {
	return &LeadIntakeHandler{store: s, router: router, logger: utils.OrDefault(logger, "lead-intake")}
}

// IntakeResponse is returned for an accepted lead.
type IntakeResponse struct {
	LeadID  string                `json:"lead_id"`
	Routing routing.RoutingResult `json:"routing"`
}

// Submit validates, stores and routes a lead. It returns the HTTP status
// the caller should answer with.
func (h *LeadIntakeHandler) Submit(ctx context.Context, lead *models.Lead) (*IntakeResponse, int, error) {
	// Routing state is owned by the engine, not the submitter.
	lead.Status = models.LeadStatusNew
	lead.AssignedBuilders = nil
	lead.BuilderEmails = nil
	lead.MatchingBuilders = 0
	lead.MatchScore = 0
	lead.RoutedAt = nil
	lead.ReRouted = false
	lead.Normalize()

	if err := models.Validate(lead); err != nil {
		return nil, http.StatusBadRequest, err
	}

	if err := h.store.CreateLead(ctx, lead); err != nil {
		if errors.Is(err, store.ErrDuplicateLead) {
			return nil, http.StatusConflict, err
		}
		h.logger.Error("Failed to store lead", zap.Error(err))
		return nil, http.StatusInternalServerError, err
	}

	result := h.router.RouteNewLead(ctx, lead.ID)
	h.logger.Info("Lead accepted",
		zap.String("lead_id", lead.ID),
		zap.Bool("routed", result.Success),
		zap.Int("assignments", result.AssignmentsCreated),
	)

	return &IntakeResponse{LeadID: lead.ID, Routing: result}, http.StatusCreated, nil
}

// Handle processes API Gateway lead submissions.
func (h *LeadIntakeHandler) Handle(ctx context.Context, request events.APIGatewayProxyRequest) (events.APIGatewayProxyResponse, error) {
	headers := corsHeaders("POST,OPTIONS")

	// Handle CORS preflight
	if request.HTTPMethod == http.MethodOptions {
		return events.APIGatewayProxyResponse{
			StatusCode: http.StatusOK,
			Headers:    headers,
		}, nil
	}

	var lead models.Lead
	if err := json.Unmarshal([]byte(request.Body), &lead); err != nil {
		return errorResponse(headers, http.StatusBadRequest, "Invalid JSON in request body")
	}

	response, status, err := h.Submit(ctx, &lead)
	if err != nil {
		msg := err.Error()
		if status == http.StatusInternalServerError {
			msg = "Failed to store lead"
		}
		return errorResponse(headers, status, msg)
	}

	return jsonResponse(headers, status, response)
}
