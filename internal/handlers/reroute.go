package handlers

import (
	"context"

	"github.com/aws/aws-lambda-go/events"
	"go.uber.org/zap"

	"stand-lead-engine/internal/services/routing"
	"stand-lead-engine/internal/utils"
)

// ReRouter runs the inactivity sweep.
type ReRouter interface {
	ReRouteInactiveLeads(ctx context.Context) (*routing.ReRouteSummary, error)
}

// ReRouteHandler runs the re-route sweep on a scheduled CloudWatch event.
type ReRouteHandler struct {
	router ReRouter
	logger *zap.Logger
}

// NewReRouteHandler creates a new re-route handler.
func NewReRouteHandler(router ReRouter, logger *zap.Logger) *ReRouteHandler {
	return &ReRouteHandler{router: router, logger: utils.OrDefault(logger, "reroute")}
}

// Handle runs one sweep.
func (h *ReRouteHandler) Handle(ctx context.Context, event events.CloudWatchEvent) (*routing.ReRouteSummary, error) {
	h.logger.Info("Starting re-route sweep", zap.String("event_id", event.ID), zap.Time("scheduled", event.Time))

	summary, err := h.router.ReRouteInactiveLeads(ctx)
	if err != nil {
		h.logger.Error("Re-route sweep failed", zap.Error(err))
		return nil, err
	}

	h.logger.Info("Re-route sweep complete",
		zap.Int("inactive", summary.Inactive),
		zap.Int("re_routed", summary.ReRouted),
		zap.Int("failed", summary.Failed),
	)
	return summary, nil
}
