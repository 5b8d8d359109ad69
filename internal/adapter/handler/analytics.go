package handler

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/voice-call-analytics/internal/adapter/dto/analytics"
	"github.com/johnquangdev/voice-call-analytics/internal/adapter/presenter"
	analyticsUsecase "github.com/johnquangdev/voice-call-analytics/internal/usecase/analytics"
	"github.com/johnquangdev/voice-call-analytics/internal/usecase/lag"
)

// Analytics handles dashboard and lag report requests
type Analytics struct {
	analyticsService analyticsUsecase.Service
	lagService       lag.Service
	logger           *zap.Logger
}

// NewAnalyticsHandler creates a new analytics handler
func NewAnalyticsHandler(analyticsService analyticsUsecase.Service, lagService lag.Service, logger *zap.Logger) *Analytics {
	return &Analytics{
		analyticsService: analyticsService,
		lagService:       lagService,
		logger:           logger,
	}
}

// Overview handles GET /v1/analytics
func (h *Analytics) Overview(c echo.Context) error {
	var req analytics.RangeRequest
	if err := bindQuery(c, &req); err != nil {
		return HandleError(h.logger, c, err)
	}

	out, err := h.analyticsService.Overview(c.Request().Context(), analyticsUsecase.RangeQuery{
		StartDate:    req.StartDate,
		EndDate:      req.EndDate,
		ExcludeUsers: req.Users(),
	})
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, presenter.ToOverviewResponse(out))
}

// LagAnalysis handles GET /v1/analytics/lag
func (h *Analytics) LagAnalysis(c echo.Context) error {
	var req analytics.RangeRequest
	if err := bindQuery(c, &req); err != nil {
		return HandleError(h.logger, c, err)
	}

	report, err := h.lagService.Analyze(c.Request().Context(), lagQuery(req))
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, presenter.ToLagAnalysisResponse(report))
}

// ExportLag handles POST /v1/analytics/lag/export
func (h *Analytics) ExportLag(c echo.Context) error {
	var req analytics.RangeRequest
	if err := bindQuery(c, &req); err != nil {
		return HandleError(h.logger, c, err)
	}

	result, err := h.lagService.Export(c.Request().Context(), lagQuery(req))
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, presenter.ToExportResponse(result))
}

// Thresholds handles GET /v1/analytics/lag/thresholds
func (h *Analytics) Thresholds(c echo.Context) error {
	return HandleSuccess(h.logger, c, h.lagService.Thresholds())
}

func lagQuery(req analytics.RangeRequest) lag.Query {
	return lag.Query{
		StartDate:    req.StartDate,
		EndDate:      req.EndDate,
		ExcludeUsers: req.Users(),
	}
}
