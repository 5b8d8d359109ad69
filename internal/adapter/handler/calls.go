package handler

import (
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/johnquangdev/voice-call-analytics/errors"
	"github.com/johnquangdev/voice-call-analytics/internal/adapter/dto/calls"
	"github.com/johnquangdev/voice-call-analytics/internal/adapter/presenter"
	callsUsecase "github.com/johnquangdev/voice-call-analytics/internal/usecase/calls"
)

// Calls handles per-call requests
type Calls struct {
	callService callsUsecase.Service
	logger      *zap.Logger
}

// NewCallsHandler creates a new calls handler
func NewCallsHandler(callService callsUsecase.Service, logger *zap.Logger) *Calls {
	return &Calls{
		callService: callService,
		logger:      logger,
	}
}

// ListCalls handles GET /v1/calls
func (h *Calls) ListCalls(c echo.Context) error {
	var req calls.ListCallsRequest
	if err := bindQuery(c, &req); err != nil {
		return HandleError(h.logger, c, err)
	}

	list, err := h.callService.ListCalls(c.Request().Context(), callsUsecase.ListCallsQuery{
		Date:         req.Date,
		CallType:     req.CallType,
		ExcludeUsers: req.Users(),
		Limit:        req.Limit,
		Offset:       req.Offset,
	})
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, presenter.ToCallListResponse(list))
}

// GetCall handles GET /v1/calls/:callId
func (h *Calls) GetCall(c echo.Context) error {
	req := calls.GetCallRequest{CallID: c.Param("callId")}
	if err := c.Validate(&req); err != nil {
		return HandleError(h.logger, c, errors.ErrInvalidArgument(err.Error()))
	}

	detail, err := h.callService.GetCall(c.Request().Context(), req.CallID)
	if err != nil {
		return HandleError(h.logger, c, err)
	}

	return HandleSuccess(h.logger, c, presenter.ToCallDetailResponse(detail))
}
