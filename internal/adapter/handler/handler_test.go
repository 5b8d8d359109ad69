package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/johnquangdev/voice-call-analytics/errors"
	"github.com/johnquangdev/voice-call-analytics/internal/domain/entities"
	analyticsUsecase "github.com/johnquangdev/voice-call-analytics/internal/usecase/analytics"
	callsUsecase "github.com/johnquangdev/voice-call-analytics/internal/usecase/calls"
	usecaseErrors "github.com/johnquangdev/voice-call-analytics/internal/usecase/errors"
	"github.com/johnquangdev/voice-call-analytics/internal/usecase/lag"
	"github.com/johnquangdev/voice-call-analytics/pkg/config"
	"github.com/johnquangdev/voice-call-analytics/pkg/metrics"
	"github.com/johnquangdev/voice-call-analytics/pkg/validator"
)

type fakeLagService struct {
	report    *lag.LagReport
	export    *lag.ExportResult
	err       error
	lastQuery lag.Query
}

func (f *fakeLagService) Analyze(_ context.Context, q lag.Query) (*lag.LagReport, error) {
	f.lastQuery = q
	return f.report, f.err
}

func (f *fakeLagService) Export(_ context.Context, q lag.Query) (*lag.ExportResult, error) {
	f.lastQuery = q
	return f.export, f.err
}

func (f *fakeLagService) Thresholds() entities.Thresholds {
	return entities.DefaultThresholds()
}

type fakeAnalyticsService struct {
	out *analyticsUsecase.Overview
	err error
}

func (f *fakeAnalyticsService) Overview(_ context.Context, _ analyticsUsecase.RangeQuery) (*analyticsUsecase.Overview, error) {
	return f.out, f.err
}

type fakeCallService struct {
	list      *callsUsecase.CallList
	detail    *callsUsecase.CallDetail
	err       error
	lastQuery callsUsecase.ListCallsQuery
}

func (f *fakeCallService) ListCalls(_ context.Context, q callsUsecase.ListCallsQuery) (*callsUsecase.CallList, error) {
	f.lastQuery = q
	return f.list, f.err
}

func (f *fakeCallService) GetCall(_ context.Context, _ string) (*callsUsecase.CallDetail, error) {
	return f.detail, f.err
}

type envelope struct {
	Code    float64           `json:"code"`
	Message string            `json:"message"`
	Info    string            `json:"info"`
	Details map[string]string `json:"details"`
	Data    json.RawMessage   `json:"data"`
}

func newTestServer(t *testing.T, lagSvc *fakeLagService, analyticsSvc *fakeAnalyticsService, callSvc *fakeCallService) (*echo.Echo, *Router) {
	t.Helper()
	e := echo.New()
	e.Validator = validator.New()

	cfg := &config.Config{}
	cfg.Server.Environment = "test"
	rt := NewRouter(cfg,
		NewAnalyticsHandler(analyticsSvc, lagSvc, nil),
		NewCallsHandler(callSvc, nil),
		metrics.New(),
	)
	rt.Setup(e)
	return e, rt
}

func do(t *testing.T, e *echo.Echo, method, target string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	var body envelope
	if rec.Header().Get(echo.HeaderContentType) != "" && rec.Body.Len() > 0 && rec.Body.Bytes()[0] == '{' {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	}
	return rec, body
}

func TestLagAnalysis(t *testing.T) {
	lagSvc := &fakeLagService{report: &lag.LagReport{
		Report:      &lag.Report{CallsAnalyzed: 3, TotalEpisodes: 1},
		Thresholds:  entities.DefaultThresholds(),
		GeneratedAt: time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
	}}
	e, _ := newTestServer(t, lagSvc, &fakeAnalyticsService{}, &fakeCallService{})

	rec, body := do(t, e, http.MethodGet, "/v1/analytics/lag?startDate=2025-03-01&endDate=2025-03-09&excludeUsers=a,%20b,")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 200.0, body.Code)
	assert.Equal(t, "success", body.Message)

	assert.Equal(t, lag.Query{StartDate: "2025-03-01", EndDate: "2025-03-09", ExcludeUsers: []string{"a", "b"}}, lagSvc.lastQuery)

	var data map[string]any
	require.NoError(t, json.Unmarshal(body.Data, &data))
	assert.Equal(t, 3.0, data["callsAnalyzed"])
	assert.Equal(t, []any{}, data["lagEpisodes"])
	assert.Contains(t, data, "componentBreakdown")
}

func TestLagAnalysisRejectsBadDate(t *testing.T) {
	e, _ := newTestServer(t, &fakeLagService{}, &fakeAnalyticsService{}, &fakeCallService{})

	rec, body := do(t, e, http.MethodGet, "/v1/analytics/lag?startDate=2025-13-01")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, float64(appErrors.ErrorCode_INVALID_ARGUMENT), body.Code)
}

func TestErrorMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   appErrors.ErrorCode
	}{
		{"date range", fmt.Errorf("%w: 2025-03-09 > 2025-03-01", entities.ErrInvalidDateRange), http.StatusBadRequest, appErrors.ErrorCode_INVALID_DATE_RANGE},
		{"export unavailable", usecaseErrors.ErrExportUnavailable, http.StatusServiceUnavailable, appErrors.ErrorCode_EXPORT_UNAVAILABLE},
		{"storage", fmt.Errorf("%w: upload: %w", usecaseErrors.ErrStorageFailed, errors.New("bucket gone")), http.StatusBadGateway, appErrors.ErrorCode_STORAGE_FAILED},
		{"query", fmt.Errorf("%w: %w", usecaseErrors.ErrQueryFailed, errors.New("conn reset")), http.StatusInternalServerError, appErrors.ErrorCode_DB_QUERY_FAILED},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, appErrors.ErrorCode_INTERNAL},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e, _ := newTestServer(t, &fakeLagService{err: tc.err}, &fakeAnalyticsService{}, &fakeCallService{})

			rec, body := do(t, e, http.MethodPost, "/v1/analytics/lag/export")
			assert.Equal(t, tc.status, rec.Code)
			assert.Equal(t, float64(tc.code), body.Code)
		})
	}
}

func TestExportLag(t *testing.T) {
	lagSvc := &fakeLagService{export: &lag.ExportResult{ObjectName: "lag-reports/x.json", URL: "https://files/x"}}
	e, _ := newTestServer(t, lagSvc, &fakeAnalyticsService{}, &fakeCallService{})

	rec, body := do(t, e, http.MethodPost, "/v1/analytics/lag/export?startDate=2025-03-01")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "2025-03-01", lagSvc.lastQuery.StartDate)
	assert.Contains(t, string(body.Data), `"url":"https://files/x"`)
}

func TestOverview(t *testing.T) {
	svc := &fakeAnalyticsService{out: &analyticsUsecase.Overview{
		DailyMetrics: []entities.DailyCallMetrics{},
		Summary:      entities.CallSummary{TotalCalls: 7},
	}}
	e, _ := newTestServer(t, &fakeLagService{}, svc, &fakeCallService{})

	rec, body := do(t, e, http.MethodGet, "/v1/analytics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, string(body.Data), `"total_calls":7`)
}

func TestListCalls(t *testing.T) {
	callSvc := &fakeCallService{list: &callsUsecase.CallList{
		Date:     "2025-03-09",
		CallType: entities.CallTypeWelcome,
		Calls: []callsUsecase.CallListEntry{{
			Call: &entities.VoiceCall{CallID: "c1"},
			Lag:  lag.CallLagSummary{MaxLag: 5, LagEpisodes: 2, LagType: lag.SummaryLagE2E},
		}},
		Total: 1,
		Limit: 10,
	}}
	e, _ := newTestServer(t, &fakeLagService{}, &fakeAnalyticsService{}, callSvc)

	rec, body := do(t, e, http.MethodGet, "/v1/calls?date=2025-03-09&callType=welcome&limit=10&offset=0")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, callsUsecase.ListCallsQuery{Date: "2025-03-09", CallType: "welcome", Limit: 10}, callSvc.lastQuery)
	assert.Contains(t, string(body.Data), `"lag_type":"e2e"`)

	rec, _ = do(t, e, http.MethodGet, "/v1/calls?callType=weekly")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, _ = do(t, e, http.MethodGet, "/v1/calls?limit=abc")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetCallNotFound(t *testing.T) {
	e, _ := newTestServer(t, &fakeLagService{}, &fakeAnalyticsService{}, &fakeCallService{err: usecaseErrors.ErrCallNotFound})

	rec, body := do(t, e, http.MethodGet, "/v1/calls/c-404")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, float64(appErrors.ErrorCode_CALL_NOT_FOUND), body.Code)
	assert.Equal(t, "c-404", body.Details["call_id"])
}

func TestHealth(t *testing.T) {
	e, rt := newTestServer(t, &fakeLagService{}, &fakeAnalyticsService{}, &fakeCallService{})

	rec, _ := do(t, e, http.MethodGet, "/health")
	assert.Equal(t, http.StatusOK, rec.Code)

	rt.AddHealthCheck("database", func(context.Context) error { return errors.New("down") })
	rec, _ = do(t, e, http.MethodGet, "/health")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), `"database":"down"`)
}

func TestMetricsEndpoint(t *testing.T) {
	e, _ := newTestServer(t, &fakeLagService{}, &fakeAnalyticsService{}, &fakeCallService{})

	rec, _ := do(t, e, http.MethodGet, "/metrics")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}
