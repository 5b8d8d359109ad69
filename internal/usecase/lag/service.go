package lag

import (
	"context"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/johnquangdev/voice-call-analytics/internal/domain/entities"
	"github.com/johnquangdev/voice-call-analytics/internal/domain/repositories"
	"github.com/johnquangdev/voice-call-analytics/internal/infrastructure/cache"
	usecaseErrors "github.com/johnquangdev/voice-call-analytics/internal/usecase/errors"
	"github.com/johnquangdev/voice-call-analytics/pkg/jobcontext"
	"github.com/johnquangdev/voice-call-analytics/pkg/metrics"
)

// exportPrefix is the object key prefix for exported reports
const exportPrefix = "lag-reports"

// Service defines the interface for the lag analytics use case
type Service interface {
	// Analyze builds (or loads from cache) the lag report for a date range
	Analyze(ctx context.Context, query Query) (*LagReport, error)

	// Export stores the report in object storage and returns a download URL
	Export(ctx context.Context, query Query) (*ExportResult, error)

	// Thresholds returns the thresholds reports are computed with
	Thresholds() entities.Thresholds
}

// ObjectStore uploads exported reports
type ObjectStore interface {
	UploadJSON(ctx context.Context, objectName string, data []byte) error
	PresignedURL(ctx context.Context, objectName string, expiry time.Duration) (string, error)
}

// EventPublisher announces freshly computed reports
type EventPublisher interface {
	Publish(ctx context.Context, event any) error
}

// Query selects the calls a report covers
type Query struct {
	StartDate    string
	EndDate      string
	ExcludeUsers []string
}

// LagReport is the engine report plus the parameters it was computed with
type LagReport struct {
	*Report
	Thresholds  entities.Thresholds `json:"thresholds"`
	DateRange   entities.DateRange  `json:"dateRange"`
	GeneratedAt time.Time           `json:"generatedAt"`
	Cached      bool                `json:"cached"`
}

// ExportResult locates an exported report
type ExportResult struct {
	ObjectName string    `json:"object_name"`
	URL        string    `json:"url"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// ReportEvent is published after a report is computed from the database
type ReportEvent struct {
	EventID       string    `json:"event_id"`
	StartDate     string    `json:"start_date"`
	EndDate       string    `json:"end_date"`
	CallsAnalyzed int       `json:"calls_analyzed"`
	TotalEpisodes int       `json:"total_episodes"`
	AvgE2ELatency float64   `json:"avg_e2e_latency"`
	P95E2ELatency float64   `json:"p95_e2e_latency"`
	GeneratedAt   time.Time `json:"generated_at"`
}

// ServiceConfig holds the run settings of the lag service
type ServiceConfig struct {
	Thresholds       entities.Thresholds
	MaxCalls         int
	EpisodeLimit     int
	DefaultRangeDays int
	CacheTTL         time.Duration
	Workers          int
	DailyAvgMode     DailyAvgMode
	ExcludedUsers    []string
	ExportURLExpiry  time.Duration
	ExportTimeout    time.Duration
	ExportRetries    uint64
	ExportRetryDelay time.Duration
}

// LagService handles lag analytics business logic
type LagService struct {
	callRepo  repositories.CallRepository
	cache     cache.ReportCache
	store     ObjectStore
	publisher EventPublisher
	metrics   *metrics.Collectors
	logger    *zap.Logger
	cfg       ServiceConfig
	now       func() time.Time
}

// Ensure LagService implements Service interface
var _ Service = (*LagService)(nil)

// Option customizes a LagService
type Option func(*LagService)

// WithCache enables report caching
func WithCache(c cache.ReportCache) Option {
	return func(s *LagService) { s.cache = c }
}

// WithObjectStore enables report export
func WithObjectStore(store ObjectStore) Option {
	return func(s *LagService) { s.store = store }
}

// WithPublisher enables report events
func WithPublisher(p EventPublisher) Option {
	return func(s *LagService) { s.publisher = p }
}

// WithMetrics records engine metrics on c
func WithMetrics(c *metrics.Collectors) Option {
	return func(s *LagService) { s.metrics = c }
}

// WithClock overrides the time source
func WithClock(now func() time.Time) Option {
	return func(s *LagService) { s.now = now }
}

// NewLagService creates a new lag service
func NewLagService(callRepo repositories.CallRepository, cfg ServiceConfig, logger *zap.Logger, opts ...Option) *LagService {
	if cfg.MaxCalls <= 0 {
		cfg.MaxCalls = 500
	}
	if cfg.ExportURLExpiry <= 0 {
		cfg.ExportURLExpiry = 24 * time.Hour
	}
	if cfg.ExportRetryDelay <= 0 {
		cfg.ExportRetryDelay = 500 * time.Millisecond
	}
	if !cfg.DailyAvgMode.Valid() {
		cfg.DailyAvgMode = DailyAvgRunning
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	s := &LagService{
		callRepo: callRepo,
		logger:   logger,
		cfg:      cfg,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Thresholds returns the thresholds reports are computed with
func (s *LagService) Thresholds() entities.Thresholds {
	return s.cfg.Thresholds
}

// resolve normalizes a query into a date range and exclusion list
func (s *LagService) resolve(query Query) (entities.DateRange, []string, error) {
	dr, err := entities.ResolveDateRange(query.StartDate, query.EndDate, s.cfg.DefaultRangeDays, s.now())
	if err != nil {
		return entities.DateRange{}, nil, err
	}

	exclude := query.ExcludeUsers
	if len(exclude) == 0 {
		exclude = s.cfg.ExcludedUsers
	}
	exclude = normalizeUsers(exclude)
	return dr, exclude, nil
}

func normalizeUsers(users []string) []string {
	out := make([]string, 0, len(users))
	for _, u := range users {
		if u = strings.TrimSpace(u); u != "" {
			out = append(out, u)
		}
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// CacheKey identifies a report by range and excluded users
func CacheKey(dr entities.DateRange, excludeUsers []string) string {
	return fmt.Sprintf("lag:%s:%s:%s", dr.StartDate(), dr.EndDate(), strings.Join(excludeUsers, ","))
}

// Analyze builds (or loads from cache) the lag report for a date range
func (s *LagService) Analyze(ctx context.Context, query Query) (*LagReport, error) {
	dr, exclude, err := s.resolve(query)
	if err != nil {
		return nil, err
	}
	key := CacheKey(dr, exclude)

	if report, ok := s.fromCache(ctx, key); ok {
		s.countRun("cache")
		return report, nil
	}

	start := s.now()
	calls, err := s.callRepo.ListForLagAnalysis(ctx, repositories.LagAnalysisFilters{
		DateRangeFilters: repositories.DateRangeFilters{
			StartDate:    dr.Start,
			EndDate:      dr.End,
			ExcludeUsers: exclude,
		},
		Limit: s.cfg.MaxCalls,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to load calls: %w", usecaseErrors.ErrQueryFailed, err)
	}

	opts := Options{
		Thresholds:   s.cfg.Thresholds,
		EpisodeLimit: s.cfg.EpisodeLimit,
		DailyAvgMode: s.cfg.DailyAvgMode,
		OnUnreadable: func(callID string, status ParseStatus) {
			s.logger.Debug("unreadable transcript",
				zap.String("call_id", callID),
				zap.String("status", string(status)),
			)
		},
	}

	report, err := AggregateParallel(ctx, calls, opts, s.cfg.Workers)
	if err != nil {
		return nil, err
	}

	out := &LagReport{
		Report:      report,
		Thresholds:  s.cfg.Thresholds,
		DateRange:   dr,
		GeneratedAt: s.now().UTC(),
	}
	elapsed := s.now().Sub(start)

	s.observe(report, elapsed)
	s.logger.Info("lag report computed",
		zap.Int("calls", report.CallsAnalyzed),
		zap.Int("episodes", report.TotalEpisodes),
		zap.Duration("duration", elapsed),
		zap.String("cache_key", key),
	)

	s.toCache(ctx, key, out)
	s.publish(ctx, out)
	return out, nil
}

// Export stores the report in object storage and returns a download URL
func (s *LagService) Export(ctx context.Context, query Query) (*ExportResult, error) {
	if s.store == nil {
		return nil, usecaseErrors.ErrExportUnavailable
	}

	ctx, cancel := jobcontext.Begin(ctx, "lag_export", s.cfg.ExportTimeout)
	defer cancel()

	report, err := s.Analyze(ctx, query)
	if err != nil {
		return nil, err
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		s.countExport("error")
		return nil, fmt.Errorf("%w: failed to encode report: %w", usecaseErrors.ErrExportFailed, err)
	}

	objectName := fmt.Sprintf("%s/%s_%s/%s.json", exportPrefix, report.DateRange.StartDate(), report.DateRange.EndDate(), jobcontext.RunID(ctx))
	err = jobcontext.Retry(ctx, s.cfg.ExportRetries, s.cfg.ExportRetryDelay, func(ctx context.Context) error {
		return s.store.UploadJSON(ctx, objectName, data)
	})
	if err != nil {
		s.countExport("error")
		return nil, fmt.Errorf("%w: failed to upload report: %w", usecaseErrors.ErrStorageFailed, err)
	}

	url, err := s.store.PresignedURL(ctx, objectName, s.cfg.ExportURLExpiry)
	if err != nil {
		s.countExport("error")
		return nil, fmt.Errorf("%w: failed to sign report URL: %w", usecaseErrors.ErrStorageFailed, err)
	}

	s.countExport("ok")
	s.logger.Info("lag report exported", append(jobcontext.Fields(ctx), zap.String("object", objectName))...)

	return &ExportResult{
		ObjectName: objectName,
		URL:        url,
		ExpiresAt:  s.now().UTC().Add(s.cfg.ExportURLExpiry),
	}, nil
}

func (s *LagService) fromCache(ctx context.Context, key string) (*LagReport, bool) {
	if s.cache == nil {
		return nil, false
	}

	data, ok, err := s.cache.Get(ctx, key)
	if err != nil {
		s.logger.Warn("report cache read failed", zap.String("cache_key", key), zap.Error(err))
		return nil, false
	}
	if !ok {
		return nil, false
	}

	var report LagReport
	if err := json.Unmarshal(data, &report); err != nil {
		s.logger.Warn("cached report is corrupt", zap.String("cache_key", key), zap.Error(err))
		_ = s.cache.Delete(ctx, key)
		return nil, false
	}
	report.Cached = true
	return &report, true
}

func (s *LagService) toCache(ctx context.Context, key string, report *LagReport) {
	if s.cache == nil || s.cfg.CacheTTL <= 0 {
		return
	}

	data, err := json.Marshal(report)
	if err != nil {
		s.logger.Warn("failed to encode report for cache", zap.Error(err))
		return
	}
	if err := s.cache.Set(ctx, key, data, s.cfg.CacheTTL); err != nil {
		s.logger.Warn("report cache write failed", zap.String("cache_key", key), zap.Error(err))
	}
}

func (s *LagService) publish(ctx context.Context, report *LagReport) {
	if s.publisher == nil {
		return
	}

	event := ReportEvent{
		EventID:       uuid.NewString(),
		StartDate:     report.DateRange.StartDate(),
		EndDate:       report.DateRange.EndDate(),
		CallsAnalyzed: report.CallsAnalyzed,
		TotalEpisodes: report.TotalEpisodes,
		AvgE2ELatency: report.ComponentBreakdown.E2E.Avg,
		P95E2ELatency: report.ComponentBreakdown.E2E.P95,
		GeneratedAt:   report.GeneratedAt,
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("failed to publish report event", zap.Error(err))
	}
}

func (s *LagService) observe(report *Report, elapsed time.Duration) {
	if s.metrics == nil {
		return
	}
	s.metrics.LagRuns.WithLabelValues("engine").Inc()
	s.metrics.LagCallsAnalyzed.Add(float64(report.CallsAnalyzed))
	s.metrics.UnreadableTranscripts.Add(float64(report.UnreadableTranscripts))
	s.metrics.LagRunDuration.Observe(elapsed.Seconds())

	for lagType, n := range report.EpisodeCounts {
		s.metrics.LagEpisodes.WithLabelValues(string(lagType)).Add(float64(n))
	}
}

func (s *LagService) countRun(source string) {
	if s.metrics != nil {
		s.metrics.LagRuns.WithLabelValues(source).Inc()
	}
}

func (s *LagService) countExport(result string) {
	if s.metrics != nil {
		s.metrics.LagExports.WithLabelValues(result).Inc()
	}
}
