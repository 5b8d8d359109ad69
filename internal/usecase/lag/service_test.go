package lag

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/johnquangdev/voice-call-analytics/internal/domain/entities"
	"github.com/johnquangdev/voice-call-analytics/internal/domain/repositories"
	"github.com/johnquangdev/voice-call-analytics/internal/infrastructure/cache"
	usecaseErrors "github.com/johnquangdev/voice-call-analytics/internal/usecase/errors"
	"github.com/johnquangdev/voice-call-analytics/pkg/metrics"
)

type fakeCallRepository struct {
	repositories.CallRepository

	mu      sync.Mutex
	calls   []entities.VoiceCall
	err     error
	queries []repositories.LagAnalysisFilters
}

func (f *fakeCallRepository) ListForLagAnalysis(_ context.Context, filters repositories.LagAnalysisFilters) ([]entities.VoiceCall, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, filters)
	if f.err != nil {
		return nil, f.err
	}
	return f.calls, nil
}

type fakeObjectStore struct {
	objects  map[string][]byte
	err      error
	failures int
	uploads  int
}

func (f *fakeObjectStore) UploadJSON(_ context.Context, objectName string, data []byte) error {
	f.uploads++
	if f.err != nil {
		return f.err
	}
	if f.failures > 0 {
		f.failures--
		return errors.New("dial tcp: connection refused")
	}
	if f.objects == nil {
		f.objects = map[string][]byte{}
	}
	f.objects[objectName] = data
	return nil
}

func (f *fakeObjectStore) PresignedURL(_ context.Context, objectName string, _ time.Duration) (string, error) {
	return "https://files.example.com/" + objectName, nil
}

type fakePublisher struct {
	events []any
}

func (f *fakePublisher) Publish(_ context.Context, event any) error {
	f.events = append(f.events, event)
	return nil
}

var fixedNow = time.Date(2025, 3, 10, 15, 30, 0, 0, time.UTC)

func newTestService(t *testing.T, repo *fakeCallRepository, opts ...Option) *LagService {
	t.Helper()
	cfg := ServiceConfig{
		Thresholds:       entities.DefaultThresholds(),
		MaxCalls:         50,
		DefaultRangeDays: 7,
		CacheTTL:         time.Minute,
		Workers:          2,
		ExcludedUsers:    []string{"tester-b", "tester-a"},
		ExportRetries:    2,
		ExportRetryDelay: time.Millisecond,
	}
	opts = append([]Option{WithClock(func() time.Time { return fixedNow })}, opts...)
	return NewLagService(repo, cfg, zap.NewNop(), opts...)
}

func serviceCalls(t *testing.T) []entities.VoiceCall {
	return []entities.VoiceCall{
		newCall("c1", "2025-03-09T10:00:00Z", ptr(90), transcriptJSON(t,
			assistantTurn("a1", map[string]any{"e2e_latency": 5.0, "llm_node_ttft": 3.5}),
		)),
		newCall("c2", "2025-03-08T10:00:00Z", ptr(20), "broken"),
	}
}

func TestServiceAnalyzeDefaults(t *testing.T) {
	repo := &fakeCallRepository{calls: serviceCalls(t)}
	pub := &fakePublisher{}
	m := metrics.New()
	svc := newTestService(t, repo, WithPublisher(pub), WithMetrics(m))

	report, err := svc.Analyze(context.Background(), Query{})
	require.NoError(t, err)

	require.Len(t, repo.queries, 1)
	q := repo.queries[0]
	assert.Equal(t, 50, q.Limit)
	assert.Equal(t, []string{"tester-a", "tester-b"}, q.ExcludeUsers)
	assert.Equal(t, "2025-03-03", q.StartDate.Format(entities.DateLayout))
	assert.Equal(t, "2025-03-10", q.EndDate.Format(entities.DateLayout))

	assert.Equal(t, 2, report.CallsAnalyzed)
	assert.Equal(t, 2, report.TotalEpisodes)
	assert.Equal(t, 1, report.UnreadableTranscripts)
	assert.False(t, report.Cached)
	assert.Equal(t, "2025-03-03", report.DateRange.StartDate())
	assert.Equal(t, entities.DefaultThresholds(), report.Thresholds)

	require.Len(t, pub.events, 1)
	event, ok := pub.events[0].(ReportEvent)
	require.True(t, ok)
	assert.Equal(t, 2, event.CallsAnalyzed)
	assert.Equal(t, 5.0, event.AvgE2ELatency)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.LagRuns.WithLabelValues("engine")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.LagCallsAnalyzed))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.UnreadableTranscripts))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LagEpisodes.WithLabelValues(string(entities.LagTypeE2E))))
}

func TestServiceAnalyzeUsesCache(t *testing.T) {
	repo := &fakeCallRepository{calls: serviceCalls(t)}
	store := cache.NewMemoryStore(time.Hour)
	defer store.Close()
	m := metrics.New()
	svc := newTestService(t, repo, WithCache(store), WithMetrics(m))

	query := Query{StartDate: "2025-03-01", EndDate: "2025-03-09", ExcludeUsers: []string{" x ", "x"}}
	first, err := svc.Analyze(context.Background(), query)
	require.NoError(t, err)
	second, err := svc.Analyze(context.Background(), query)
	require.NoError(t, err)

	assert.Len(t, repo.queries, 1)
	assert.Equal(t, []string{"x"}, repo.queries[0].ExcludeUsers)
	assert.True(t, second.Cached)
	assert.Equal(t, first.CallsAnalyzed, second.CallsAnalyzed)
	assert.Equal(t, first.LagEpisodes, second.LagEpisodes)
	assert.Equal(t, first.DateRange.EndDate(), second.DateRange.EndDate())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LagRuns.WithLabelValues("cache")))

	_, ok, err := store.Get(context.Background(), "lag:2025-03-01:2025-03-09:x")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestServiceAnalyzeCorruptCacheEntry(t *testing.T) {
	repo := &fakeCallRepository{calls: serviceCalls(t)}
	store := cache.NewMemoryStore(time.Hour)
	defer store.Close()
	svc := newTestService(t, repo, WithCache(store))

	key := "lag:2025-03-01:2025-03-09:x"
	require.NoError(t, store.Set(context.Background(), key, []byte("{oops"), time.Minute))

	report, err := svc.Analyze(context.Background(), Query{StartDate: "2025-03-01", EndDate: "2025-03-09", ExcludeUsers: []string{"x"}})
	require.NoError(t, err)
	assert.False(t, report.Cached)
	assert.Len(t, repo.queries, 1)
}

func TestServiceAnalyzeErrors(t *testing.T) {
	repo := &fakeCallRepository{}
	svc := newTestService(t, repo)

	_, err := svc.Analyze(context.Background(), Query{StartDate: "2025-03-09", EndDate: "2025-03-01"})
	assert.ErrorIs(t, err, entities.ErrInvalidDateRange)

	_, err = svc.Analyze(context.Background(), Query{StartDate: "03/01/2025"})
	assert.ErrorIs(t, err, entities.ErrInvalidDate)
	assert.Empty(t, repo.queries)

	repo.err = errors.New("connection refused")
	_, err = svc.Analyze(context.Background(), Query{})
	require.Error(t, err)
	assert.ErrorIs(t, err, usecaseErrors.ErrQueryFailed)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestServiceExport(t *testing.T) {
	repo := &fakeCallRepository{calls: serviceCalls(t)}

	_, err := newTestService(t, repo).Export(context.Background(), Query{})
	assert.ErrorIs(t, err, usecaseErrors.ErrExportUnavailable)

	objects := &fakeObjectStore{}
	m := metrics.New()
	svc := newTestService(t, repo, WithObjectStore(objects), WithMetrics(m))

	result, err := svc.Export(context.Background(), Query{StartDate: "2025-03-01", EndDate: "2025-03-09"})
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(result.ObjectName, "lag-reports/2025-03-01_2025-03-09/"))
	assert.True(t, strings.HasSuffix(result.ObjectName, ".json"))
	assert.Equal(t, "https://files.example.com/"+result.ObjectName, result.URL)
	assert.Equal(t, fixedNow.Add(24*time.Hour), result.ExpiresAt)
	assert.Contains(t, string(objects.objects[result.ObjectName]), `"callsAnalyzed": 2`)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LagExports.WithLabelValues("ok")))

	objects.err = errors.New("bucket gone")
	_, err = svc.Export(context.Background(), Query{})
	assert.ErrorIs(t, err, usecaseErrors.ErrStorageFailed)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.LagExports.WithLabelValues("error")))
	assert.Equal(t, 2, objects.uploads)
}

func TestServiceExportRetriesTransientUpload(t *testing.T) {
	repo := &fakeCallRepository{calls: serviceCalls(t)}

	objects := &fakeObjectStore{failures: 2}
	result, err := newTestService(t, repo, WithObjectStore(objects)).Export(context.Background(), Query{})
	require.NoError(t, err)
	assert.Equal(t, 3, objects.uploads)
	assert.Contains(t, objects.objects, result.ObjectName)

	objects = &fakeObjectStore{failures: 5}
	_, err = newTestService(t, repo, WithObjectStore(objects)).Export(context.Background(), Query{})
	assert.ErrorIs(t, err, usecaseErrors.ErrStorageFailed)
	assert.Contains(t, err.Error(), "connection refused")
	assert.Equal(t, 3, objects.uploads)
}

func TestCacheKey(t *testing.T) {
	dr := entities.DateRange{
		Start: time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC),
	}
	assert.Equal(t, "lag:2025-03-01:2025-03-02:a,b", CacheKey(dr, []string{"a", "b"}))
	assert.Equal(t, "lag:2025-03-01:2025-03-02:", CacheKey(dr, nil))
}
