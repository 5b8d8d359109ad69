package calls

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/johnquangdev/voice-call-analytics/internal/domain/entities"
	"github.com/johnquangdev/voice-call-analytics/internal/domain/repositories"
	usecaseErrors "github.com/johnquangdev/voice-call-analytics/internal/usecase/errors"
	"github.com/johnquangdev/voice-call-analytics/internal/usecase/lag"
)

// Listing limits
const (
	DefaultLimit = 100
	MaxLimit     = 500
)

// Service defines the interface for per-call views
type Service interface {
	// ListCalls retrieves one day of calls with their lag summary
	ListCalls(ctx context.Context, query ListCallsQuery) (*CallList, error)

	// GetCall retrieves a call with its transcript graded turn by turn
	GetCall(ctx context.Context, callID string) (*CallDetail, error)
}

// Ensure CallService implements Service interface
var _ Service = (*CallService)(nil)

// ListCallsQuery selects the calls of one day
type ListCallsQuery struct {
	Date         string
	CallType     string
	ExcludeUsers []string
	Limit        int
	Offset       int
}

// CallListEntry is a listed call and its lag summary
type CallListEntry struct {
	Call *entities.VoiceCall
	Lag  lag.CallLagSummary
}

// CallList is one page of a day's calls
type CallList struct {
	Date     string
	CallType entities.CallType
	Calls    []CallListEntry
	Total    int64
	Limit    int
	Offset   int
}

// CallDetail is a call with its transcript prepared for display
type CallDetail struct {
	Call         *entities.VoiceCall
	ParseStatus  lag.ParseStatus
	Stats        lag.CallDetailStats
	Summary      lag.CallLagSummary
	Turns        []lag.TurnView
	UsageSummary map[string]any
	Actions      map[string]any
}

// Config holds the settings of the call views
type Config struct {
	Thresholds    entities.Thresholds
	ExcludedUsers []string
}

// CallService handles per-call business logic
type CallService struct {
	callRepo repositories.CallRepository
	cfg      Config
	logger   *zap.Logger
	now      func() time.Time
}

// NewCallService creates a new call service
func NewCallService(callRepo repositories.CallRepository, cfg Config, logger *zap.Logger) *CallService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CallService{
		callRepo: callRepo,
		cfg:      cfg,
		logger:   logger,
		now:      time.Now,
	}
}

func parseCallType(s string) (entities.CallType, error) {
	switch ct := entities.CallType(strings.ToLower(strings.TrimSpace(s))); ct {
	case "":
		return entities.CallTypeAll, nil
	case entities.CallTypeAll, entities.CallTypeWelcome, entities.CallTypeDaily:
		return ct, nil
	default:
		return "", fmt.Errorf("%w: %q", usecaseErrors.ErrInvalidCallType, s)
	}
}

// ListCalls retrieves one day of calls with their lag summary
func (s *CallService) ListCalls(ctx context.Context, query ListCallsQuery) (*CallList, error) {
	callType, err := parseCallType(query.CallType)
	if err != nil {
		return nil, err
	}

	limit := query.Limit
	if limit == 0 {
		limit = DefaultLimit
	}
	if limit < 1 || limit > MaxLimit {
		return nil, fmt.Errorf("%w: limit must be between 1 and %d", usecaseErrors.ErrInvalidInput, MaxLimit)
	}
	if query.Offset < 0 {
		return nil, fmt.Errorf("%w: offset must not be negative", usecaseErrors.ErrInvalidInput)
	}

	day := s.now().UTC().Truncate(24 * time.Hour)
	if query.Date != "" {
		day, err = entities.ParseDay(query.Date)
		if err != nil {
			return nil, err
		}
	}

	exclude := query.ExcludeUsers
	if len(exclude) == 0 {
		exclude = s.cfg.ExcludedUsers
	}

	rows, total, err := s.callRepo.ListByDate(ctx, repositories.CallListFilters{
		Date:         day,
		CallType:     callType,
		ExcludeUsers: slices.Clone(exclude),
		Limit:        limit,
		Offset:       query.Offset,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: failed to list calls: %w", usecaseErrors.ErrQueryFailed, err)
	}

	entries := make([]CallListEntry, 0, len(rows))
	for i := range rows {
		entries = append(entries, CallListEntry{
			Call: &rows[i],
			Lag:  lag.SummarizeCall(&rows[i], s.cfg.Thresholds),
		})
	}

	return &CallList{
		Date:     day.Format(entities.DateLayout),
		CallType: callType,
		Calls:    entries,
		Total:    total,
		Limit:    limit,
		Offset:   query.Offset,
	}, nil
}

// GetCall retrieves a call with its transcript graded turn by turn
func (s *CallService) GetCall(ctx context.Context, callID string) (*CallDetail, error) {
	callID = strings.TrimSpace(callID)
	if callID == "" {
		return nil, fmt.Errorf("%w: call id is required", usecaseErrors.ErrInvalidInput)
	}

	call, err := s.callRepo.FindByID(ctx, callID)
	if err != nil {
		if errors.Is(err, usecaseErrors.ErrNotFound) {
			return nil, usecaseErrors.ErrCallNotFound
		}
		return nil, fmt.Errorf("%w: failed to get call: %w", usecaseErrors.ErrQueryFailed, err)
	}

	parsed := lag.ParseTranscript(call.Transcript)
	if !parsed.OK() {
		s.logger.Debug("unreadable transcript",
			zap.String("call_id", call.CallID),
			zap.String("status", string(parsed.Status)),
		)
	}

	return &CallDetail{
		Call:         call,
		ParseStatus:  parsed.Status,
		Stats:        lag.DetailStats(parsed.Transcript, s.cfg.Thresholds),
		Summary:      lag.AnalyzeParsed(call, parsed, s.cfg.Thresholds).Summary,
		Turns:        lag.TurnViews(parsed.Transcript, s.cfg.Thresholds),
		UsageSummary: parseObject(call.UsageSummary),
		Actions:      parseObject(call.Actions),
	}, nil
}

// parseObject decodes a JSON object column, yielding an empty object for
// anything else
func parseObject(raw string) map[string]any {
	out := map[string]any{}
	if strings.TrimSpace(raw) == "" {
		return out
	}
	if err := json.Unmarshal([]byte(raw), &out); err != nil || out == nil {
		return map[string]any{}
	}
	return out
}
