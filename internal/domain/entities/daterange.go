package entities

import (
	"encoding/json"
	"fmt"
	"time"
)

// DateLayout is the calendar day format used in queries and rollups
const DateLayout = "2006-01-02"

// DateRange is an inclusive range of UTC calendar days
type DateRange struct {
	Start time.Time
	End   time.Time
}

// StartDate returns the first day as YYYY-MM-DD
func (r DateRange) StartDate() string {
	return r.Start.Format(DateLayout)
}

// EndDate returns the last day as YYYY-MM-DD
func (r DateRange) EndDate() string {
	return r.End.Format(DateLayout)
}

// MarshalJSON writes the range as {"startDate", "endDate"}
func (r DateRange) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		StartDate string `json:"startDate"`
		EndDate   string `json:"endDate"`
	}{r.StartDate(), r.EndDate()})
}

// UnmarshalJSON reads the {"startDate", "endDate"} form
func (r *DateRange) UnmarshalJSON(data []byte) error {
	var raw struct {
		StartDate string `json:"startDate"`
		EndDate   string `json:"endDate"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	start, err := ParseDay(raw.StartDate)
	if err != nil {
		return err
	}
	end, err := ParseDay(raw.EndDate)
	if err != nil {
		return err
	}
	*r = DateRange{Start: start, End: end}
	return nil
}

// ParseDay parses a YYYY-MM-DD day in UTC
func ParseDay(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return t, nil
}

// ResolveDateRange fills missing bounds: end defaults to today and start to
// defaultDays before end. Both bounds are inclusive.
func ResolveDateRange(startDate, endDate string, defaultDays int, now time.Time) (DateRange, error) {
	today := now.UTC().Truncate(24 * time.Hour)

	end := today
	if endDate != "" {
		parsed, err := ParseDay(endDate)
		if err != nil {
			return DateRange{}, err
		}
		end = parsed
	}

	start := end.AddDate(0, 0, -defaultDays)
	if startDate != "" {
		parsed, err := ParseDay(startDate)
		if err != nil {
			return DateRange{}, err
		}
		start = parsed
	}

	if start.After(end) {
		return DateRange{}, fmt.Errorf("%w: %s > %s", ErrInvalidDateRange, start.Format(DateLayout), end.Format(DateLayout))
	}
	return DateRange{Start: start, End: end}, nil
}
