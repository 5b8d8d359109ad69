package analytics

import "strings"

// RangeRequest represents the query parameters shared by the analytics endpoints
type RangeRequest struct {
	StartDate    string `query:"startDate" validate:"omitempty,isodate"`
	EndDate      string `query:"endDate" validate:"omitempty,isodate"`
	ExcludeUsers string `query:"excludeUsers" validate:"omitempty,max=4096"`
}

// Users splits the comma separated excludeUsers parameter
func (r RangeRequest) Users() []string {
	return SplitList(r.ExcludeUsers)
}

// SplitList splits a comma separated list, dropping blanks
func SplitList(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
