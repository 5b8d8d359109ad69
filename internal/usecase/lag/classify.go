package lag

import "github.com/johnquangdev/voice-call-analytics/internal/domain/entities"

// CriticalMultiplier scales a threshold into the critical band
const CriticalMultiplier = 1.5

// Classify grades value against threshold: at or below is normal, up to
// 1.5x is a warning, anything above is critical.
func Classify(value, threshold float64) entities.Severity {
	switch {
	case value <= threshold:
		return entities.SeverityNormal
	case value <= threshold*CriticalMultiplier:
		return entities.SeverityWarning
	default:
		return entities.SeverityCritical
	}
}
