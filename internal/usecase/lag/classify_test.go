package lag

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/johnquangdev/voice-call-analytics/internal/domain/entities"
)

func TestClassifyBands(t *testing.T) {
	cases := []struct {
		value, threshold float64
		want             entities.Severity
	}{
		{0, 4, entities.SeverityNormal},
		{4, 4, entities.SeverityNormal},
		{4.01, 4, entities.SeverityWarning},
		{6, 4, entities.SeverityWarning},
		{6.01, 4, entities.SeverityCritical},
		{0.5, 0.5, entities.SeverityNormal},
		{0.75, 0.5, entities.SeverityWarning},
		{0.76, 0.5, entities.SeverityCritical},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, Classify(tc.value, tc.threshold), "classify(%v, %v)", tc.value, tc.threshold)
	}
}

func TestClassifyMatchesDefinition(t *testing.T) {
	thresholds := []float64{0.5, 1.5, 2, 3, 4}
	for _, th := range thresholds {
		for v := 0.0; v <= th*2; v += th / 8 {
			got := Classify(v, th)
			switch {
			case v <= th:
				assert.Equal(t, entities.SeverityNormal, got)
			case v > 1.5*th:
				assert.Equal(t, entities.SeverityCritical, got)
			default:
				assert.Equal(t, entities.SeverityWarning, got)
			}
		}
	}
}
