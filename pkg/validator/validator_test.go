package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type rangeRequest struct {
	StartDate string `validate:"omitempty,isodate"`
	Limit     int    `validate:"omitempty,min=1,max=500"`
}

func TestIsoDate(t *testing.T) {
	v := New()

	assert.NoError(t, v.Validate(&rangeRequest{}))
	assert.NoError(t, v.Validate(&rangeRequest{StartDate: "2025-02-28"}))
	assert.Error(t, v.Validate(&rangeRequest{StartDate: "2025-02-30"}))
	assert.Error(t, v.Validate(&rangeRequest{StartDate: "28/02/2025"}))
	assert.Error(t, v.Validate(&rangeRequest{Limit: 501}))
}
