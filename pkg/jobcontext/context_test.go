package jobcontext

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBegin(t *testing.T) {
	ctx, cancel := Begin(context.Background(), "lag_export", time.Minute)
	defer cancel()

	md, ok := FromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, "lag_export", md.Kind)
	assert.Len(t, md.RunID, 36)
	assert.Equal(t, md.RunID, RunID(ctx))
	assert.Len(t, Fields(ctx), 3)

	_, hasDeadline := ctx.Deadline()
	assert.True(t, hasDeadline)
}

func TestBeginWithoutTimeout(t *testing.T) {
	ctx, cancel := Begin(context.Background(), "seed", 0)
	defer cancel()

	_, hasDeadline := ctx.Deadline()
	assert.False(t, hasDeadline)
	assert.NotEmpty(t, RunID(ctx))
}

func TestOutsideRun(t *testing.T) {
	assert.Empty(t, RunID(context.Background()))
	assert.Nil(t, Fields(context.Background()))
}

func TestRetryTransient(t *testing.T) {
	attempts := 0
	err := Retry(context.Background(), 3, time.Millisecond, func(context.Context) error {
		attempts++
		if attempts < 3 {
			return errors.New("read tcp: connection reset by peer")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestRetryPermanent(t *testing.T) {
	attempts := 0
	cause := errors.New("access denied")
	err := Retry(context.Background(), 3, time.Millisecond, func(context.Context) error {
		attempts++
		return cause
	})
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, 1, attempts)
}

func TestRetryExhausted(t *testing.T) {
	attempts := 0
	err := Retry(context.Background(), 2, time.Millisecond, func(context.Context) error {
		attempts++
		return errors.New("503 service unavailable")
	})
	require.Error(t, err)
	assert.Equal(t, 3, attempts)
}

func TestIsRetryableError(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{context.Canceled, false},
		{fmt.Errorf("upload: %w", context.DeadlineExceeded), true},
		{errors.New("dial tcp: connection refused"), true},
		{errors.New("Please reduce your request rate. SlowDown"), true},
		{errors.New("The specified bucket does not exist"), false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, IsRetryableError(tt.err), "%v", tt.err)
	}
}
