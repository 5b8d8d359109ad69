package storage

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRewriteHost(t *testing.T) {
	u, err := url.Parse("http://minio:9000/voice-analytics/lag-reports/a.json?X-Amz-Signature=abc")
	require.NoError(t, err)

	got, err := rewriteHost(u, "")
	require.NoError(t, err)
	assert.Equal(t, u.String(), got)

	got, err = rewriteHost(u, "https://files.example.com")
	require.NoError(t, err)
	assert.Equal(t, "https://files.example.com/voice-analytics/lag-reports/a.json?X-Amz-Signature=abc", got)
}
