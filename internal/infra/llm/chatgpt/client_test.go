package chatgpt

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewClientRequiresKey(t *testing.T) {
	_, err := NewClient("  ", "", 0)
	require.Error(t, err)

	c, err := NewClient("k", "https://example.test/v1/", 0)
	require.NoError(t, err)
	require.Equal(t, "https://example.test/v1", c.baseURL)
	require.Equal(t, defaultTimeout, c.httpClient.Timeout)
}

func TestContentOfEmptyResponse(t *testing.T) {
	require.Empty(t, ChatCompletionResponse{}.Content())
}
