package tokenizer

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/cogniwell/internal/domain/companion"
)

func TestUnknownEncodingFallsBackToEstimate(t *testing.T) {
	counter := NewTiktokenCounter("not-an-encoding", slog.New(slog.NewTextHandler(io.Discard, nil)))
	text := "I slept badly and feel a bit foggy today"
	require.Equal(t, companion.EstimateTokens(text), counter.Count(text))
	require.Equal(t, 0, counter.Count(""))
}
