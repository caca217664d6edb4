package conversationlog

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/yanqian/cogniwell/internal/domain/companion"
)

func TestMemoryLogRespectsBudgets(t *testing.T) {
	ctx := context.Background()
	log := NewMemoryLog()
	user := uuid.New()
	base := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	for i, tokens := range []int{50, 30, 20, 10} {
		_, err := log.Append(ctx, companion.ConversationEntry{
			UserID:     user,
			Summary:    string(rune('a' + i)),
			TokenCount: tokens,
			CreatedAt:  base.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
	}
	_, err := log.Append(ctx, companion.ConversationEntry{UserID: uuid.New(), Summary: "other", TokenCount: 1})
	require.NoError(t, err)

	byTokens, err := log.ListRecent(ctx, user, 60, 0)
	require.NoError(t, err)
	require.Equal(t, []string{"b", "c", "d"}, summaries(byTokens))

	byCount, err := log.ListRecent(ctx, user, 0, 2)
	require.NoError(t, err)
	require.Equal(t, []string{"c", "d"}, summaries(byCount))

	all, err := log.ListRecent(ctx, user, 0, 0)
	require.NoError(t, err)
	require.Len(t, all, 4)
	require.NotEqual(t, uuid.Nil, all[0].ID)
}

func TestMemoryLogStopsAtFirstOverBudgetEntry(t *testing.T) {
	ctx := context.Background()
	log := NewMemoryLog()
	user := uuid.New()
	for _, tokens := range []int{5, 500, 5} {
		_, err := log.Append(ctx, companion.ConversationEntry{UserID: user, TokenCount: tokens})
		require.NoError(t, err)
	}
	got, err := log.ListRecent(ctx, user, 100, 10)
	require.NoError(t, err)
	require.Len(t, got, 1)
}

func summaries(entries []companion.ConversationEntry) []string {
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Summary)
	}
	return out
}
