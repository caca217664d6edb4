package recordstore

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/yanqian/cogniwell/internal/domain/health"
)

func TestMemoryDetectionsFilterAndOrder(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryStore().Detections()
	user := uuid.New()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	for i, dt := range []health.DetectionType{health.DetectionFacial, health.DetectionSpeech, health.DetectionFacial} {
		_, err := repo.Insert(ctx, health.DetectionResult{
			UserID:          user,
			DetectionType:   dt,
			ConfidenceScore: 0.5,
			CreatedAt:       base.Add(time.Duration(i) * time.Hour),
		})
		require.NoError(t, err)
	}
	_, err := repo.Insert(ctx, health.DetectionResult{UserID: uuid.New(), DetectionType: health.DetectionFacial, CreatedAt: base})
	require.NoError(t, err)

	all, err := repo.Query(ctx, health.Filter{UserID: user})
	require.NoError(t, err)
	require.Len(t, all, 3)
	require.True(t, all[0].CreatedAt.Before(all[2].CreatedAt))
	require.NotEqual(t, uuid.Nil, all[0].ID)

	facial, err := repo.Query(ctx, health.Filter{UserID: user, DetectionType: health.DetectionFacial, Order: health.Descending, Limit: 1})
	require.NoError(t, err)
	require.Len(t, facial, 1)
	require.Equal(t, base.Add(2*time.Hour), facial[0].CreatedAt)

	bounded, err := repo.Query(ctx, health.Filter{UserID: user, From: base.Add(time.Hour), To: base.Add(time.Hour)})
	require.NoError(t, err)
	require.Len(t, bounded, 1)
	require.Equal(t, health.DetectionSpeech, bounded[0].DetectionType)
}

func TestMemoryScoresLatest(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryStore().Scores()
	user := uuid.New()

	_, ok, err := repo.Latest(ctx, user)
	require.NoError(t, err)
	require.False(t, ok)

	base := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	_, err = repo.Insert(ctx, health.CognitiveScoreSnapshot{UserID: user, Score: 60, CreatedAt: base.Add(time.Hour)})
	require.NoError(t, err)
	_, err = repo.Insert(ctx, health.CognitiveScoreSnapshot{UserID: user, Score: 80, CreatedAt: base})
	require.NoError(t, err)

	latest, ok, err := repo.Latest(ctx, user)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, 60, latest.Score)
}

func TestMemoryDailyMetricsUpsertsByDate(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryStore().DailyMetrics()
	user := uuid.New()
	day := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	first, err := repo.Save(ctx, health.DailyHealthMetrics{UserID: user, Date: day, SleepQuality: health.SleepFair})
	require.NoError(t, err)
	second, err := repo.Save(ctx, health.DailyHealthMetrics{UserID: user, Date: day, SleepQuality: health.SleepGood})
	require.NoError(t, err)
	require.Equal(t, first.ID, second.ID)

	_, err = repo.Save(ctx, health.DailyHealthMetrics{UserID: user, Date: day.AddDate(0, 0, -1), StressLevel: health.LevelHigh})
	require.NoError(t, err)

	latest, ok, err := repo.Latest(ctx, user)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, health.SleepGood, latest.SleepQuality)
	require.Equal(t, day, latest.Date)
}

func TestMemoryPlansKeepSingleActive(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	repo := store.Plans()
	user := uuid.New()

	_, ok, err := repo.Active(ctx, user)
	require.NoError(t, err)
	require.False(t, ok)

	first, err := repo.Activate(ctx, health.WellnessPlan{UserID: user, Title: "first"})
	require.NoError(t, err)
	second, err := repo.Activate(ctx, health.WellnessPlan{UserID: user, Title: "second"})
	require.NoError(t, err)
	require.NotEqual(t, first.ID, second.ID)

	active, ok, err := repo.Active(ctx, user)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "second", active.Title)

	activeCount := 0
	for _, p := range store.plans {
		if p.UserID == user && p.IsActive {
			activeCount++
		}
	}
	require.Equal(t, 1, activeCount)
}

func TestMemoryProgressListByPlan(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryStore().Progress()
	user, plan := uuid.New(), uuid.New()

	_, err := repo.Append(ctx, health.ActivityProgress{UserID: user, PlanID: plan, ActivityID: "daily-checkin", Completed: true})
	require.NoError(t, err)
	_, err = repo.Append(ctx, health.ActivityProgress{UserID: user, PlanID: uuid.New(), ActivityID: "mindfulness"})
	require.NoError(t, err)

	entries, err := repo.ListByPlan(ctx, user, plan)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	require.Equal(t, "daily-checkin", entries[0].ActivityID)
}
