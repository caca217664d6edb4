package healthmetrics

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/yanqian/cogniwell/internal/domain/health"
)

func TestSleepQualityBuckets(t *testing.T) {
	cases := map[float64]health.SleepQuality{
		7.5: health.SleepGood,
		7:   health.SleepGood,
		6:   health.SleepFair,
		5:   health.SleepFair,
		4:   health.SleepPoor,
		0:   health.SleepPoor,
	}
	for hours, want := range cases {
		require.Equal(t, want, SleepQualityFor(hours), "hours=%v", hours)
	}
}

func TestActivityAndStressBuckets(t *testing.T) {
	require.Equal(t, health.LevelHigh, ActivityLevelFor(10000))
	require.Equal(t, health.LevelModerate, ActivityLevelFor(9999))
	require.Equal(t, health.LevelModerate, ActivityLevelFor(5000))
	require.Equal(t, health.LevelLow, ActivityLevelFor(4999))

	require.Equal(t, health.LevelLow, StressLevelFor(30))
	require.Equal(t, health.LevelModerate, StressLevelFor(30.5))
	require.Equal(t, health.LevelModerate, StressLevelFor(70))
	require.Equal(t, health.LevelHigh, StressLevelFor(71))
}

func TestUpdateCreatesRecordWhenMissing(t *testing.T) {
	now := time.Date(2024, 6, 3, 14, 30, 0, 0, time.UTC)
	next, changed := Update(nil, health.DataSleep, 7.5, now, time.UTC)

	require.True(t, changed)
	require.Equal(t, health.SleepGood, next.SleepQuality)
	require.Nil(t, next.RestingHeartRate)
	require.Empty(t, next.ActivityLevel)
	require.Equal(t, time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC), next.Date)
	require.Equal(t, now, next.UpdatedAt)
}

func TestUpdateMergesSameDay(t *testing.T) {
	id := uuid.New()
	created := time.Date(2024, 6, 3, 7, 0, 0, 0, time.UTC)
	current := &health.DailyHealthMetrics{
		ID:           id,
		Date:         time.Date(2024, 6, 3, 0, 0, 0, 0, time.UTC),
		SleepQuality: health.SleepFair,
		CreatedAt:    created,
	}
	now := time.Date(2024, 6, 3, 20, 0, 0, 0, time.UTC)

	next, changed := Update(current, health.DataHeartRate, 61, now, time.UTC)
	require.True(t, changed)
	require.Equal(t, id, next.ID)
	require.Equal(t, health.SleepFair, next.SleepQuality)
	require.NotNil(t, next.RestingHeartRate)
	require.Equal(t, 61.0, *next.RestingHeartRate)
	require.Equal(t, created, next.CreatedAt)
	require.Nil(t, current.RestingHeartRate)
}

func TestUpdateStartsNewDay(t *testing.T) {
	current := &health.DailyHealthMetrics{
		ID:           uuid.New(),
		Date:         time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC),
		SleepQuality: health.SleepPoor,
	}
	now := time.Date(2024, 6, 3, 0, 5, 0, 0, time.UTC)

	next, changed := Update(current, health.DataActivity, 12000, now, time.UTC)
	require.True(t, changed)
	require.Equal(t, uuid.Nil, next.ID)
	require.Empty(t, next.SleepQuality)
	require.Equal(t, health.LevelHigh, next.ActivityLevel)
}

func TestUpdateComparesDatesInLocation(t *testing.T) {
	loc := time.FixedZone("UTC+8", 8*60*60)
	current := &health.DailyHealthMetrics{
		Date:         time.Date(2024, 6, 3, 0, 0, 0, 0, loc),
		SleepQuality: health.SleepGood,
	}
	// 2024-06-02 18:00 UTC is 2024-06-03 02:00 in loc.
	now := time.Date(2024, 6, 2, 18, 0, 0, 0, time.UTC)

	next, changed := Update(current, health.DataStress, 80, now, loc)
	require.True(t, changed)
	require.Equal(t, health.SleepGood, next.SleepQuality)
	require.Equal(t, health.LevelHigh, next.StressLevel)
}

func TestUpdateIgnoresUnmappedTypes(t *testing.T) {
	current := &health.DailyHealthMetrics{SleepQuality: health.SleepGood}
	now := time.Now()

	next, changed := Update(current, health.DataBloodPressure, 120, now, time.UTC)
	require.False(t, changed)
	require.Equal(t, *current, next)

	_, changed = Update(nil, health.DataOther, 1, now, time.UTC)
	require.False(t, changed)
}
