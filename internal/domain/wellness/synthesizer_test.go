package wellness

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/cogniwell/internal/domain/health"
)

var synthNow = time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC)

func TestSynthesizeBaselineOnly(t *testing.T) {
	plan := Synthesize(ScoreInput{Score: 85, Status: health.StatusHealthy}, nil, synthNow)

	require.Equal(t, []string{ActivityCheckIn, ActivityMindfulness, ActivityPhysicalExercise}, activityIDs(plan))
	require.Equal(t, planTitle, plan.Title)
	require.Contains(t, plan.Description, "overall cognitive health")
	require.Equal(t, synthNow, plan.CreatedAt)
	require.Equal(t, []string{ActivityCheckIn, ActivityMindfulness}, plan.Schedule.WeeklyDistribution["monday"])
	require.Equal(t, []string{ActivityCheckIn, ActivityMindfulness, ActivityPhysicalExercise}, plan.Schedule.WeeklyDistribution["tuesday"])
	require.Len(t, plan.Schedule.WeeklyDistribution, 7)
	require.Len(t, plan.Schedule.RecommendedTimeOfDay, 3)
	require.NotEmpty(t, plan.Schedule.AdaptabilityNote)
}

func TestSynthesizeAllConditionalActivities(t *testing.T) {
	recent := []health.DetectionResult{
		{DetectionType: health.DetectionFacial, ConfidenceScore: 0.65},
		{DetectionType: health.DetectionSpeech, ConfidenceScore: 0.2},
		{
			DetectionType:   health.DetectionBehavioral,
			ConfidenceScore: 0.9,
			RiskIndicators:  health.RiskIndicators{{Name: health.IndicatorSocialWithdrawal, Value: 1}},
		},
	}
	score := ScoreInput{Score: 55, Status: health.StatusModerate, AreasOfConcern: []string{"speech patterns", "facial expressions"}}

	plan := Synthesize(score, recent, synthNow)

	require.Equal(t, []string{
		ActivityCheckIn,
		ActivityMindfulness,
		ActivityFacialExercises,
		ActivitySpeechArticulation,
		ActivityWordRetrieval,
		ActivityMemoryTraining,
		ActivitySocialEngagement,
		ActivityPhysicalExercise,
	}, activityIDs(plan))
	require.Contains(t, plan.Description, "speech patterns, facial expressions")

	dist := plan.Schedule.WeeklyDistribution
	require.Contains(t, dist["monday"], ActivityFacialExercises)
	require.Contains(t, dist["wednesday"], ActivityFacialExercises)
	require.Contains(t, dist["friday"], ActivityFacialExercises)
	require.NotContains(t, dist["tuesday"], ActivityFacialExercises)
	require.Contains(t, dist["tuesday"], ActivityWordRetrieval)
	require.Contains(t, dist["friday"], ActivityWordRetrieval)
	require.Contains(t, dist["saturday"], ActivitySocialEngagement)
	require.NotContains(t, dist["sunday"], ActivityPhysicalExercise)
	for _, day := range weekdays {
		require.Contains(t, dist[day], ActivityMemoryTraining)
		require.Contains(t, dist[day], ActivitySpeechArticulation)
	}
	for _, a := range plan.Activities {
		require.NoError(t, a.Validate())
		require.Contains(t, plan.Schedule.RecommendedTimeOfDay, a.ID)
	}
}

func TestSynthesizeThresholdsAreStrict(t *testing.T) {
	recent := []health.DetectionResult{
		{DetectionType: health.DetectionFacial, ConfidenceScore: 0.7},
		{DetectionType: health.DetectionSpeech, ConfidenceScore: 0.7},
		{
			DetectionType:   health.DetectionFacial,
			ConfidenceScore: 0.9,
			RiskIndicators:  health.RiskIndicators{{Name: health.IndicatorSocialWithdrawal, Value: 1}},
		},
	}
	plan := Synthesize(ScoreInput{Score: 70}, recent, synthNow)
	require.Equal(t, []string{ActivityCheckIn, ActivityMindfulness, ActivityPhysicalExercise}, activityIDs(plan))
}

func TestSynthesizeMemoryConcern(t *testing.T) {
	plan := Synthesize(ScoreInput{Score: 90, AreasOfConcern: []string{"Memory"}}, nil, synthNow)
	_, ok := plan.Activity(ActivityMemoryTraining)
	require.True(t, ok)
}

func TestSynthesizeSocialWithdrawalFalsy(t *testing.T) {
	recent := []health.DetectionResult{{
		DetectionType:   health.DetectionBehavioral,
		ConfidenceScore: 0.9,
		RiskIndicators:  health.RiskIndicators{{Name: health.IndicatorSocialWithdrawal, Value: 0}},
	}}
	plan := Synthesize(DefaultScore(), recent, synthNow)
	_, ok := plan.Activity(ActivitySocialEngagement)
	require.False(t, ok)
}

func TestDefaultScore(t *testing.T) {
	score := DefaultScore()
	require.Equal(t, 75, score.Score)
	require.Equal(t, health.StatusModerate, score.Status)
	require.NotNil(t, score.AreasOfConcern)
	require.Empty(t, score.AreasOfConcern)
}

func activityIDs(plan health.WellnessPlan) []string {
	ids := make([]string, 0, len(plan.Activities))
	for _, a := range plan.Activities {
		ids = append(ids, a.ID)
	}
	return ids
}
