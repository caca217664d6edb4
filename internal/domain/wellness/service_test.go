package wellness

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/yanqian/cogniwell/internal/domain/health"
	apperrors "github.com/yanqian/cogniwell/pkg/errors"
)

func TestServiceCurrentIsIdempotentWithinFreshness(t *testing.T) {
	userID := uuid.New()
	plans := &stubPlans{}
	svc, clock := newTestService(plans, &stubProgress{}, &stubScores{}, &stubDetections{})

	first, err := svc.Current(context.Background(), userID)
	require.NoError(t, err)
	require.True(t, first.IsNew)
	require.True(t, first.Persisted)
	require.Equal(t, 7, first.DaysRemaining)
	require.Equal(t, userID, first.Plan.UserID)
	require.True(t, first.Plan.IsActive)

	*clock = clock.Add(2*24*time.Hour + time.Hour)
	second, err := svc.Current(context.Background(), userID)
	require.NoError(t, err)
	require.False(t, second.IsNew)
	require.Equal(t, 5, second.DaysRemaining)
	require.Equal(t, first.Plan, second.Plan)

	third, err := svc.Current(context.Background(), userID)
	require.NoError(t, err)
	require.Equal(t, second, third)
	require.Equal(t, 1, plans.activations)
}

func TestServiceCurrentRegeneratesStalePlan(t *testing.T) {
	userID := uuid.New()
	plans := &stubPlans{}
	svc, clock := newTestService(plans, &stubProgress{}, &stubScores{}, &stubDetections{})

	first, err := svc.Current(context.Background(), userID)
	require.NoError(t, err)

	*clock = clock.Add(7 * 24 * time.Hour)
	second, err := svc.Current(context.Background(), userID)
	require.NoError(t, err)
	require.True(t, second.IsNew)
	require.Equal(t, 7, second.DaysRemaining)
	require.NotEqual(t, first.Plan.ID, second.Plan.ID)
	require.Equal(t, 2, plans.activations)
}

func TestServiceCurrentUsesLatestScoreAndRecentDetections(t *testing.T) {
	scores := &stubScores{latest: &health.CognitiveScoreSnapshot{
		Score:          62,
		Status:         health.StatusModerate,
		AreasOfConcern: []string{"speech patterns"},
	}}
	detections := &stubDetections{results: []health.DetectionResult{
		{DetectionType: health.DetectionSpeech, ConfidenceScore: 0.3},
	}}
	svc, clock := newTestService(&stubPlans{}, &stubProgress{}, scores, detections)

	resp, err := svc.Current(context.Background(), uuid.New())
	require.NoError(t, err)
	_, ok := resp.Plan.Activity(ActivityMemoryTraining)
	require.True(t, ok)
	_, ok = resp.Plan.Activity(ActivityWordRetrieval)
	require.True(t, ok)
	require.Contains(t, resp.Plan.Description, "speech patterns")

	require.Len(t, detections.filters, 1)
	require.Equal(t, clock.AddDate(0, 0, -7), detections.filters[0].From)
}

func TestServiceCurrentReturnsPlanWhenSaveFails(t *testing.T) {
	svc, _ := newTestService(&stubPlans{activateErr: errors.New("write failed")}, &stubProgress{}, &stubScores{}, &stubDetections{})

	resp, err := svc.Current(context.Background(), uuid.New())
	require.NoError(t, err)
	require.True(t, resp.IsNew)
	require.False(t, resp.Persisted)
	require.NotEqual(t, uuid.Nil, resp.Plan.ID)
}

func TestServiceRecordProgress(t *testing.T) {
	userID := uuid.New()
	progress := &stubProgress{}
	svc, _ := newTestService(&stubPlans{}, progress, &stubScores{}, &stubDetections{})

	_, err := svc.RecordProgress(context.Background(), userID, ProgressInput{ActivityID: ActivityCheckIn})
	require.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))

	plan, err := svc.Current(context.Background(), userID)
	require.NoError(t, err)

	_, err = svc.RecordProgress(context.Background(), userID, ProgressInput{ActivityID: ActivitySocialEngagement})
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))

	entry, err := svc.RecordProgress(context.Background(), userID, ProgressInput{ActivityID: ActivityCheckIn, Notes: " felt good "})
	require.NoError(t, err)
	require.True(t, entry.Completed)
	require.Equal(t, "felt good", entry.Notes)
	require.Equal(t, plan.Plan.ID, entry.PlanID)

	listed, err := svc.Progress(context.Background(), userID)
	require.NoError(t, err)
	require.Equal(t, plan.Plan.ID, listed.PlanID)
	require.Len(t, listed.Entries, 1)
}

func newTestService(plans *stubPlans, progress *stubProgress, scores *stubScores, detections *stubDetections) (*service, *time.Time) {
	now := time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC)
	clock := &now
	return &service{
		plans:         plans,
		progress:      progress,
		scores:        scores,
		detections:    detections,
		freshnessDays: DefaultFreshnessDays,
		logger:        slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:           func() time.Time { return *clock },
	}, clock
}

type stubPlans struct {
	active      *health.WellnessPlan
	activations int
	activateErr error
}

func (s *stubPlans) Active(ctx context.Context, userID uuid.UUID) (health.WellnessPlan, bool, error) {
	if s.active == nil {
		return health.WellnessPlan{}, false, nil
	}
	return *s.active, true, nil
}

func (s *stubPlans) Activate(ctx context.Context, plan health.WellnessPlan) (health.WellnessPlan, error) {
	if s.activateErr != nil {
		return health.WellnessPlan{}, s.activateErr
	}
	s.activations++
	s.active = &plan
	return plan, nil
}

type stubProgress struct {
	entries []health.ActivityProgress
}

func (s *stubProgress) Append(ctx context.Context, p health.ActivityProgress) (health.ActivityProgress, error) {
	s.entries = append(s.entries, p)
	return p, nil
}

func (s *stubProgress) ListByPlan(ctx context.Context, userID, planID uuid.UUID) ([]health.ActivityProgress, error) {
	var out []health.ActivityProgress
	for _, e := range s.entries {
		if e.UserID == userID && e.PlanID == planID {
			out = append(out, e)
		}
	}
	return out, nil
}

type stubScores struct {
	latest *health.CognitiveScoreSnapshot
}

func (s *stubScores) Insert(ctx context.Context, snap health.CognitiveScoreSnapshot) (health.CognitiveScoreSnapshot, error) {
	return snap, nil
}

func (s *stubScores) Query(ctx context.Context, f health.Filter) ([]health.CognitiveScoreSnapshot, error) {
	return nil, nil
}

func (s *stubScores) Latest(ctx context.Context, userID uuid.UUID) (health.CognitiveScoreSnapshot, bool, error) {
	if s.latest == nil {
		return health.CognitiveScoreSnapshot{}, false, nil
	}
	return *s.latest, true, nil
}

type stubDetections struct {
	results []health.DetectionResult
	filters []health.Filter
}

func (s *stubDetections) Insert(ctx context.Context, r health.DetectionResult) (health.DetectionResult, error) {
	return r, nil
}

func (s *stubDetections) Query(ctx context.Context, f health.Filter) ([]health.DetectionResult, error) {
	s.filters = append(s.filters, f)
	return s.results, nil
}
