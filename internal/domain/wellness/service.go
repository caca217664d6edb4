package wellness

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yanqian/cogniwell/internal/domain/health"
	apperrors "github.com/yanqian/cogniwell/pkg/errors"
	"github.com/yanqian/cogniwell/pkg/metrics"
)

// DefaultFreshnessDays is how long a generated plan stays current.
const DefaultFreshnessDays = 7

// PlanResponse is the active plan together with its freshness.
type PlanResponse struct {
	Plan          health.WellnessPlan `json:"plan"`
	IsNew         bool                `json:"isNew"`
	DaysRemaining int                 `json:"daysRemaining"`
	Persisted     bool                `json:"persisted"`
}

// ProgressInput records completion of one plan activity.
type ProgressInput struct {
	ActivityID string `json:"activityId" binding:"required"`
	Completed  *bool  `json:"completed"`
	Notes      string `json:"notes"`
}

// ProgressResponse lists progress entries of the active plan.
type ProgressResponse struct {
	PlanID  uuid.UUID                 `json:"planId"`
	Entries []health.ActivityProgress `json:"entries"`
}

// Service serves wellness plans and activity progress.
type Service interface {
	Current(ctx context.Context, userID uuid.UUID) (PlanResponse, error)
	Regenerate(ctx context.Context, userID uuid.UUID) (PlanResponse, error)
	RecordProgress(ctx context.Context, userID uuid.UUID, input ProgressInput) (health.ActivityProgress, error)
	Progress(ctx context.Context, userID uuid.UUID) (ProgressResponse, error)
}

// Dependencies groups the repositories the plan service reads and writes.
type Dependencies struct {
	Plans      health.PlanRepository
	Progress   health.ProgressRepository
	Scores     health.ScoreRepository
	Detections health.DetectionRepository
}

type service struct {
	plans         health.PlanRepository
	progress      health.ProgressRepository
	scores        health.ScoreRepository
	detections    health.DetectionRepository
	freshnessDays int
	recorder      *metrics.Recorder
	logger        *slog.Logger
	now           func() time.Time
}

// NewService constructs the wellness plan service.
func NewService(deps Dependencies, freshnessDays int, recorder *metrics.Recorder, logger *slog.Logger) Service {
	if freshnessDays <= 0 {
		freshnessDays = DefaultFreshnessDays
	}
	return &service{
		plans:         deps.Plans,
		progress:      deps.Progress,
		scores:        deps.Scores,
		detections:    deps.Detections,
		freshnessDays: freshnessDays,
		recorder:      recorder,
		logger:        logger.With("component", "wellness.service"),
		now:           time.Now,
	}
}

// Current returns the active plan while it is fresh and generates a new one otherwise.
func (s *service) Current(ctx context.Context, userID uuid.UUID) (PlanResponse, error) {
	plan, found, err := s.plans.Active(ctx, userID)
	if err != nil {
		return PlanResponse{}, apperrors.Upstream("failed to load active plan", err)
	}
	now := s.now()
	if found {
		age := ageInDays(plan.CreatedAt, now)
		if age < s.freshnessDays {
			s.recorder.PlanServed(false)
			return PlanResponse{
				Plan:          plan,
				IsNew:         false,
				DaysRemaining: s.freshnessDays - age,
				Persisted:     true,
			}, nil
		}
	}
	return s.generate(ctx, userID, now)
}

// Regenerate replaces the active plan regardless of its age.
func (s *service) Regenerate(ctx context.Context, userID uuid.UUID) (PlanResponse, error) {
	return s.generate(ctx, userID, s.now())
}

func (s *service) generate(ctx context.Context, userID uuid.UUID, now time.Time) (PlanResponse, error) {
	score := DefaultScore()
	snap, found, err := s.scores.Latest(ctx, userID)
	if err != nil {
		return PlanResponse{}, apperrors.Upstream("failed to load latest score", err)
	}
	if found {
		score = ScoreInput{Score: snap.Score, Status: snap.Status, AreasOfConcern: snap.AreasOfConcern}
	}

	recent, err := s.detections.Query(ctx, health.Filter{
		UserID: userID,
		From:   now.AddDate(0, 0, -DefaultFreshnessDays),
		To:     now,
		Order:  health.Descending,
	})
	if err != nil {
		return PlanResponse{}, apperrors.Upstream("failed to load recent detections", err)
	}

	plan := assign(Synthesize(score, recent, now), userID)
	s.recorder.PlanServed(true)
	resp := PlanResponse{Plan: plan, IsNew: true, DaysRemaining: s.freshnessDays}

	saved, err := s.plans.Activate(ctx, plan)
	if err != nil {
		s.recorder.PersistFailed("wellness_plan")
		s.logger.Warn("wellness plan save failed", "user_id", userID, "error", err)
		return resp, nil
	}
	s.logger.Info("wellness plan generated", "user_id", userID, "plan_id", saved.ID, "activities", len(saved.Activities))
	resp.Plan = saved
	resp.Persisted = true
	return resp, nil
}

func (s *service) RecordProgress(ctx context.Context, userID uuid.UUID, input ProgressInput) (health.ActivityProgress, error) {
	activityID := strings.TrimSpace(input.ActivityID)
	if activityID == "" {
		return health.ActivityProgress{}, apperrors.Invalid("activityId cannot be empty")
	}
	plan, err := s.activePlan(ctx, userID)
	if err != nil {
		return health.ActivityProgress{}, err
	}
	if _, ok := plan.Activity(activityID); !ok {
		return health.ActivityProgress{}, apperrors.Invalid("activity " + activityID + " is not part of the active plan")
	}

	completed := true
	if input.Completed != nil {
		completed = *input.Completed
	}
	entry, err := s.progress.Append(ctx, health.ActivityProgress{
		ID:          uuid.New(),
		UserID:      userID,
		PlanID:      plan.ID,
		ActivityID:  activityID,
		Completed:   completed,
		Notes:       strings.TrimSpace(input.Notes),
		CompletedAt: s.now(),
	})
	if err != nil {
		return health.ActivityProgress{}, apperrors.Upstream("failed to record progress", err)
	}
	return entry, nil
}

func (s *service) Progress(ctx context.Context, userID uuid.UUID) (ProgressResponse, error) {
	plan, err := s.activePlan(ctx, userID)
	if err != nil {
		return ProgressResponse{}, err
	}
	entries, err := s.progress.ListByPlan(ctx, userID, plan.ID)
	if err != nil {
		return ProgressResponse{}, apperrors.Upstream("failed to load progress", err)
	}
	if entries == nil {
		entries = []health.ActivityProgress{}
	}
	return ProgressResponse{PlanID: plan.ID, Entries: entries}, nil
}

func (s *service) activePlan(ctx context.Context, userID uuid.UUID) (health.WellnessPlan, error) {
	plan, found, err := s.plans.Active(ctx, userID)
	if err != nil {
		return health.WellnessPlan{}, apperrors.Upstream("failed to load active plan", err)
	}
	if !found {
		return health.WellnessPlan{}, apperrors.Wrap(apperrors.CodeNotFound, "no active wellness plan", nil)
	}
	return plan, nil
}

func ageInDays(createdAt, now time.Time) int {
	age := now.Sub(createdAt)
	if age < 0 {
		return 0
	}
	return int(age / (24 * time.Hour))
}
