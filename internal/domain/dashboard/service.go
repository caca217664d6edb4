package dashboard

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/yanqian/cogniwell/internal/domain/health"
	"github.com/yanqian/cogniwell/internal/domain/healthmetrics"
	"github.com/yanqian/cogniwell/internal/domain/indicators"
	"github.com/yanqian/cogniwell/internal/domain/scoring"
	"github.com/yanqian/cogniwell/internal/domain/trend"
	apperrors "github.com/yanqian/cogniwell/pkg/errors"
)

// Query selects the dashboard window.
type Query struct {
	Window string `form:"window"`
}

// PlanSummary is the dashboard view of the active plan.
type PlanSummary struct {
	ID            uuid.UUID `json:"id"`
	Title         string    `json:"title"`
	Activities    int       `json:"activities"`
	CreatedAt     time.Time `json:"createdAt"`
	DaysRemaining int       `json:"daysRemaining"`
}

// Response is everything the home screen renders.
type Response struct {
	Window         trend.Window                   `json:"window"`
	LatestScore    *health.CognitiveScoreSnapshot `json:"latestScore"`
	CognitiveTrend trend.Response                 `json:"cognitiveTrend"`
	TopIndicators  []indicators.RankedIndicator   `json:"topIndicators"`
	Today          *health.DailyHealthMetrics     `json:"todayMetrics"`
	Plan           *PlanSummary                   `json:"plan"`
}

// Service assembles the dashboard from the other read paths.
type Service interface {
	Get(ctx context.Context, userID uuid.UUID, q Query) (Response, error)
}

// Dependencies groups the read services the dashboard composes.
type Dependencies struct {
	Scores     scoring.Service
	Trends     trend.Service
	Indicators indicators.Service
	Metrics    healthmetrics.Service
	Plans      health.PlanRepository
}

type service struct {
	deps          Dependencies
	freshnessDays int
	logger        *slog.Logger
	now           func() time.Time
}

// NewService constructs the dashboard service. freshnessDays matches the plan service.
func NewService(deps Dependencies, freshnessDays int, logger *slog.Logger) Service {
	return &service{
		deps:          deps,
		freshnessDays: freshnessDays,
		logger:        logger.With("component", "dashboard.service"),
		now:           time.Now,
	}
}

func (s *service) Get(ctx context.Context, userID uuid.UUID, q Query) (Response, error) {
	window, err := trend.ParseWindow(q.Window)
	if err != nil {
		return Response{}, err
	}
	resp := Response{Window: window}

	latest, err := s.deps.Scores.Latest(ctx, userID)
	switch {
	case err == nil:
		resp.LatestScore = &latest
	case apperrors.IsCode(err, apperrors.CodeNotFound):
		// no score yet
	default:
		return Response{}, err
	}

	resp.CognitiveTrend, err = s.deps.Trends.Analyze(ctx, userID, trend.Request{
		Series: string(trend.SeriesCognitiveScore),
		Window: string(window),
	})
	if err != nil {
		return Response{}, err
	}

	top, err := s.deps.Indicators.Top(ctx, userID, indicators.Query{Window: string(window)})
	if err != nil {
		return Response{}, err
	}
	resp.TopIndicators = top.Indicators

	today, err := s.deps.Metrics.Today(ctx, userID)
	if err != nil {
		return Response{}, err
	}
	resp.Today = today.Metrics

	plan, found, err := s.deps.Plans.Active(ctx, userID)
	if err != nil {
		return Response{}, apperrors.Upstream("failed to load active plan", err)
	}
	if found {
		resp.Plan = s.summarize(plan)
	}
	return resp, nil
}

func (s *service) summarize(plan health.WellnessPlan) *PlanSummary {
	remaining := s.freshnessDays - int(s.now().Sub(plan.CreatedAt)/(24*time.Hour))
	if remaining < 0 {
		remaining = 0
	}
	return &PlanSummary{
		ID:            plan.ID,
		Title:         plan.Title,
		Activities:    len(plan.Activities),
		CreatedAt:     plan.CreatedAt,
		DaysRemaining: remaining,
	}
}
