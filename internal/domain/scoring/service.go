package scoring

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/yanqian/cogniwell/internal/domain/health"
	"github.com/yanqian/cogniwell/internal/domain/trend"
	apperrors "github.com/yanqian/cogniwell/pkg/errors"
	"github.com/yanqian/cogniwell/pkg/metrics"
)

// Response wraps a freshly computed score with its persistence outcome.
type Response struct {
	Result
	SnapshotID *uuid.UUID `json:"snapshotId,omitempty"`
	Persisted  bool       `json:"persisted"`
}

// HistoryResponse lists stored snapshots of a window in ascending order.
type HistoryResponse struct {
	Window    trend.Window                    `json:"window"`
	Snapshots []health.CognitiveScoreSnapshot `json:"snapshots"`
}

// Service computes and reads composite cognitive scores.
type Service interface {
	Compute(ctx context.Context, userID uuid.UUID) (Response, error)
	Latest(ctx context.Context, userID uuid.UUID) (health.CognitiveScoreSnapshot, error)
	History(ctx context.Context, userID uuid.UUID, window string) (HistoryResponse, error)
}

type service struct {
	detections health.DetectionRepository
	scores     health.ScoreRepository
	recorder   *metrics.Recorder
	logger     *slog.Logger
	now        func() time.Time
}

// NewService constructs the scoring service.
func NewService(detections health.DetectionRepository, scores health.ScoreRepository, recorder *metrics.Recorder, logger *slog.Logger) Service {
	return &service{
		detections: detections,
		scores:     scores,
		recorder:   recorder,
		logger:     logger.With("component", "scoring.service"),
		now:        time.Now,
	}
}

// Compute scores the latest results and saves a snapshot. A failed save is logged and
// reported through Persisted; the computed score is still returned.
func (s *service) Compute(ctx context.Context, userID uuid.UUID) (Response, error) {
	channels := make(map[health.DetectionType][]health.DetectionResult, len(health.DetectionTypes))
	for _, channel := range health.DetectionTypes {
		results, err := s.detections.Query(ctx, health.Filter{
			UserID:        userID,
			DetectionType: channel,
			Limit:         MaxResultsPerChannel,
			Order:         health.Descending,
		})
		if err != nil {
			return Response{}, apperrors.Upstream("failed to load "+string(channel)+" results", err)
		}
		channels[channel] = results
	}

	now := s.now()
	result, err := Calculate(
		channels[health.DetectionFacial],
		channels[health.DetectionSpeech],
		channels[health.DetectionBehavioral],
		now,
	)
	if err != nil {
		return Response{}, err
	}
	s.recorder.ScoreComputed(string(result.Status))

	resp := Response{Result: result}
	saved, err := s.scores.Insert(ctx, health.CognitiveScoreSnapshot{
		ID:              uuid.New(),
		UserID:          userID,
		Score:           result.Score,
		Status:          result.Status,
		AreasOfConcern:  result.AreasOfConcern,
		ComponentScores: result.ComponentScores,
		CreatedAt:       now,
	})
	if err != nil {
		s.recorder.PersistFailed("score_snapshot")
		s.logger.Warn("score snapshot save failed", "user_id", userID, "error", err)
		return resp, nil
	}
	resp.SnapshotID = &saved.ID
	resp.Persisted = true
	return resp, nil
}

func (s *service) Latest(ctx context.Context, userID uuid.UUID) (health.CognitiveScoreSnapshot, error) {
	snap, found, err := s.scores.Latest(ctx, userID)
	if err != nil {
		return health.CognitiveScoreSnapshot{}, apperrors.Upstream("failed to load latest score", err)
	}
	if !found {
		return health.CognitiveScoreSnapshot{}, apperrors.Wrap(apperrors.CodeNotFound, "no cognitive score has been computed yet", nil)
	}
	return snap, nil
}

func (s *service) History(ctx context.Context, userID uuid.UUID, rawWindow string) (HistoryResponse, error) {
	window, err := trend.ParseWindow(rawWindow)
	if err != nil {
		return HistoryResponse{}, err
	}
	now := s.now()
	snaps, err := s.scores.Query(ctx, health.Filter{
		UserID: userID,
		From:   window.Since(now),
		To:     now,
		Order:  health.Ascending,
	})
	if err != nil {
		return HistoryResponse{}, apperrors.Upstream("failed to load score history", err)
	}
	if snaps == nil {
		snaps = []health.CognitiveScoreSnapshot{}
	}
	return HistoryResponse{Window: window, Snapshots: snaps}, nil
}
