package trend

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yanqian/cogniwell/internal/domain/health"
	apperrors "github.com/yanqian/cogniwell/pkg/errors"
)

// SeriesName selects which scalar series a trend is computed over.
type SeriesName string

const (
	// SeriesCognitiveScore is the composite score history.
	SeriesCognitiveScore SeriesName = "cognitive_score"
	SeriesFacial         SeriesName = SeriesName(health.DetectionFacial)
	SeriesSpeech         SeriesName = SeriesName(health.DetectionSpeech)
	SeriesBehavioral     SeriesName = SeriesName(health.DetectionBehavioral)
)

// Request asks for the trend of one series.
type Request struct {
	Series string `form:"series" json:"series"`
	Window string `form:"window" json:"window"`
}

// Response carries the analyzed window and the points used.
type Response struct {
	Series SeriesName `json:"series"`
	Window Window     `json:"window"`
	From   time.Time  `json:"from"`
	To     time.Time  `json:"to"`
	Result
	Points []Point `json:"points"`
}

// Service runs the trend analyzer over stored series.
type Service interface {
	Analyze(ctx context.Context, userID uuid.UUID, req Request) (Response, error)
}

type service struct {
	scores     health.ScoreRepository
	detections health.DetectionRepository
	logger     *slog.Logger
	now        func() time.Time
}

// NewService constructs the trend service.
func NewService(scores health.ScoreRepository, detections health.DetectionRepository, logger *slog.Logger) Service {
	return &service{
		scores:     scores,
		detections: detections,
		logger:     logger.With("component", "trend.service"),
		now:        time.Now,
	}
}

func (s *service) Analyze(ctx context.Context, userID uuid.UUID, req Request) (Response, error) {
	series, err := parseSeries(req.Series)
	if err != nil {
		return Response{}, err
	}
	window, err := ParseWindow(req.Window)
	if err != nil {
		return Response{}, err
	}
	now := s.now()
	filter := health.Filter{UserID: userID, From: window.Since(now), To: now, Order: health.Ascending}

	points, err := s.loadPoints(ctx, series, filter)
	if err != nil {
		return Response{}, err
	}
	result, err := Analyze(points)
	if err != nil {
		return Response{}, err
	}
	s.logger.Debug("trend analyzed", "series", series, "window", window, "points", len(points), "direction", result.Direction)
	return Response{
		Series: series,
		Window: window,
		From:   filter.From,
		To:     filter.To,
		Result: result,
		Points: points,
	}, nil
}

func (s *service) loadPoints(ctx context.Context, series SeriesName, filter health.Filter) ([]Point, error) {
	if series == SeriesCognitiveScore {
		snapshots, err := s.scores.Query(ctx, filter)
		if err != nil {
			return nil, apperrors.Upstream("failed to load score history", err)
		}
		points := make([]Point, 0, len(snapshots))
		for _, snap := range snapshots {
			points = append(points, Point{Timestamp: snap.CreatedAt, Score: float64(snap.Score)})
		}
		return points, nil
	}

	filter.DetectionType = health.DetectionType(series)
	results, err := s.detections.Query(ctx, filter)
	if err != nil {
		return nil, apperrors.Upstream("failed to load detection history", err)
	}
	points := make([]Point, 0, len(results))
	for _, r := range results {
		points = append(points, Point{Timestamp: r.CreatedAt, Score: r.ConfidenceScore * 100})
	}
	return points, nil
}

func parseSeries(raw string) (SeriesName, error) {
	switch SeriesName(strings.ToLower(strings.TrimSpace(raw))) {
	case "", SeriesCognitiveScore:
		return SeriesCognitiveScore, nil
	case SeriesFacial:
		return SeriesFacial, nil
	case SeriesSpeech:
		return SeriesSpeech, nil
	case SeriesBehavioral:
		return SeriesBehavioral, nil
	default:
		return "", apperrors.Invalid("series must be one of cognitive_score, facial, speech, behavioral")
	}
}
