package indicators

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yanqian/cogniwell/internal/domain/health"
	"github.com/yanqian/cogniwell/internal/domain/trend"
	apperrors "github.com/yanqian/cogniwell/pkg/errors"
)

// Query narrows the results that are aggregated.
type Query struct {
	DetectionType string `form:"type" json:"type"`
	Window        string `form:"window" json:"window"`
}

// Response lists the top indicators of a window.
type Response struct {
	DetectionType health.DetectionType `json:"detectionType,omitempty"`
	Window        trend.Window         `json:"window"`
	TotalResults  int                  `json:"totalResults"`
	Indicators    []RankedIndicator    `json:"indicators"`
}

// Service ranks the risk indicators found in stored detection results.
type Service interface {
	Top(ctx context.Context, userID uuid.UUID, q Query) (Response, error)
}

type service struct {
	detections health.DetectionRepository
	logger     *slog.Logger
	now        func() time.Time
}

// NewService constructs the indicator service.
func NewService(detections health.DetectionRepository, logger *slog.Logger) Service {
	return &service{
		detections: detections,
		logger:     logger.With("component", "indicators.service"),
		now:        time.Now,
	}
}

func (s *service) Top(ctx context.Context, userID uuid.UUID, q Query) (Response, error) {
	window, err := trend.ParseWindow(q.Window)
	if err != nil {
		return Response{}, err
	}
	detectionType := health.DetectionType(strings.ToLower(strings.TrimSpace(q.DetectionType)))
	if detectionType != "" && !detectionType.Valid() {
		return Response{}, apperrors.Invalid("type must be one of facial, speech, behavioral")
	}
	now := s.now()
	results, err := s.detections.Query(ctx, health.Filter{
		UserID:        userID,
		DetectionType: detectionType,
		From:          window.Since(now),
		To:            now,
		Order:         health.Ascending,
	})
	if err != nil {
		return Response{}, apperrors.Upstream("failed to load detection results", err)
	}
	return Response{
		DetectionType: detectionType,
		Window:        window,
		TotalResults:  len(results),
		Indicators:    Aggregate(results),
	}, nil
}
