package healthmetrics

import (
	"context"
	"encoding/json"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yanqian/cogniwell/internal/domain/health"
	"github.com/yanqian/cogniwell/internal/domain/trend"
	apperrors "github.com/yanqian/cogniwell/pkg/errors"
	"github.com/yanqian/cogniwell/pkg/metrics"
	"github.com/yanqian/cogniwell/pkg/util"
)

// ReadingInput is one wearable reading submitted by a client.
type ReadingInput struct {
	DeviceType string          `json:"deviceType"`
	DataType   string          `json:"dataType" binding:"required"`
	Value      *float64        `json:"value" binding:"required"`
	Unit       string          `json:"unit"`
	Timestamp  *time.Time      `json:"timestamp"`
	Metadata   json.RawMessage `json:"metadata"`
}

// IngestResponse reports the stored reading and the resulting day record.
type IngestResponse struct {
	Reading        health.WearableReading     `json:"reading"`
	Metrics        *health.DailyHealthMetrics `json:"metrics,omitempty"`
	MetricsUpdated bool                       `json:"metricsUpdated"`
}

// TodayResponse carries the current day record, nil when nothing was recorded today.
type TodayResponse struct {
	Date    time.Time                  `json:"date"`
	Metrics *health.DailyHealthMetrics `json:"metrics"`
}

// ReadingsQuery filters stored readings.
type ReadingsQuery struct {
	DataType string `form:"dataType"`
	Window   string `form:"window"`
}

// ReadingsResponse lists readings with their display units resolved.
type ReadingsResponse struct {
	Window   trend.Window             `json:"window"`
	Readings []health.WearableReading `json:"readings"`
}

// Service ingests wearable readings and maintains the daily metrics record.
type Service interface {
	Ingest(ctx context.Context, userID uuid.UUID, input ReadingInput) (IngestResponse, error)
	Today(ctx context.Context, userID uuid.UUID) (TodayResponse, error)
	Readings(ctx context.Context, userID uuid.UUID, query ReadingsQuery) (ReadingsResponse, error)
}

type service struct {
	readings health.WearableRepository
	daily    health.DailyMetricsRepository
	location *time.Location
	recorder *metrics.Recorder
	logger   *slog.Logger
	now      func() time.Time
}

// NewService constructs the health metrics service. Calendar days are evaluated in loc.
func NewService(readings health.WearableRepository, daily health.DailyMetricsRepository, loc *time.Location, recorder *metrics.Recorder, logger *slog.Logger) Service {
	if loc == nil {
		loc = time.UTC
	}
	return &service{
		readings: readings,
		daily:    daily,
		location: loc,
		recorder: recorder,
		logger:   logger.With("component", "healthmetrics.service"),
		now:      time.Now,
	}
}

// Ingest stores the reading, then folds it into today's record. The day record update is a
// read-modify-write where the last writer wins; a failed update is logged and reported
// through MetricsUpdated.
func (s *service) Ingest(ctx context.Context, userID uuid.UUID, input ReadingInput) (IngestResponse, error) {
	reading, err := s.validate(userID, input)
	if err != nil {
		return IngestResponse{}, err
	}
	stored, err := s.readings.Insert(ctx, reading)
	if err != nil {
		return IngestResponse{}, apperrors.Upstream("failed to store reading", err)
	}
	s.recorder.WearableIngested(string(stored.DataType))
	resp := IngestResponse{Reading: stored}

	current, found, err := s.daily.Latest(ctx, userID)
	if err != nil {
		s.recorder.PersistFailed("daily_metrics")
		s.logger.Warn("daily metrics load failed", "user_id", userID, "error", err)
		return resp, nil
	}
	var currentPtr *health.DailyHealthMetrics
	if found {
		currentPtr = &current
	}
	now := s.now()
	next, changed := Update(currentPtr, stored.DataType, stored.Value, now, s.location)
	if !changed {
		if found && util.OnDate(current.Date, now, s.location) {
			resp.Metrics = &current
		}
		return resp, nil
	}
	if next.ID == uuid.Nil {
		next.ID = uuid.New()
	}
	next.UserID = userID
	saved, err := s.daily.Save(ctx, next)
	if err != nil {
		s.recorder.PersistFailed("daily_metrics")
		s.logger.Warn("daily metrics save failed", "user_id", userID, "error", err)
		return resp, nil
	}
	resp.Metrics = &saved
	resp.MetricsUpdated = true
	return resp, nil
}

func (s *service) validate(userID uuid.UUID, input ReadingInput) (health.WearableReading, error) {
	dataType := health.DataType(strings.ToLower(strings.TrimSpace(input.DataType)))
	if !dataType.Valid() {
		return health.WearableReading{}, apperrors.Invalid("unsupported dataType " + input.DataType)
	}
	if input.Value == nil {
		return health.WearableReading{}, apperrors.Invalid("value is required")
	}
	value := *input.Value
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return health.WearableReading{}, apperrors.Invalid("value must be a finite number")
	}
	if len(input.Metadata) > 0 && !json.Valid(input.Metadata) {
		return health.WearableReading{}, apperrors.Invalid("metadata must be valid JSON")
	}
	ts := s.now()
	if input.Timestamp != nil && !input.Timestamp.IsZero() {
		ts = *input.Timestamp
	}
	deviceType := strings.TrimSpace(input.DeviceType)
	if deviceType == "" {
		deviceType = "unknown"
	}
	return health.WearableReading{
		ID:         uuid.New(),
		UserID:     userID,
		DeviceType: deviceType,
		DataType:   dataType,
		Timestamp:  ts,
		Value:      value,
		Unit:       strings.TrimSpace(input.Unit),
		Metadata:   input.Metadata,
	}, nil
}

func (s *service) Today(ctx context.Context, userID uuid.UUID) (TodayResponse, error) {
	now := s.now()
	resp := TodayResponse{Date: util.StartOfDay(now, s.location)}
	current, found, err := s.daily.Latest(ctx, userID)
	if err != nil {
		return TodayResponse{}, apperrors.Upstream("failed to load daily metrics", err)
	}
	if found && util.OnDate(current.Date, now, s.location) {
		resp.Metrics = &current
	}
	return resp, nil
}

func (s *service) Readings(ctx context.Context, userID uuid.UUID, query ReadingsQuery) (ReadingsResponse, error) {
	window, err := trend.ParseWindow(query.Window)
	if err != nil {
		return ReadingsResponse{}, err
	}
	var dataType health.DataType
	if raw := strings.TrimSpace(query.DataType); raw != "" {
		dataType = health.DataType(strings.ToLower(raw))
		if !dataType.Valid() {
			return ReadingsResponse{}, apperrors.Invalid("unsupported dataType " + raw)
		}
	}
	now := s.now()
	readings, err := s.readings.Query(ctx, health.Filter{
		UserID:   userID,
		DataType: dataType,
		From:     window.Since(now),
		To:       now,
		Order:    health.Descending,
	})
	if err != nil {
		return ReadingsResponse{}, apperrors.Upstream("failed to load readings", err)
	}
	out := make([]health.WearableReading, 0, len(readings))
	for _, r := range readings {
		r.Unit = r.ResolvedUnit()
		out = append(out, r)
	}
	return ReadingsResponse{Window: window, Readings: out}, nil
}
