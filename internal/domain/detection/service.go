package detection

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/yanqian/cogniwell/internal/domain/health"
	"github.com/yanqian/cogniwell/internal/domain/trend"
	apperrors "github.com/yanqian/cogniwell/pkg/errors"
	"github.com/yanqian/cogniwell/pkg/metrics"
)

// DefaultMaxSampleBytes caps decoded raw samples.
const DefaultMaxSampleBytes = 5 * 1024 * 1024

// SubmitInput is a detection result reported by a client.
type SubmitInput struct {
	DetectionType   string                `json:"detectionType" binding:"required"`
	ConfidenceScore *float64              `json:"confidenceScore" binding:"required"`
	RiskIndicators  health.RiskIndicators `json:"riskIndicators"`
	RawData         json.RawMessage       `json:"rawData"`
	Sample          *SampleInput          `json:"sample"`
}

// SampleInput carries an optional base64 encoded raw capture.
type SampleInput struct {
	Data     string `json:"data"`
	MimeType string `json:"mimeType"`
}

// ListQuery filters stored results.
type ListQuery struct {
	DetectionType string `form:"type"`
	Window        string `form:"window"`
	Limit         int    `form:"limit"`
}

// ListResponse returns results newest first.
type ListResponse struct {
	Window  trend.Window             `json:"window"`
	Results []health.DetectionResult `json:"results"`
}

// Service records and lists detection results.
type Service interface {
	Submit(ctx context.Context, userID uuid.UUID, input SubmitInput) (health.DetectionResult, error)
	List(ctx context.Context, userID uuid.UUID, query ListQuery) (ListResponse, error)
}

type service struct {
	repo           health.DetectionRepository
	storage        ObjectStorage
	maxSampleBytes int
	recorder       *metrics.Recorder
	logger         *slog.Logger
	now            func() time.Time
}

// NewService constructs the detection service. storage may be nil when samples are disabled.
func NewService(repo health.DetectionRepository, storage ObjectStorage, maxSampleBytes int, recorder *metrics.Recorder, logger *slog.Logger) Service {
	if maxSampleBytes <= 0 {
		maxSampleBytes = DefaultMaxSampleBytes
	}
	return &service{
		repo:           repo,
		storage:        storage,
		maxSampleBytes: maxSampleBytes,
		recorder:       recorder,
		logger:         logger.With("component", "detection.service"),
		now:            time.Now,
	}
}

func (s *service) Submit(ctx context.Context, userID uuid.UUID, input SubmitInput) (health.DetectionResult, error) {
	if input.ConfidenceScore == nil {
		return health.DetectionResult{}, apperrors.Invalid("confidenceScore is required")
	}
	result := health.DetectionResult{
		ID:              uuid.New(),
		UserID:          userID,
		DetectionType:   health.DetectionType(strings.ToLower(strings.TrimSpace(input.DetectionType))),
		ConfidenceScore: *input.ConfidenceScore,
		RiskIndicators:  input.RiskIndicators,
		CreatedAt:       s.now(),
	}
	if err := result.Validate(); err != nil {
		return health.DetectionResult{}, err
	}
	if result.RiskIndicators == nil {
		result.RiskIndicators = health.RiskIndicators{}
	}
	for _, ind := range result.RiskIndicators {
		if !ind.Name.Known() {
			s.logger.Debug("unknown risk indicator kept", "indicator", ind.Name, "detection_type", result.DetectionType)
		}
	}

	raw, err := decodeRawData(input.RawData)
	if err != nil {
		return health.DetectionResult{}, err
	}

	var uploaded *StoredObject
	if input.Sample != nil && input.Sample.Data != "" {
		obj, err := s.uploadSample(ctx, result, *input.Sample)
		if err != nil {
			return health.DetectionResult{}, err
		}
		uploaded = &obj
		raw["sampleKey"] = obj.Key
		raw["sampleSize"] = obj.Size
		raw["sampleMimeType"] = obj.MimeType
	}
	if len(raw) > 0 {
		encoded, err := json.Marshal(raw)
		if err != nil {
			return health.DetectionResult{}, apperrors.Invalid("rawData cannot be encoded")
		}
		result.RawData = encoded
	}

	stored, err := s.repo.Insert(ctx, result)
	if err != nil {
		if uploaded != nil {
			if delErr := s.storage.Delete(ctx, uploaded.Key); delErr != nil {
				s.logger.Warn("orphaned sample cleanup failed", "key", uploaded.Key, "error", delErr)
			}
		}
		return health.DetectionResult{}, apperrors.Upstream("failed to store detection result", err)
	}
	s.recorder.DetectionSubmitted(string(stored.DetectionType))
	s.logger.Info("detection stored",
		"user_id", userID,
		"detection_type", stored.DetectionType,
		"indicators", len(stored.RiskIndicators),
		"sample", uploaded != nil,
	)
	return stored, nil
}

func (s *service) uploadSample(ctx context.Context, result health.DetectionResult, sample SampleInput) (StoredObject, error) {
	if s.storage == nil {
		return StoredObject{}, apperrors.Invalid("sample uploads are disabled")
	}
	data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(sample.Data))
	if err != nil {
		return StoredObject{}, apperrors.Invalid("sample data must be base64 encoded")
	}
	if len(data) == 0 {
		return StoredObject{}, apperrors.Invalid("sample data cannot be empty")
	}
	if len(data) > s.maxSampleBytes {
		return StoredObject{}, apperrors.Invalid(fmt.Sprintf("sample exceeds %d bytes", s.maxSampleBytes))
	}
	mimeType := strings.TrimSpace(sample.MimeType)
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	key := fmt.Sprintf("samples/%s/%s/%s", result.UserID, result.DetectionType, result.ID)
	obj, err := s.storage.Put(ctx, key, data, mimeType)
	if err != nil {
		return StoredObject{}, apperrors.Upstream("failed to store sample", err)
	}
	return obj, nil
}

func decodeRawData(raw json.RawMessage) (map[string]any, error) {
	out := map[string]any{}
	trimmed := strings.TrimSpace(string(raw))
	if trimmed == "" || trimmed == "null" {
		return out, nil
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, apperrors.Invalid("rawData must be a JSON object")
	}
	return out, nil
}

func (s *service) List(ctx context.Context, userID uuid.UUID, query ListQuery) (ListResponse, error) {
	window, err := trend.ParseWindow(query.Window)
	if err != nil {
		return ListResponse{}, err
	}
	var detectionType health.DetectionType
	if raw := strings.TrimSpace(query.DetectionType); raw != "" {
		detectionType = health.DetectionType(strings.ToLower(raw))
		if !detectionType.Valid() {
			return ListResponse{}, apperrors.Invalid("type must be one of facial, speech, behavioral")
		}
	}
	if query.Limit < 0 {
		return ListResponse{}, apperrors.Invalid("limit cannot be negative")
	}
	now := s.now()
	results, err := s.repo.Query(ctx, health.Filter{
		UserID:        userID,
		DetectionType: detectionType,
		From:          window.Since(now),
		To:            now,
		Limit:         query.Limit,
		Order:         health.Descending,
	})
	if err != nil {
		return ListResponse{}, apperrors.Upstream("failed to load detection results", err)
	}
	if results == nil {
		results = []health.DetectionResult{}
	}
	return ListResponse{Window: window, Results: results}, nil
}
