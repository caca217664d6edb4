package detection

import (
	"context"
	"encoding/base64"
	"encoding/json"
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

func TestSubmitStoresResult(t *testing.T) {
	repo := &stubRepo{}
	svc := newTestService(repo, nil)
	userID := uuid.New()

	var input SubmitInput
	require.NoError(t, json.Unmarshal([]byte(`{
		"detectionType": "Speech",
		"confidenceScore": 0.42,
		"riskIndicators": {"speech_hesitation": true, "slowed_speech": 0.3, "custom_marker": false},
		"rawData": {"durationSec": 12}
	}`), &input))

	got, err := svc.Submit(context.Background(), userID, input)
	require.NoError(t, err)
	require.Equal(t, health.DetectionSpeech, got.DetectionType)
	require.Equal(t, userID, got.UserID)
	require.Len(t, got.RiskIndicators, 3)
	require.Equal(t, health.IndicatorName("custom_marker"), got.RiskIndicators[2].Name)
	require.JSONEq(t, `{"durationSec":12}`, string(got.RawData))
	require.Len(t, repo.inserted, 1)
}

func TestSubmitValidation(t *testing.T) {
	svc := newTestService(&stubRepo{}, nil)
	ctx := context.Background()

	_, err := svc.Submit(ctx, uuid.New(), SubmitInput{DetectionType: "cognitive", ConfidenceScore: score(0.5)})
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))

	_, err = svc.Submit(ctx, uuid.New(), SubmitInput{DetectionType: "facial", ConfidenceScore: score(1.2)})
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))

	_, err = svc.Submit(ctx, uuid.New(), SubmitInput{DetectionType: "facial"})
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))

	_, err = svc.Submit(ctx, uuid.New(), SubmitInput{DetectionType: "facial", ConfidenceScore: score(0.5), RawData: json.RawMessage(`[1,2]`)})
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))
}

func TestSubmitUploadsSample(t *testing.T) {
	storage := &stubStorage{}
	svc := newTestService(&stubRepo{}, storage)
	data := base64.StdEncoding.EncodeToString([]byte("RIFF....WAVE"))

	got, err := svc.Submit(context.Background(), uuid.New(), SubmitInput{
		DetectionType:   "speech",
		ConfidenceScore: score(0.3),
		Sample:          &SampleInput{Data: data, MimeType: "audio/wav"},
	})
	require.NoError(t, err)
	require.Len(t, storage.puts, 1)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(got.RawData, &raw))
	require.Equal(t, storage.puts[0], raw["sampleKey"])
	require.Equal(t, "audio/wav", raw["sampleMimeType"])
	require.EqualValues(t, 12, raw["sampleSize"])
}

func TestSubmitSampleRejectedWhenDisabledOrTooLarge(t *testing.T) {
	input := SubmitInput{
		DetectionType:   "facial",
		ConfidenceScore: score(0.3),
		Sample:          &SampleInput{Data: base64.StdEncoding.EncodeToString(make([]byte, 32))},
	}

	_, err := newTestService(&stubRepo{}, nil).Submit(context.Background(), uuid.New(), input)
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))

	svc := newTestService(&stubRepo{}, &stubStorage{})
	svc.maxSampleBytes = 16
	_, err = svc.Submit(context.Background(), uuid.New(), input)
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))
}

func TestSubmitRemovesSampleWhenInsertFails(t *testing.T) {
	storage := &stubStorage{}
	svc := newTestService(&stubRepo{err: errors.New("down")}, storage)

	_, err := svc.Submit(context.Background(), uuid.New(), SubmitInput{
		DetectionType:   "facial",
		ConfidenceScore: score(0.3),
		Sample:          &SampleInput{Data: base64.StdEncoding.EncodeToString([]byte("jpeg"))},
	})
	require.True(t, apperrors.IsCode(err, apperrors.CodeUpstreamUnavailable))
	require.Equal(t, storage.puts, storage.deletes)
}

func TestListFiltersWindowAndType(t *testing.T) {
	repo := &stubRepo{}
	svc := newTestService(repo, nil)

	resp, err := svc.List(context.Background(), uuid.New(), ListQuery{DetectionType: "facial", Window: "day", Limit: 10})
	require.NoError(t, err)
	require.NotNil(t, resp.Results)
	require.Len(t, repo.filters, 1)
	f := repo.filters[0]
	require.Equal(t, health.DetectionFacial, f.DetectionType)
	require.Equal(t, 10, f.Limit)
	require.Equal(t, health.Descending, f.Order)
	require.Equal(t, 24*time.Hour, f.To.Sub(f.From))

	_, err = svc.List(context.Background(), uuid.New(), ListQuery{Window: "decade"})
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))
}

func newTestService(repo *stubRepo, storage ObjectStorage) *service {
	now := time.Date(2024, 6, 3, 9, 0, 0, 0, time.UTC)
	return &service{
		repo:           repo,
		storage:        storage,
		maxSampleBytes: DefaultMaxSampleBytes,
		logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:            func() time.Time { return now },
	}
}

func score(v float64) *float64 { return &v }

type stubRepo struct {
	inserted []health.DetectionResult
	filters  []health.Filter
	err      error
}

func (s *stubRepo) Insert(ctx context.Context, r health.DetectionResult) (health.DetectionResult, error) {
	if s.err != nil {
		return health.DetectionResult{}, s.err
	}
	s.inserted = append(s.inserted, r)
	return r, nil
}

func (s *stubRepo) Query(ctx context.Context, f health.Filter) ([]health.DetectionResult, error) {
	s.filters = append(s.filters, f)
	return nil, nil
}

type stubStorage struct {
	puts    []string
	deletes []string
}

func (s *stubStorage) Put(ctx context.Context, key string, data []byte, mimeType string) (StoredObject, error) {
	s.puts = append(s.puts, key)
	return StoredObject{Key: key, Size: int64(len(data)), MimeType: mimeType}, nil
}

func (s *stubStorage) Delete(ctx context.Context, key string) error {
	s.deletes = append(s.deletes, key)
	return nil
}
