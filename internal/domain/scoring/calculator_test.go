package scoring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/cogniwell/internal/domain/health"
	apperrors "github.com/yanqian/cogniwell/pkg/errors"
)

var computedAt = time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)

func results(channel health.DetectionType, confidences ...float64) []health.DetectionResult {
	out := make([]health.DetectionResult, len(confidences))
	for i, c := range confidences {
		out[i] = health.DetectionResult{DetectionType: channel, ConfidenceScore: c}
	}
	return out
}

func TestCalculateWeightedScore(t *testing.T) {
	res, err := Calculate(
		results(health.DetectionFacial, 0.8),
		results(health.DetectionSpeech, 0.4, 0.6),
		results(health.DetectionBehavioral, 0.9),
		computedAt,
	)
	require.NoError(t, err)
	require.Equal(t, 71, res.Score)
	require.Equal(t, health.StatusHealthy, res.Status)
	require.Equal(t, []string{AreaSpeech}, res.AreasOfConcern)
	require.Equal(t, health.ComponentScores{Facial: 80, Speech: 50, Behavioral: 90}, res.ComponentScores)
	require.Equal(t, computedAt, res.LastUpdated)
}

func TestCalculateEmptyHistory(t *testing.T) {
	res, err := Calculate(nil, nil, nil, computedAt)
	require.NoError(t, err)
	require.Equal(t, 0, res.Score)
	require.Equal(t, health.StatusConcerning, res.Status)
	require.Equal(t, []string{AreaFacial, AreaSpeech, AreaBehavioral}, res.AreasOfConcern)
	require.Equal(t, health.ComponentScores{}, res.ComponentScores)
}

func TestCalculateMissingChannelIsNotRenormalized(t *testing.T) {
	res, err := Calculate(
		results(health.DetectionFacial, 1, 1),
		results(health.DetectionSpeech, 1),
		nil,
		computedAt,
	)
	require.NoError(t, err)
	require.Equal(t, 75, res.Score)
	require.Equal(t, []string{AreaBehavioral}, res.AreasOfConcern)
}

func TestCalculateBounds(t *testing.T) {
	steps := []float64{0, 0.05, 0.25, 0.5, 0.59, 0.6, 0.75, 0.995, 1}
	for _, f := range steps {
		for _, s := range steps {
			for _, b := range steps {
				res, err := Calculate(
					results(health.DetectionFacial, f),
					results(health.DetectionSpeech, s),
					results(health.DetectionBehavioral, b),
					computedAt,
				)
				require.NoError(t, err)
				require.GreaterOrEqual(t, res.Score, 0)
				require.LessOrEqual(t, res.Score, 100)
				for _, c := range []int{res.ComponentScores.Facial, res.ComponentScores.Speech, res.ComponentScores.Behavioral} {
					require.GreaterOrEqual(t, c, 0)
					require.LessOrEqual(t, c, 100)
				}
				require.Equal(t, health.StatusForScore(res.Score), res.Status)
			}
		}
	}
}

func TestCalculateConcernThresholdIsStrict(t *testing.T) {
	res, err := Calculate(
		results(health.DetectionFacial, 0.6),
		results(health.DetectionSpeech, 0.59),
		results(health.DetectionBehavioral, 0.6),
		computedAt,
	)
	require.NoError(t, err)
	require.Equal(t, []string{AreaSpeech}, res.AreasOfConcern)
}

func TestCalculateRejectsInvalidInput(t *testing.T) {
	_, err := Calculate(results(health.DetectionSpeech, 0.5), nil, nil, computedAt)
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))

	_, err = Calculate(nil, results(health.DetectionSpeech, 1.5), nil, computedAt)
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))

	_, err = Calculate(nil, nil, results(health.DetectionBehavioral, 0.1, 0.2, 0.3, 0.4, 0.5, 0.6), computedAt)
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))
}

func TestRoundHalfUp(t *testing.T) {
	require.Equal(t, 71, roundHalfUp(70.5))
	require.Equal(t, 71, roundHalfUp(70.49999999999999))
	require.Equal(t, 70, roundHalfUp(70.4999))
	require.Equal(t, 0, roundHalfUp(0))
	require.Equal(t, 100, roundHalfUp(100))
}
