package scoring

import (
	"math"
	"time"

	"github.com/yanqian/cogniwell/internal/domain/health"
	apperrors "github.com/yanqian/cogniwell/pkg/errors"
)

// Channel weights. They sum to 1 and are never renormalized: a channel without recent results
// contributes zero and pulls the composite down.
const (
	WeightFacial     = 0.35
	WeightSpeech     = 0.40
	WeightBehavioral = 0.25
)

const (
	// MaxResultsPerChannel is how many recent results feed each channel average.
	MaxResultsPerChannel = 5
	// ConcernThreshold marks a channel average as an area of concern.
	ConcernThreshold = 0.6
)

// Area of concern labels, reported in channel order.
const (
	AreaFacial     = "facial expressions"
	AreaSpeech     = "speech patterns"
	AreaBehavioral = "behavioral responses"
)

// ChannelAverages are the unweighted mean confidences in [0,1].
type ChannelAverages struct {
	Facial     float64 `json:"facial"`
	Speech     float64 `json:"speech"`
	Behavioral float64 `json:"behavioral"`
}

// Result is the composite cognitive score.
type Result struct {
	Score           int                    `json:"score"`
	Status          health.ScoreStatus     `json:"status"`
	AreasOfConcern  []string               `json:"areasOfConcern"`
	ComponentScores health.ComponentScores `json:"componentScores"`
	Averages        ChannelAverages        `json:"averages"`
	LastUpdated     time.Time              `json:"lastUpdated"`
}

// Calculate combines the most recent results of each channel into one 0..100 score.
// Scores are rounded half up.
func Calculate(facial, speech, behavioral []health.DetectionResult, now time.Time) (Result, error) {
	facialAvg, err := channelAverage(health.DetectionFacial, facial)
	if err != nil {
		return Result{}, err
	}
	speechAvg, err := channelAverage(health.DetectionSpeech, speech)
	if err != nil {
		return Result{}, err
	}
	behavioralAvg, err := channelAverage(health.DetectionBehavioral, behavioral)
	if err != nil {
		return Result{}, err
	}

	weighted := facialAvg*WeightFacial + speechAvg*WeightSpeech + behavioralAvg*WeightBehavioral
	score := roundHalfUp(weighted * 100)

	areas := make([]string, 0, 3)
	if facialAvg < ConcernThreshold {
		areas = append(areas, AreaFacial)
	}
	if speechAvg < ConcernThreshold {
		areas = append(areas, AreaSpeech)
	}
	if behavioralAvg < ConcernThreshold {
		areas = append(areas, AreaBehavioral)
	}

	return Result{
		Score:          score,
		Status:         health.StatusForScore(score),
		AreasOfConcern: areas,
		ComponentScores: health.ComponentScores{
			Facial:     roundHalfUp(facialAvg * 100),
			Speech:     roundHalfUp(speechAvg * 100),
			Behavioral: roundHalfUp(behavioralAvg * 100),
		},
		Averages: ChannelAverages{
			Facial:     facialAvg,
			Speech:     speechAvg,
			Behavioral: behavioralAvg,
		},
		LastUpdated: now,
	}, nil
}

func channelAverage(channel health.DetectionType, results []health.DetectionResult) (float64, error) {
	if len(results) == 0 {
		return 0, nil
	}
	if len(results) > MaxResultsPerChannel {
		return 0, apperrors.Invalid("at most 5 results per channel are accepted")
	}
	sum := 0.0
	for _, r := range results {
		if r.DetectionType != channel {
			return 0, apperrors.Invalid("result of type " + string(r.DetectionType) + " passed as " + string(channel))
		}
		if err := r.Validate(); err != nil {
			return 0, err
		}
		sum += r.ConfidenceScore
	}
	return sum / float64(len(results)), nil
}

// roundHalfUp ignores binary noise below 1e-9 before rounding, e.g. 70.49999999999999 rounds to 71.
func roundHalfUp(v float64) int {
	snapped := math.Round(v*1e9) / 1e9
	return int(math.Floor(snapped + 0.5))
}
