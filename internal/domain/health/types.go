package health

import (
	"encoding/json"
	"math"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/yanqian/cogniwell/pkg/errors"
)

// DetectionType names a detection channel.
type DetectionType string

const (
	DetectionFacial     DetectionType = "facial"
	DetectionSpeech     DetectionType = "speech"
	DetectionBehavioral DetectionType = "behavioral"
)

// DetectionTypes lists the channels in their canonical order.
var DetectionTypes = []DetectionType{DetectionFacial, DetectionSpeech, DetectionBehavioral}

// Valid reports whether t is one of the known channels.
func (t DetectionType) Valid() bool {
	switch t {
	case DetectionFacial, DetectionSpeech, DetectionBehavioral:
		return true
	default:
		return false
	}
}

// DetectionResult is one scored observation from a detection channel.
// Higher confidence means more concerning. Records are never updated.
type DetectionResult struct {
	ID              uuid.UUID       `json:"id"`
	UserID          uuid.UUID       `json:"userId"`
	DetectionType   DetectionType   `json:"detectionType"`
	ConfidenceScore float64         `json:"confidenceScore"`
	RiskIndicators  RiskIndicators  `json:"riskIndicators"`
	RawData         json.RawMessage `json:"rawData,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
}

// Validate checks the channel and the [0,1] confidence invariant.
func (d DetectionResult) Validate() error {
	if !d.DetectionType.Valid() {
		return apperrors.Invalid("detectionType must be one of facial, speech, behavioral")
	}
	if math.IsNaN(d.ConfidenceScore) || d.ConfidenceScore < 0 || d.ConfidenceScore > 1 {
		return apperrors.Invalid("confidenceScore must be within [0,1]")
	}
	return nil
}

// DataType names the kind of wearable measurement.
type DataType string

const (
	DataHeartRate     DataType = "heart_rate"
	DataSleep         DataType = "sleep"
	DataActivity      DataType = "activity"
	DataStress        DataType = "stress"
	DataBloodPressure DataType = "blood_pressure"
	DataBloodGlucose  DataType = "blood_glucose"
	DataOther         DataType = "other"
)

// Valid reports whether t is a supported data type.
func (t DataType) Valid() bool {
	switch t {
	case DataHeartRate, DataSleep, DataActivity, DataStress, DataBloodPressure, DataBloodGlucose, DataOther:
		return true
	default:
		return false
	}
}

// DefaultUnit is the display unit used when a reading carries none.
func (t DataType) DefaultUnit() string {
	switch t {
	case DataHeartRate:
		return "bpm"
	case DataSleep:
		return "hours"
	case DataActivity:
		return "steps"
	case DataStress:
		return "score"
	case DataBloodPressure:
		return "mmHg"
	case DataBloodGlucose:
		return "mg/dL"
	default:
		return ""
	}
}

// WearableReading is one timestamped scalar from a device.
type WearableReading struct {
	ID         uuid.UUID       `json:"id"`
	UserID     uuid.UUID       `json:"userId"`
	DeviceType string          `json:"deviceType"`
	DataType   DataType        `json:"dataType"`
	Timestamp  time.Time       `json:"timestamp"`
	Value      float64         `json:"value"`
	Unit       string          `json:"unit,omitempty"`
	Metadata   json.RawMessage `json:"metadata,omitempty"`
}

// ResolvedUnit returns Unit or the data type default. The stored value is left untouched.
func (r WearableReading) ResolvedUnit() string {
	if r.Unit != "" {
		return r.Unit
	}
	return r.DataType.DefaultUnit()
}

// ScoreStatus classifies a composite score.
type ScoreStatus string

const (
	StatusConcerning ScoreStatus = "concerning"
	StatusModerate   ScoreStatus = "moderate"
	StatusHealthy    ScoreStatus = "healthy"
)

// StatusForScore partitions [0,100]: <50 concerning, <70 moderate, otherwise healthy.
func StatusForScore(score int) ScoreStatus {
	switch {
	case score < 50:
		return StatusConcerning
	case score < 70:
		return StatusModerate
	default:
		return StatusHealthy
	}
}

// ComponentScores holds the per channel averages scaled to 0..100.
type ComponentScores struct {
	Facial     int `json:"facial"`
	Speech     int `json:"speech"`
	Behavioral int `json:"behavioral"`
}

// CognitiveScoreSnapshot is a persisted composite score.
type CognitiveScoreSnapshot struct {
	ID              uuid.UUID       `json:"id"`
	UserID          uuid.UUID       `json:"userId"`
	Score           int             `json:"score"`
	Status          ScoreStatus     `json:"status"`
	AreasOfConcern  []string        `json:"areasOfConcern"`
	ComponentScores ComponentScores `json:"componentScores"`
	CreatedAt       time.Time       `json:"createdAt"`
}

// SleepQuality buckets nightly sleep duration.
type SleepQuality string

const (
	SleepPoor SleepQuality = "poor"
	SleepFair SleepQuality = "fair"
	SleepGood SleepQuality = "good"
)

// Level is a coarse low/moderate/high bucket.
type Level string

const (
	LevelLow      Level = "low"
	LevelModerate Level = "moderate"
	LevelHigh     Level = "high"
)

// DailyHealthMetrics aggregates qualitative buckets for one user and calendar day.
type DailyHealthMetrics struct {
	ID               uuid.UUID    `json:"id"`
	UserID           uuid.UUID    `json:"userId"`
	Date             time.Time    `json:"date"`
	RestingHeartRate *float64     `json:"restingHeartRate,omitempty"`
	SleepQuality     SleepQuality `json:"sleepQuality,omitempty"`
	ActivityLevel    Level        `json:"activityLevel,omitempty"`
	StressLevel      Level        `json:"stressLevel,omitempty"`
	CreatedAt        time.Time    `json:"createdAt"`
	UpdatedAt        time.Time    `json:"updatedAt"`
}

// Activity is one recommended item in a wellness plan.
type Activity struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	Description     string `json:"description"`
	Frequency       string `json:"frequency"`
	DurationMinutes int    `json:"durationMinutes"`
	Difficulty      string `json:"difficulty"`
	Category        string `json:"category"`
}

// Validate rejects activities that cannot be scheduled.
func (a Activity) Validate() error {
	if a.ID == "" {
		return apperrors.Invalid("activity id cannot be empty")
	}
	if a.DurationMinutes < 0 {
		return apperrors.Invalid("activity durationMinutes cannot be negative")
	}
	return nil
}

// Schedule describes when plan activities happen.
type Schedule struct {
	RecommendedTimeOfDay map[string]string   `json:"recommendedTimeOfDay"`
	WeeklyDistribution   map[string][]string `json:"weeklyDistribution"`
	AdaptabilityNote     string              `json:"adaptabilityNote"`
}

// WellnessPlan is a generated bundle of activities. At most one plan per user is active.
type WellnessPlan struct {
	ID          uuid.UUID  `json:"id"`
	UserID      uuid.UUID  `json:"userId"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Activities  []Activity `json:"activities"`
	Schedule    Schedule   `json:"schedule"`
	IsActive    bool       `json:"isActive"`
	CreatedAt   time.Time  `json:"createdAt"`
}

// Activity looks up an activity of the plan by id.
func (p WellnessPlan) Activity(id string) (Activity, bool) {
	for _, a := range p.Activities {
		if a.ID == id {
			return a, true
		}
	}
	return Activity{}, false
}

// ActivityProgress records one user interaction with a plan activity.
type ActivityProgress struct {
	ID          uuid.UUID `json:"id"`
	UserID      uuid.UUID `json:"userId"`
	PlanID      uuid.UUID `json:"planId"`
	ActivityID  string    `json:"activityId"`
	Completed   bool      `json:"completed"`
	Notes       string    `json:"notes,omitempty"`
	CompletedAt time.Time `json:"completedAt"`
}
