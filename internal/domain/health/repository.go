package health

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Order selects the sort direction on the record timestamp.
type Order int

const (
	// Ascending returns oldest first.
	Ascending Order = iota
	// Descending returns newest first.
	Descending
)

// Filter scopes a record query to one user. Zero values leave a bound open.
type Filter struct {
	UserID        uuid.UUID
	DetectionType DetectionType
	DataType      DataType
	From          time.Time
	To            time.Time
	Limit         int
	Order         Order
}

// DetectionRepository persists detection results.
type DetectionRepository interface {
	Insert(ctx context.Context, result DetectionResult) (DetectionResult, error)
	Query(ctx context.Context, filter Filter) ([]DetectionResult, error)
}

// WearableRepository persists raw wearable readings.
type WearableRepository interface {
	Insert(ctx context.Context, reading WearableReading) (WearableReading, error)
	Query(ctx context.Context, filter Filter) ([]WearableReading, error)
}

// ScoreRepository persists composite score snapshots.
type ScoreRepository interface {
	Insert(ctx context.Context, snapshot CognitiveScoreSnapshot) (CognitiveScoreSnapshot, error)
	Query(ctx context.Context, filter Filter) ([]CognitiveScoreSnapshot, error)
	Latest(ctx context.Context, userID uuid.UUID) (CognitiveScoreSnapshot, bool, error)
}

// DailyMetricsRepository persists the day scoped metrics records.
type DailyMetricsRepository interface {
	Latest(ctx context.Context, userID uuid.UUID) (DailyHealthMetrics, bool, error)
	Save(ctx context.Context, metrics DailyHealthMetrics) (DailyHealthMetrics, error)
}

// PlanRepository persists wellness plans.
type PlanRepository interface {
	Active(ctx context.Context, userID uuid.UUID) (WellnessPlan, bool, error)
	// Activate stores plan as the user's only active plan.
	Activate(ctx context.Context, plan WellnessPlan) (WellnessPlan, error)
}

// ProgressRepository appends activity progress entries.
type ProgressRepository interface {
	Append(ctx context.Context, progress ActivityProgress) (ActivityProgress, error)
	ListByPlan(ctx context.Context, userID, planID uuid.UUID) ([]ActivityProgress, error)
}
