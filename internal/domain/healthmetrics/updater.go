package healthmetrics

import (
	"time"

	"github.com/yanqian/cogniwell/internal/domain/health"
	"github.com/yanqian/cogniwell/pkg/util"
)

// Bucket boundaries for the qualitative fields.
const (
	SleepGoodHours        = 7
	SleepFairHours        = 5
	ActivityHighSteps     = 10000
	ActivityModerateSteps = 5000
	StressLowMax          = 30
	StressModerateMax     = 70
)

// SleepQualityFor buckets a nightly sleep duration in hours.
func SleepQualityFor(hours float64) health.SleepQuality {
	switch {
	case hours >= SleepGoodHours:
		return health.SleepGood
	case hours >= SleepFairHours:
		return health.SleepFair
	default:
		return health.SleepPoor
	}
}

// ActivityLevelFor buckets a daily step count.
func ActivityLevelFor(steps float64) health.Level {
	switch {
	case steps >= ActivityHighSteps:
		return health.LevelHigh
	case steps >= ActivityModerateSteps:
		return health.LevelModerate
	default:
		return health.LevelLow
	}
}

// StressLevelFor buckets a 0..100 stress score.
func StressLevelFor(score float64) health.Level {
	switch {
	case score <= StressLowMax:
		return health.LevelLow
	case score <= StressModerateMax:
		return health.LevelModerate
	default:
		return health.LevelHigh
	}
}

// Update applies one reading to the day record. A nil current, or one from an earlier
// calendar day in loc, yields a fresh record holding only the mapped field; otherwise the
// field is merged into a copy of current. Data types without a mapping return current
// unchanged and false.
func Update(current *health.DailyHealthMetrics, dataType health.DataType, value float64, now time.Time, loc *time.Location) (health.DailyHealthMetrics, bool) {
	apply, ok := mapping(dataType, value)
	if !ok {
		if current == nil {
			return health.DailyHealthMetrics{}, false
		}
		return *current, false
	}

	var next health.DailyHealthMetrics
	if current != nil && util.OnDate(current.Date, now, loc) {
		next = *current
	} else {
		next = health.DailyHealthMetrics{
			Date:      util.StartOfDay(now, loc),
			CreatedAt: now,
		}
		if current != nil {
			next.UserID = current.UserID
		}
	}
	apply(&next)
	next.UpdatedAt = now
	return next, true
}

func mapping(dataType health.DataType, value float64) (func(*health.DailyHealthMetrics), bool) {
	switch dataType {
	case health.DataHeartRate:
		return func(m *health.DailyHealthMetrics) {
			v := value
			m.RestingHeartRate = &v
		}, true
	case health.DataSleep:
		return func(m *health.DailyHealthMetrics) { m.SleepQuality = SleepQualityFor(value) }, true
	case health.DataActivity:
		return func(m *health.DailyHealthMetrics) { m.ActivityLevel = ActivityLevelFor(value) }, true
	case health.DataStress:
		return func(m *health.DailyHealthMetrics) { m.StressLevel = StressLevelFor(value) }, true
	default:
		return nil, false
	}
}
