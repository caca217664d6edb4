package trend

import (
	"math"
	"strings"
	"time"

	apperrors "github.com/yanqian/cogniwell/pkg/errors"
)

// Window is a lookback duration counted back from now.
type Window string

const (
	WindowDay   Window = "day"
	WindowWeek  Window = "week"
	WindowMonth Window = "month"
	WindowYear  Window = "year"
)

// ParseWindow accepts the window names case-insensitively. An empty string means a week.
func ParseWindow(raw string) (Window, error) {
	switch Window(strings.ToLower(strings.TrimSpace(raw))) {
	case "", WindowWeek:
		return WindowWeek, nil
	case WindowDay:
		return WindowDay, nil
	case WindowMonth:
		return WindowMonth, nil
	case WindowYear:
		return WindowYear, nil
	default:
		return "", apperrors.Invalid("window must be one of day, week, month, year")
	}
}

// Since returns the lower bound of the window ending at now.
// Months and years are calendar based.
func (w Window) Since(now time.Time) time.Time {
	switch w {
	case WindowDay:
		return now.AddDate(0, 0, -1)
	case WindowMonth:
		return now.AddDate(0, -1, 0)
	case WindowYear:
		return now.AddDate(-1, 0, 0)
	default:
		return now.AddDate(0, 0, -7)
	}
}

// Direction of a trend.
type Direction string

const (
	DirectionImproving Direction = "improving"
	DirectionDeclining Direction = "declining"
	DirectionStable    Direction = "stable"
	DirectionNoData    Direction = "no_data"
)

// Point is one scored observation.
type Point struct {
	Timestamp time.Time `json:"timestamp"`
	Score     float64   `json:"score"`
}

// Result summarizes a series. HasData is false for an empty series.
type Result struct {
	HasData          bool      `json:"hasData"`
	Direction        Direction `json:"direction"`
	ChangePercentage float64   `json:"changePercentage"`
	AverageScore     float64   `json:"averageScore"`
	FirstHalfAvg     float64   `json:"firstHalfAverage"`
	SecondHalfAvg    float64   `json:"secondHalfAverage"`
	DataPoints       int       `json:"dataPoints"`
}

// Analyze compares the second half of an ascending series with the first half.
//
// The split index is floor(n/2), so for odd n the first half is the shorter one. A single point
// lands in the second half and its first half is treated as equal to it. A zero first-half average
// reports a 0% change: the relative change from a zero baseline is undefined and is masked
// rather than reported as infinite.
func Analyze(points []Point) (Result, error) {
	if len(points) == 0 {
		return Result{Direction: DirectionNoData}, nil
	}
	for i, p := range points {
		if math.IsNaN(p.Score) || math.IsInf(p.Score, 0) {
			return Result{}, apperrors.Invalid("series contains a non-finite score")
		}
		if i > 0 && p.Timestamp.Before(points[i-1].Timestamp) {
			return Result{}, apperrors.Invalid("series must be in ascending timestamp order")
		}
	}

	mid := len(points) / 2
	second := mean(points[mid:])
	first := second
	if mid > 0 {
		first = mean(points[:mid])
	}

	res := Result{
		HasData:       true,
		Direction:     DirectionStable,
		AverageScore:  mean(points),
		FirstHalfAvg:  first,
		SecondHalfAvg: second,
		DataPoints:    len(points),
	}
	switch {
	case second > first:
		res.Direction = DirectionImproving
	case second < first:
		res.Direction = DirectionDeclining
	}
	if first != 0 {
		res.ChangePercentage = math.Abs((second-first)/first) * 100
	}
	return res, nil
}

func mean(points []Point) float64 {
	sum := 0.0
	for _, p := range points {
		sum += p.Score
	}
	return sum / float64(len(points))
}
