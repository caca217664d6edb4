package trend

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	apperrors "github.com/yanqian/cogniwell/pkg/errors"
)

var base = time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

func series(scores ...float64) []Point {
	points := make([]Point, len(scores))
	for i, s := range scores {
		points[i] = Point{Timestamp: base.Add(time.Duration(i) * time.Hour), Score: s}
	}
	return points
}

func TestAnalyzeEmptySeriesHasNoData(t *testing.T) {
	res, err := Analyze(nil)
	require.NoError(t, err)
	require.False(t, res.HasData)
	require.Equal(t, DirectionNoData, res.Direction)
	require.Zero(t, res.DataPoints)
}

func TestAnalyzeImproving(t *testing.T) {
	res, err := Analyze(series(40, 60, 70, 90))
	require.NoError(t, err)
	require.True(t, res.HasData)
	require.Equal(t, DirectionImproving, res.Direction)
	require.InDelta(t, 50, res.FirstHalfAvg, 1e-9)
	require.InDelta(t, 80, res.SecondHalfAvg, 1e-9)
	require.InDelta(t, 65, res.AverageScore, 1e-9)
	require.InDelta(t, 60, res.ChangePercentage, 1e-9)
}

func TestAnalyzeOddLengthPutsExtraPointInSecondHalf(t *testing.T) {
	res, err := Analyze(series(80, 60, 40))
	require.NoError(t, err)
	require.Equal(t, DirectionDeclining, res.Direction)
	require.InDelta(t, 80, res.FirstHalfAvg, 1e-9)
	require.InDelta(t, 50, res.SecondHalfAvg, 1e-9)
	require.InDelta(t, 37.5, res.ChangePercentage, 1e-9)
}

func TestAnalyzeSinglePointIsStable(t *testing.T) {
	res, err := Analyze(series(72))
	require.NoError(t, err)
	require.Equal(t, DirectionStable, res.Direction)
	require.Zero(t, res.ChangePercentage)
	require.Equal(t, 72.0, res.FirstHalfAvg)
	require.Equal(t, 72.0, res.SecondHalfAvg)
}

func TestAnalyzeEqualHalvesAreStable(t *testing.T) {
	for _, scores := range [][]float64{{55, 55}, {30, 70, 70, 30}, {10, 10, 10, 10, 10}} {
		res, err := Analyze(series(scores...))
		require.NoError(t, err)
		require.Equal(t, DirectionStable, res.Direction, scores)
		require.Zero(t, res.ChangePercentage, scores)
	}
}

func TestAnalyzeZeroBaselineReportsNoChange(t *testing.T) {
	res, err := Analyze(series(0, 0, 35, 90))
	require.NoError(t, err)
	require.Equal(t, DirectionImproving, res.Direction)
	require.Zero(t, res.FirstHalfAvg)
	require.Zero(t, res.ChangePercentage)
}

func TestAnalyzeRejectsUnorderedSeries(t *testing.T) {
	points := series(10, 20)
	points[0], points[1] = points[1], points[0]
	_, err := Analyze(points)
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))
}

func TestAnalyzeAllowsEqualTimestamps(t *testing.T) {
	points := []Point{{Timestamp: base, Score: 10}, {Timestamp: base, Score: 20}}
	res, err := Analyze(points)
	require.NoError(t, err)
	require.Equal(t, DirectionImproving, res.Direction)
}

func TestWindowSince(t *testing.T) {
	now := time.Date(2024, 3, 31, 12, 0, 0, 0, time.UTC)
	require.Equal(t, time.Date(2024, 3, 30, 12, 0, 0, 0, time.UTC), WindowDay.Since(now))
	require.Equal(t, time.Date(2024, 3, 24, 12, 0, 0, 0, time.UTC), WindowWeek.Since(now))
	// AddDate normalizes February 31st to March 2nd.
	require.Equal(t, time.Date(2024, 3, 2, 12, 0, 0, 0, time.UTC), WindowMonth.Since(now))
	require.Equal(t, time.Date(2023, 3, 31, 12, 0, 0, 0, time.UTC), WindowYear.Since(now))
}

func TestParseWindow(t *testing.T) {
	w, err := ParseWindow("")
	require.NoError(t, err)
	require.Equal(t, WindowWeek, w)

	w, err = ParseWindow("Month")
	require.NoError(t, err)
	require.Equal(t, WindowMonth, w)

	_, err = ParseWindow("decade")
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))
}
