package recordstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/yanqian/cogniwell/internal/domain/health"
	"github.com/yanqian/cogniwell/pkg/util"
)

// MemoryStore keeps every record kind in process memory. Useful for tests and local dev.
type MemoryStore struct {
	mu          sync.RWMutex
	detections  []health.DetectionResult
	readings    []health.WearableReading
	snapshots   []health.CognitiveScoreSnapshot
	dailyByUser map[uuid.UUID]map[string]health.DailyHealthMetrics
	plans       []health.WellnessPlan
	progress    []health.ActivityProgress
}

// NewMemoryStore constructs an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{dailyByUser: make(map[uuid.UUID]map[string]health.DailyHealthMetrics)}
}

// Detections exposes the store as a health.DetectionRepository.
func (s *MemoryStore) Detections() *MemoryDetections { return &MemoryDetections{s} }

// Wearables exposes the store as a health.WearableRepository.
func (s *MemoryStore) Wearables() *MemoryWearables { return &MemoryWearables{s} }

// Scores exposes the store as a health.ScoreRepository.
func (s *MemoryStore) Scores() *MemoryScores { return &MemoryScores{s} }

// DailyMetrics exposes the store as a health.DailyMetricsRepository.
func (s *MemoryStore) DailyMetrics() *MemoryDailyMetrics { return &MemoryDailyMetrics{s} }

// Plans exposes the store as a health.PlanRepository.
func (s *MemoryStore) Plans() *MemoryPlans { return &MemoryPlans{s} }

// Progress exposes the store as a health.ProgressRepository.
func (s *MemoryStore) Progress() *MemoryProgress { return &MemoryProgress{s} }

// MemoryDetections implements health.DetectionRepository.
type MemoryDetections struct{ s *MemoryStore }

func (r *MemoryDetections) Insert(_ context.Context, result health.DetectionResult) (health.DetectionResult, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if result.ID == uuid.Nil {
		result.ID = uuid.New()
	}
	if result.CreatedAt.IsZero() {
		result.CreatedAt = util.NowUTC()
	}
	r.s.detections = append(r.s.detections, result)
	return result, nil
}

func (r *MemoryDetections) Query(_ context.Context, f health.Filter) ([]health.DetectionResult, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]health.DetectionResult, 0)
	for _, d := range r.s.detections {
		if d.UserID != f.UserID || !inRange(d.CreatedAt, f) {
			continue
		}
		if f.DetectionType != "" && d.DetectionType != f.DetectionType {
			continue
		}
		out = append(out, d)
	}
	return orderAndLimit(out, f, func(d health.DetectionResult) time.Time { return d.CreatedAt }), nil
}

// MemoryWearables implements health.WearableRepository.
type MemoryWearables struct{ s *MemoryStore }

func (r *MemoryWearables) Insert(_ context.Context, reading health.WearableReading) (health.WearableReading, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if reading.ID == uuid.Nil {
		reading.ID = uuid.New()
	}
	r.s.readings = append(r.s.readings, reading)
	return reading, nil
}

func (r *MemoryWearables) Query(_ context.Context, f health.Filter) ([]health.WearableReading, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]health.WearableReading, 0)
	for _, w := range r.s.readings {
		if w.UserID != f.UserID || !inRange(w.Timestamp, f) {
			continue
		}
		if f.DataType != "" && w.DataType != f.DataType {
			continue
		}
		out = append(out, w)
	}
	return orderAndLimit(out, f, func(w health.WearableReading) time.Time { return w.Timestamp }), nil
}

// MemoryScores implements health.ScoreRepository.
type MemoryScores struct{ s *MemoryStore }

func (r *MemoryScores) Insert(_ context.Context, snap health.CognitiveScoreSnapshot) (health.CognitiveScoreSnapshot, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if snap.ID == uuid.Nil {
		snap.ID = uuid.New()
	}
	if snap.CreatedAt.IsZero() {
		snap.CreatedAt = util.NowUTC()
	}
	r.s.snapshots = append(r.s.snapshots, snap)
	return snap, nil
}

func (r *MemoryScores) Query(_ context.Context, f health.Filter) ([]health.CognitiveScoreSnapshot, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]health.CognitiveScoreSnapshot, 0)
	for _, snap := range r.s.snapshots {
		if snap.UserID == f.UserID && inRange(snap.CreatedAt, f) {
			out = append(out, snap)
		}
	}
	return orderAndLimit(out, f, func(s health.CognitiveScoreSnapshot) time.Time { return s.CreatedAt }), nil
}

func (r *MemoryScores) Latest(ctx context.Context, userID uuid.UUID) (health.CognitiveScoreSnapshot, bool, error) {
	snaps, _ := r.Query(ctx, health.Filter{UserID: userID, Limit: 1, Order: health.Descending})
	if len(snaps) == 0 {
		return health.CognitiveScoreSnapshot{}, false, nil
	}
	return snaps[0], true, nil
}

// MemoryDailyMetrics implements health.DailyMetricsRepository. Records are keyed by user and date.
type MemoryDailyMetrics struct{ s *MemoryStore }

func (r *MemoryDailyMetrics) Latest(_ context.Context, userID uuid.UUID) (health.DailyHealthMetrics, bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var (
		latest health.DailyHealthMetrics
		found  bool
	)
	for _, m := range r.s.dailyByUser[userID] {
		if !found || m.Date.After(latest.Date) {
			latest, found = m, true
		}
	}
	return latest, found, nil
}

func (r *MemoryDailyMetrics) Save(_ context.Context, m health.DailyHealthMetrics) (health.DailyHealthMetrics, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	days, ok := r.s.dailyByUser[m.UserID]
	if !ok {
		days = make(map[string]health.DailyHealthMetrics)
		r.s.dailyByUser[m.UserID] = days
	}
	key := m.Date.Format(time.DateOnly)
	if existing, ok := days[key]; ok {
		m.ID = existing.ID
		m.CreatedAt = existing.CreatedAt
	}
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	days[key] = m
	return m, nil
}

// MemoryPlans implements health.PlanRepository.
type MemoryPlans struct{ s *MemoryStore }

func (r *MemoryPlans) Active(_ context.Context, userID uuid.UUID) (health.WellnessPlan, bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for i := len(r.s.plans) - 1; i >= 0; i-- {
		p := r.s.plans[i]
		if p.UserID == userID && p.IsActive {
			return p, true, nil
		}
	}
	return health.WellnessPlan{}, false, nil
}

func (r *MemoryPlans) Activate(_ context.Context, plan health.WellnessPlan) (health.WellnessPlan, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i := range r.s.plans {
		if r.s.plans[i].UserID == plan.UserID {
			r.s.plans[i].IsActive = false
		}
	}
	if plan.ID == uuid.Nil {
		plan.ID = uuid.New()
	}
	plan.IsActive = true
	r.s.plans = append(r.s.plans, plan)
	return plan, nil
}

// MemoryProgress implements health.ProgressRepository.
type MemoryProgress struct{ s *MemoryStore }

func (r *MemoryProgress) Append(_ context.Context, p health.ActivityProgress) (health.ActivityProgress, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	r.s.progress = append(r.s.progress, p)
	return p, nil
}

func (r *MemoryProgress) ListByPlan(_ context.Context, userID, planID uuid.UUID) ([]health.ActivityProgress, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]health.ActivityProgress, 0)
	for _, p := range r.s.progress {
		if p.UserID == userID && p.PlanID == planID {
			out = append(out, p)
		}
	}
	return out, nil
}

func inRange(ts time.Time, f health.Filter) bool {
	if !f.From.IsZero() && ts.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && ts.After(f.To) {
		return false
	}
	return true
}

func orderAndLimit[T any](items []T, f health.Filter, ts func(T) time.Time) []T {
	sort.SliceStable(items, func(i, j int) bool {
		if f.Order == health.Descending {
			return ts(items[i]).After(ts(items[j]))
		}
		return ts(items[i]).Before(ts(items[j]))
	})
	if f.Limit > 0 && len(items) > f.Limit {
		items = items[:f.Limit]
	}
	return items
}

var (
	_ health.DetectionRepository    = (*MemoryDetections)(nil)
	_ health.WearableRepository     = (*MemoryWearables)(nil)
	_ health.ScoreRepository        = (*MemoryScores)(nil)
	_ health.DailyMetricsRepository = (*MemoryDailyMetrics)(nil)
	_ health.PlanRepository         = (*MemoryPlans)(nil)
	_ health.ProgressRepository     = (*MemoryProgress)(nil)
)
