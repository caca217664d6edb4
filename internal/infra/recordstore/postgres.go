package recordstore

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yanqian/cogniwell/internal/domain/health"
	"github.com/yanqian/cogniwell/pkg/util"
)

// PostgresStore persists health records with pgx. Schema lives in db/schema.sql.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore constructs the store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) Detections() *PostgresDetections { return &PostgresDetections{s.pool} }
func (s *PostgresStore) Wearables() *PostgresWearables { return &PostgresWearables{s.pool} }
func (s *PostgresStore) Scores() *PostgresScores { return &PostgresScores{s.pool} }
func (s *PostgresStore) DailyMetrics() *PostgresDailyMetrics { return &PostgresDailyMetrics{s.pool} }
func (s *PostgresStore) Plans() *PostgresPlans { return &PostgresPlans{s.pool} }
func (s *PostgresStore) Progress() *PostgresProgress { return &PostgresProgress{s.pool} }

// PostgresDetections implements health.DetectionRepository.
type PostgresDetections struct{ pool *pgxpool.Pool }

func (r *PostgresDetections) Insert(ctx context.Context, d health.DetectionResult) (health.DetectionResult, error) {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = util.NowUTC()
	}
	indicators, err := json.Marshal(d.RiskIndicators)
	if err != nil {
		return health.DetectionResult{}, err
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO detection_results (id, user_id, detection_type, confidence_score, risk_indicators, raw_data, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, d.ID, d.UserID, d.DetectionType, d.ConfidenceScore, indicators, nullableJSON(d.RawData), d.CreatedAt)
	if err != nil {
		return health.DetectionResult{}, err
	}
	return d, nil
}

func (r *PostgresDetections) Query(ctx context.Context, f health.Filter) ([]health.DetectionResult, error) {
	q := newFilterQuery(`
		SELECT id, user_id, detection_type, confidence_score, risk_indicators, raw_data, created_at
		FROM detection_results
		WHERE user_id = $1
	`, f.UserID)
	if f.DetectionType != "" {
		q.where("detection_type", "=", f.DetectionType)
	}
	q.window("created_at", f)
	rows, err := r.pool.Query(ctx, q.sql, q.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]health.DetectionResult, 0)
	for rows.Next() {
		var (
			d          health.DetectionResult
			indicators []byte
			raw        []byte
		)
		if err := rows.Scan(&d.ID, &d.UserID, &d.DetectionType, &d.ConfidenceScore, &indicators, &raw, &d.CreatedAt); err != nil {
			return nil, err
		}
		if len(indicators) > 0 {
			if err := json.Unmarshal(indicators, &d.RiskIndicators); err != nil {
				return nil, err
			}
		}
		if len(raw) > 0 {
			d.RawData = json.RawMessage(raw)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// PostgresWearables implements health.WearableRepository.
type PostgresWearables struct{ pool *pgxpool.Pool }

func (r *PostgresWearables) Insert(ctx context.Context, w health.WearableReading) (health.WearableReading, error) {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO wearable_data (id, user_id, device_type, data_type, ts, value, unit, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, w.ID, w.UserID, w.DeviceType, w.DataType, w.Timestamp, w.Value, w.Unit, nullableJSON(w.Metadata))
	if err != nil {
		return health.WearableReading{}, err
	}
	return w, nil
}

func (r *PostgresWearables) Query(ctx context.Context, f health.Filter) ([]health.WearableReading, error) {
	q := newFilterQuery(`
		SELECT id, user_id, device_type, data_type, ts, value, unit, metadata
		FROM wearable_data
		WHERE user_id = $1
	`, f.UserID)
	if f.DataType != "" {
		q.where("data_type", "=", f.DataType)
	}
	q.window("ts", f)
	rows, err := r.pool.Query(ctx, q.sql, q.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]health.WearableReading, 0)
	for rows.Next() {
		var (
			w    health.WearableReading
			meta []byte
		)
		if err := rows.Scan(&w.ID, &w.UserID, &w.DeviceType, &w.DataType, &w.Timestamp, &w.Value, &w.Unit, &meta); err != nil {
			return nil, err
		}
		if len(meta) > 0 {
			w.Metadata = json.RawMessage(meta)
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

// PostgresScores implements health.ScoreRepository.
type PostgresScores struct{ pool *pgxpool.Pool }

const scoreColumns = `id, user_id, score, status, areas_of_concern, facial_score, speech_score, behavioral_score, created_at`

func (r *PostgresScores) Insert(ctx context.Context, s health.CognitiveScoreSnapshot) (health.CognitiveScoreSnapshot, error) {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = util.NowUTC()
	}
	if s.AreasOfConcern == nil {
		s.AreasOfConcern = []string{}
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO cognitive_scores (`+scoreColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, s.ID, s.UserID, s.Score, s.Status, s.AreasOfConcern,
		s.ComponentScores.Facial, s.ComponentScores.Speech, s.ComponentScores.Behavioral, s.CreatedAt)
	if err != nil {
		return health.CognitiveScoreSnapshot{}, err
	}
	return s, nil
}

func (r *PostgresScores) Query(ctx context.Context, f health.Filter) ([]health.CognitiveScoreSnapshot, error) {
	q := newFilterQuery(`SELECT `+scoreColumns+` FROM cognitive_scores WHERE user_id = $1`, f.UserID)
	q.window("created_at", f)
	rows, err := r.pool.Query(ctx, q.sql, q.args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]health.CognitiveScoreSnapshot, 0)
	for rows.Next() {
		snap, err := scanScore(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, snap)
	}
	return out, rows.Err()
}

func (r *PostgresScores) Latest(ctx context.Context, userID uuid.UUID) (health.CognitiveScoreSnapshot, bool, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+scoreColumns+`
		FROM cognitive_scores
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT 1
	`, userID)
	snap, err := scanScore(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return health.CognitiveScoreSnapshot{}, false, nil
		}
		return health.CognitiveScoreSnapshot{}, false, err
	}
	return snap, true, nil
}

func scanScore(row pgx.Row) (health.CognitiveScoreSnapshot, error) {
	var s health.CognitiveScoreSnapshot
	err := row.Scan(&s.ID, &s.UserID, &s.Score, &s.Status, &s.AreasOfConcern,
		&s.ComponentScores.Facial, &s.ComponentScores.Speech, &s.ComponentScores.Behavioral, &s.CreatedAt)
	if s.AreasOfConcern == nil {
		s.AreasOfConcern = []string{}
	}
	return s, err
}

// PostgresDailyMetrics implements health.DailyMetricsRepository.
type PostgresDailyMetrics struct{ pool *pgxpool.Pool }

func (r *PostgresDailyMetrics) Latest(ctx context.Context, userID uuid.UUID) (health.DailyHealthMetrics, bool, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, user_id, date, resting_heart_rate, sleep_quality, activity_level, stress_level, created_at, updated_at
		FROM daily_health_metrics
		WHERE user_id = $1
		ORDER BY date DESC
		LIMIT 1
	`, userID)
	var (
		m                       health.DailyHealthMetrics
		sleep, activity, stress *string
	)
	if err := row.Scan(&m.ID, &m.UserID, &m.Date, &m.RestingHeartRate, &sleep, &activity, &stress, &m.CreatedAt, &m.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return health.DailyHealthMetrics{}, false, nil
		}
		return health.DailyHealthMetrics{}, false, err
	}
	m.SleepQuality = health.SleepQuality(deref(sleep))
	m.ActivityLevel = health.Level(deref(activity))
	m.StressLevel = health.Level(deref(stress))
	return m, true, nil
}

func (r *PostgresDailyMetrics) Save(ctx context.Context, m health.DailyHealthMetrics) (health.DailyHealthMetrics, error) {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	now := util.NowUTC()
	if m.CreatedAt.IsZero() {
		m.CreatedAt = now
	}
	if m.UpdatedAt.IsZero() {
		m.UpdatedAt = now
	}
	row := r.pool.QueryRow(ctx, `
		INSERT INTO daily_health_metrics (id, user_id, date, resting_heart_rate, sleep_quality, activity_level, stress_level, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (user_id, date) DO UPDATE SET
			resting_heart_rate = EXCLUDED.resting_heart_rate,
			sleep_quality = EXCLUDED.sleep_quality,
			activity_level = EXCLUDED.activity_level,
			stress_level = EXCLUDED.stress_level,
			updated_at = EXCLUDED.updated_at
		RETURNING id, created_at
	`, m.ID, m.UserID, calendarDate(m.Date), m.RestingHeartRate,
		nullableString(string(m.SleepQuality)), nullableString(string(m.ActivityLevel)), nullableString(string(m.StressLevel)),
		m.CreatedAt, m.UpdatedAt)
	if err := row.Scan(&m.ID, &m.CreatedAt); err != nil {
		return health.DailyHealthMetrics{}, err
	}
	return m, nil
}

// PostgresPlans implements health.PlanRepository.
type PostgresPlans struct{ pool *pgxpool.Pool }

func (r *PostgresPlans) Active(ctx context.Context, userID uuid.UUID) (health.WellnessPlan, bool, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, user_id, title, description, activities, schedule, is_active, created_at
		FROM wellness_plans
		WHERE user_id = $1 AND is_active
		ORDER BY created_at DESC
		LIMIT 1
	`, userID)
	var (
		p                    health.WellnessPlan
		activities, schedule []byte
	)
	if err := row.Scan(&p.ID, &p.UserID, &p.Title, &p.Description, &activities, &schedule, &p.IsActive, &p.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return health.WellnessPlan{}, false, nil
		}
		return health.WellnessPlan{}, false, err
	}
	if err := json.Unmarshal(activities, &p.Activities); err != nil {
		return health.WellnessPlan{}, false, err
	}
	if err := json.Unmarshal(schedule, &p.Schedule); err != nil {
		return health.WellnessPlan{}, false, err
	}
	return p, true, nil
}

// Activate deactivates the user's current plan and inserts the new one in a single transaction.
func (r *PostgresPlans) Activate(ctx context.Context, p health.WellnessPlan) (health.WellnessPlan, error) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = util.NowUTC()
	}
	p.IsActive = true
	activities, err := json.Marshal(p.Activities)
	if err != nil {
		return health.WellnessPlan{}, err
	}
	schedule, err := json.Marshal(p.Schedule)
	if err != nil {
		return health.WellnessPlan{}, err
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return health.WellnessPlan{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `UPDATE wellness_plans SET is_active = FALSE WHERE user_id = $1 AND is_active`, p.UserID); err != nil {
		return health.WellnessPlan{}, err
	}
	if _, err := tx.Exec(ctx, `
		INSERT INTO wellness_plans (id, user_id, title, description, activities, schedule, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, TRUE, $7)
	`, p.ID, p.UserID, p.Title, p.Description, activities, schedule, p.CreatedAt); err != nil {
		return health.WellnessPlan{}, err
	}
	if err := tx.Commit(ctx); err != nil {
		return health.WellnessPlan{}, err
	}
	return p, nil
}

// PostgresProgress implements health.ProgressRepository.
type PostgresProgress struct{ pool *pgxpool.Pool }

func (r *PostgresProgress) Append(ctx context.Context, p health.ActivityProgress) (health.ActivityProgress, error) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.CompletedAt.IsZero() {
		p.CompletedAt = util.NowUTC()
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO activity_progress (id, user_id, plan_id, activity_id, completed, notes, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`, p.ID, p.UserID, p.PlanID, p.ActivityID, p.Completed, p.Notes, p.CompletedAt)
	if err != nil {
		return health.ActivityProgress{}, err
	}
	return p, nil
}

func (r *PostgresProgress) ListByPlan(ctx context.Context, userID, planID uuid.UUID) ([]health.ActivityProgress, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, plan_id, activity_id, completed, notes, completed_at
		FROM activity_progress
		WHERE user_id = $1 AND plan_id = $2
		ORDER BY completed_at ASC
	`, userID, planID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]health.ActivityProgress, 0)
	for rows.Next() {
		var p health.ActivityProgress
		if err := rows.Scan(&p.ID, &p.UserID, &p.PlanID, &p.ActivityID, &p.Completed, &p.Notes, &p.CompletedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// filterQuery appends positional predicates to a base SELECT.
type filterQuery struct {
	sql  string
	args []any
}

func newFilterQuery(base string, userID uuid.UUID) *filterQuery {
	return &filterQuery{sql: base, args: []any{userID}}
}

func (q *filterQuery) where(column, op string, value any) {
	q.args = append(q.args, value)
	q.sql += ` AND ` + column + ` ` + op + ` $` + strconv.Itoa(len(q.args))
}

func (q *filterQuery) window(column string, f health.Filter) {
	if !f.From.IsZero() {
		q.where(column, ">=", f.From)
	}
	if !f.To.IsZero() {
		q.where(column, "<=", f.To)
	}
	if f.Order == health.Descending {
		q.sql += ` ORDER BY ` + column + ` DESC`
	} else {
		q.sql += ` ORDER BY ` + column + ` ASC`
	}
	if f.Limit > 0 {
		q.args = append(q.args, f.Limit)
		q.sql += ` LIMIT $` + strconv.Itoa(len(q.args))
	}
}

func nullableJSON(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	return []byte(raw)
}

func calendarDate(t time.Time) time.Time {
	y, mo, d := t.Date()
	return time.Date(y, mo, d, 0, 0, 0, 0, time.UTC)
}

func nullableString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

var (
	_ health.DetectionRepository    = (*PostgresDetections)(nil)
	_ health.WearableRepository     = (*PostgresWearables)(nil)
	_ health.ScoreRepository        = (*PostgresScores)(nil)
	_ health.DailyMetricsRepository = (*PostgresDailyMetrics)(nil)
	_ health.PlanRepository         = (*PostgresPlans)(nil)
	_ health.ProgressRepository     = (*PostgresProgress)(nil)
)
