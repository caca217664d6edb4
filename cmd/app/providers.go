package main

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/cogniwell/internal/domain/auth"
	"github.com/yanqian/cogniwell/internal/domain/companion"
	"github.com/yanqian/cogniwell/internal/domain/dashboard"
	"github.com/yanqian/cogniwell/internal/domain/detection"
	"github.com/yanqian/cogniwell/internal/domain/health"
	"github.com/yanqian/cogniwell/internal/domain/healthmetrics"
	"github.com/yanqian/cogniwell/internal/domain/indicators"
	"github.com/yanqian/cogniwell/internal/domain/scoring"
	"github.com/yanqian/cogniwell/internal/domain/trend"
	"github.com/yanqian/cogniwell/internal/domain/wellness"
	"github.com/yanqian/cogniwell/internal/infra/config"
	"github.com/yanqian/cogniwell/internal/infra/conversationlog"
	"github.com/yanqian/cogniwell/internal/infra/llm"
	"github.com/yanqian/cogniwell/internal/infra/llm/chatgpt"
	"github.com/yanqian/cogniwell/internal/infra/ratelimit"
	"github.com/yanqian/cogniwell/internal/infra/recordstore"
	"github.com/yanqian/cogniwell/internal/infra/samplestore"
	"github.com/yanqian/cogniwell/internal/infra/tokenizer"
	"github.com/yanqian/cogniwell/pkg/metrics"
)

// records groups one repository per record kind so wire can hand them out by field.
type records struct {
	Detections   health.DetectionRepository
	Wearables    health.WearableRepository
	Scores       health.ScoreRepository
	DailyMetrics health.DailyMetricsRepository
	Plans        health.PlanRepository
	Progress     health.ProgressRepository
}

func provideAuthConfig(cfg *config.Config) auth.Config {
	return auth.Config{
		Secret:   cfg.Auth.JWTSecret,
		Issuer:   cfg.Auth.Issuer,
		Audience: cfg.Auth.Audience,
	}
}

func provideLocation(cfg *config.Config) (*time.Location, error) {
	return cfg.Health.Location()
}

func provideRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

func provideRecorder(reg *prometheus.Registry) *metrics.Recorder {
	return metrics.NewRecorder(reg)
}

// providePostgresPool returns a nil pool when no DSN is set or the database is unreachable.
func providePostgresPool(cfg *config.Config, logger *slog.Logger) (*pgxpool.Pool, func()) {
	dsn := strings.TrimSpace(cfg.Postgres.DSN)
	if dsn == "" {
		logger.Info("postgres dsn not set, using memory record store")
		return nil, func() {}
	}
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		logger.Error("invalid postgres dsn, using memory record store", "error", err)
		return nil, func() {}
	}
	if cfg.Postgres.MaxConns > 0 {
		poolConfig.MaxConns = cfg.Postgres.MaxConns
	}
	if cfg.Postgres.MinConns > 0 {
		poolConfig.MinConns = cfg.Postgres.MinConns
	}
	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		logger.Error("failed to initialize postgres pool, using memory record store", "error", err)
		return nil, func() {}
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		logger.Error("postgres ping failed, using memory record store", "error", err)
		pool.Close()
		return nil, func() {}
	}
	logger.Info("postgres record store enabled")
	return pool, pool.Close
}

func provideRecords(pool *pgxpool.Pool) records {
	if pool == nil {
		store := recordstore.NewMemoryStore()
		return records{
			Detections:   store.Detections(),
			Wearables:    store.Wearables(),
			Scores:       store.Scores(),
			DailyMetrics: store.DailyMetrics(),
			Plans:        store.Plans(),
			Progress:     store.Progress(),
		}
	}
	store := recordstore.NewPostgresStore(pool)
	return records{
		Detections:   store.Detections(),
		Wearables:    store.Wearables(),
		Scores:       store.Scores(),
		DailyMetrics: store.DailyMetrics(),
		Plans:        store.Plans(),
		Progress:     store.Progress(),
	}
}

func provideConversationLog(pool *pgxpool.Pool) companion.ConversationLog {
	if pool == nil {
		return conversationlog.NewMemoryLog()
	}
	return conversationlog.NewPostgresLog(pool)
}

// provideValkeyClient returns nil when valkey is disabled or unreachable.
func provideValkeyClient(cfg *config.Config, logger *slog.Logger) (valkey.Client, func()) {
	if !cfg.Valkey.Enabled {
		return nil, func() {}
	}
	opt, err := buildValkeyOptions(cfg.Valkey.Addr)
	if err != nil {
		logger.Error("invalid valkey configuration, using memory rate limit counter", "error", err)
		return nil, func() {}
	}
	client, err := valkey.NewClient(opt)
	if err != nil {
		logger.Error("failed to create valkey client, using memory rate limit counter", "error", err)
		return nil, func() {}
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
		logger.Error("valkey ping failed, using memory rate limit counter", "error", err)
		client.Close()
		return nil, func() {}
	}
	logger.Info("valkey rate limit counter enabled", "addr", cfg.Valkey.Addr)
	return client, client.Close
}

func buildValkeyOptions(addr string) (valkey.ClientOption, error) {
	if strings.Contains(addr, "://") {
		return valkey.ParseURL(addr)
	}
	return valkey.ClientOption{InitAddress: []string{addr}}, nil
}

func provideLimiter(cfg *config.Config, client valkey.Client) *ratelimit.Limiter {
	rl := cfg.HTTP.RateLimit
	if !rl.Enabled || rl.RequestsPerWindow <= 0 {
		return nil
	}
	var counter ratelimit.Counter = ratelimit.NewMemoryCounter(nil)
	if client != nil {
		counter = ratelimit.NewValkeyCounter(client, cfg.Valkey.Prefix)
	}
	return ratelimit.NewLimiter(counter, rl.RequestsPerWindow, rl.Window)
}

func provideSampleStorage(cfg *config.Config, logger *slog.Logger) detection.ObjectStorage {
	sc := cfg.Storage
	if !sc.Enabled {
		logger.Info("sample storage disabled, detection samples will be rejected")
		return nil
	}
	store, err := samplestore.NewS3Storage(sc.Endpoint, sc.AccessKey, sc.SecretKey, sc.Bucket, sc.Region, logger)
	if err != nil {
		logger.Error("sample storage unavailable, keeping samples in memory", "error", err)
		return samplestore.NewMemoryStorage()
	}
	return store
}

// provideResponder returns nil without an API key; the companion then answers with canned replies.
func provideResponder(cfg *config.Config, recorder *metrics.Recorder, logger *slog.Logger) companion.Responder {
	if strings.TrimSpace(cfg.LLM.APIKey) == "" {
		logger.Info("llm api key not set, companion uses canned replies")
		return nil
	}
	client, err := chatgpt.NewClient(cfg.LLM.APIKey, cfg.LLM.BaseURL, cfg.LLM.Timeout)
	if err != nil {
		logger.Error("failed to create chatgpt client, companion uses canned replies", "error", err)
		return nil
	}
	return llm.NewChatGPTResponder(client, cfg.Companion.Prompt, cfg.LLM.Model, cfg.LLM.Temperature, recorder)
}

func provideTokenCounter(cfg *config.Config, logger *slog.Logger) companion.TokenCounter {
	return tokenizer.NewTiktokenCounter(cfg.LLM.Encoding, logger)
}

func provideCompanionConfig(cfg *config.Config) companion.Config {
	return companion.Config{
		MaxHistoryEntries: cfg.Companion.MaxHistoryEntries,
		MaxHistoryTokens:  cfg.Companion.MaxHistoryTokens,
		RecentDetections:  cfg.Companion.RecentDetections,
		RecentScores:      cfg.Companion.RecentScores,
	}
}

func provideDetectionService(cfg *config.Config, repo health.DetectionRepository, storage detection.ObjectStorage, recorder *metrics.Recorder, logger *slog.Logger) detection.Service {
	return detection.NewService(repo, storage, cfg.Storage.MaxSampleBytes, recorder, logger)
}

func provideHealthMetricsService(readings health.WearableRepository, daily health.DailyMetricsRepository, loc *time.Location, recorder *metrics.Recorder, logger *slog.Logger) healthmetrics.Service {
	return healthmetrics.NewService(readings, daily, loc, recorder, logger)
}

func provideWellnessService(cfg *config.Config, recs records, recorder *metrics.Recorder, logger *slog.Logger) wellness.Service {
	return wellness.NewService(wellness.Dependencies{
		Plans:      recs.Plans,
		Progress:   recs.Progress,
		Scores:     recs.Scores,
		Detections: recs.Detections,
	}, cfg.Health.PlanFreshnessDays, recorder, logger)
}

func provideCompanionService(cfg companion.Config, recs records, log companion.ConversationLog, responder companion.Responder, tokens companion.TokenCounter, logger *slog.Logger) companion.Service {
	return companion.NewService(cfg, companion.Dependencies{
		Detections: recs.Detections,
		Scores:     recs.Scores,
		Log:        log,
		LLM:        responder,
		Tokens:     tokens,
	}, logger)
}

func provideDashboardService(cfg *config.Config, scores scoring.Service, trends trend.Service, inds indicators.Service, metricsSvc healthmetrics.Service, plans health.PlanRepository, logger *slog.Logger) dashboard.Service {
	return dashboard.NewService(dashboard.Dependencies{
		Scores:     scores,
		Trends:     trends,
		Indicators: inds,
		Metrics:    metricsSvc,
		Plans:      plans,
	}, cfg.Health.PlanFreshnessDays, logger)
}
