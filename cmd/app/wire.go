//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/yanqian/cogniwell/internal/bootstrap"
	"github.com/yanqian/cogniwell/internal/domain/auth"
	"github.com/yanqian/cogniwell/internal/domain/indicators"
	"github.com/yanqian/cogniwell/internal/domain/scoring"
	"github.com/yanqian/cogniwell/internal/domain/trend"
	"github.com/yanqian/cogniwell/internal/infra/config"
	httpiface "github.com/yanqian/cogniwell/internal/interface/http"
	"github.com/yanqian/cogniwell/pkg/logger"
)

func initializeApp() (*bootstrap.App, func(), error) {
	wire.Build(
		config.Load,
		logger.New,
		provideAuthConfig,
		provideLocation,
		provideRegistry,
		provideRecorder,
		providePostgresPool,
		provideRecords,
		wire.FieldsOf(new(records), "Detections", "Wearables", "Scores", "DailyMetrics", "Plans"),
		provideConversationLog,
		provideValkeyClient,
		provideLimiter,
		provideSampleStorage,
		provideResponder,
		provideTokenCounter,
		provideCompanionConfig,
		auth.NewService,
		scoring.NewService,
		trend.NewService,
		indicators.NewService,
		provideDetectionService,
		provideHealthMetricsService,
		provideWellnessService,
		provideCompanionService,
		provideDashboardService,
		wire.Bind(new(prometheus.Gatherer), new(*prometheus.Registry)),
		wire.Struct(new(httpiface.Services), "*"),
		wire.Struct(new(httpiface.RouterDeps), "*"),
		httpiface.NewHandler,
		httpiface.NewRouter,
		bootstrap.NewApp,
	)
	return nil, nil, nil
}
