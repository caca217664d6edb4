package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Recorder owns the Prometheus collectors exported on /metrics.
// A nil *Recorder is valid and records nothing, which keeps tests free of registries.
type Recorder struct {
	scoreComputations *prometheus.CounterVec
	planRequests      *prometheus.CounterVec
	wearableReadings  *prometheus.CounterVec
	detections        *prometheus.CounterVec
	persistFailures   *prometheus.CounterVec
	llmTokens         *prometheus.CounterVec
	httpDuration      *prometheus.HistogramVec
}

// NewRecorder registers every collector on reg.
//
// Metrics:
//   - cogniwell_score_computations_total{status}
//   - cogniwell_plan_requests_total{outcome}  outcome is "new" or "cached"
//   - cogniwell_wearable_readings_total{data_type}
//   - cogniwell_detections_total{detection_type}
//   - cogniwell_persist_failures_total{record}
//   - cogniwell_llm_tokens_total{model,kind}  kind is "prompt" or "completion"
//   - cogniwell_http_request_duration_seconds{method,route,status}
func NewRecorder(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		scoreComputations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cogniwell_score_computations_total",
			Help: "Composite cognitive scores computed, by status.",
		}, []string{"status"}),
		planRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cogniwell_plan_requests_total",
			Help: "Wellness plan fetches, split by freshly generated or cached.",
		}, []string{"outcome"}),
		wearableReadings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cogniwell_wearable_readings_total",
			Help: "Wearable readings ingested, by data type.",
		}, []string{"data_type"}),
		detections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cogniwell_detections_total",
			Help: "Detection results submitted, by channel.",
		}, []string{"detection_type"}),
		persistFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cogniwell_persist_failures_total",
			Help: "Best-effort saves that failed, by record kind.",
		}, []string{"record"}),
		llmTokens: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cogniwell_llm_tokens_total",
			Help: "Tokens billed by the companion LLM.",
		}, []string{"model", "kind"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "cogniwell_http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}
	reg.MustRegister(
		r.scoreComputations,
		r.planRequests,
		r.wearableReadings,
		r.detections,
		r.persistFailures,
		r.llmTokens,
		r.httpDuration,
	)
	return r
}

func (r *Recorder) ScoreComputed(status string) {
	if r == nil {
		return
	}
	r.scoreComputations.WithLabelValues(status).Inc()
}

func (r *Recorder) PlanServed(isNew bool) {
	if r == nil {
		return
	}
	outcome := "cached"
	if isNew {
		outcome = "new"
	}
	r.planRequests.WithLabelValues(outcome).Inc()
}

func (r *Recorder) WearableIngested(dataType string) {
	if r == nil {
		return
	}
	r.wearableReadings.WithLabelValues(dataType).Inc()
}

func (r *Recorder) DetectionSubmitted(detectionType string) {
	if r == nil {
		return
	}
	r.detections.WithLabelValues(detectionType).Inc()
}

func (r *Recorder) PersistFailed(record string) {
	if r == nil {
		return
	}
	r.persistFailures.WithLabelValues(record).Inc()
}

func (r *Recorder) LLMUsage(model string, usage TokenUsage) {
	if r == nil || usage.IsZero() {
		return
	}
	r.llmTokens.WithLabelValues(model, "prompt").Add(float64(usage.PromptTokens))
	r.llmTokens.WithLabelValues(model, "completion").Add(float64(usage.CompletionTokens))
}

func (r *Recorder) ObserveHTTP(method, route, status string, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.httpDuration.WithLabelValues(method, route, status).Observe(elapsed.Seconds())
}
