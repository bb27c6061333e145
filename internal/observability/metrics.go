package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "climashield"

// Metrics holds the Prometheus counters, histograms, and gauges for the
// assessment pipeline, the advisory client, and the forecast job.
type Metrics struct {
	RequestsConsumed    prometheus.Counter
	AssessmentsProduced prometheus.Counter
	AssessmentErrors    prometheus.Counter
	PipelineRunning     prometheus.Gauge

	// Batch processing metrics.
	BatchSize               prometheus.Histogram
	BatchProcessingDuration prometheus.Histogram

	// Advisory metrics.
	AdvisoryRequests    *prometheus.CounterVec // labels: outcome={success,error,empty}
	AdvisoryCache       *prometheus.CounterVec // labels: result={hit,miss}
	AdvisoryAPIDuration prometheus.Histogram
	AdvisoryEnabled     prometheus.Gauge

	// Forecast job metrics.
	ForecastRows  *prometheus.CounterVec // labels: kind={historical,projected}
	ForecastAreas *prometheus.CounterVec // labels: outcome={fitted,skipped}
}

// NewMetrics creates and registers all metrics with the default Prometheus registry.
func NewMetrics() *Metrics {
	m := newMetrics(true)

	prometheus.MustRegister(
		m.RequestsConsumed,
		m.AssessmentsProduced,
		m.AssessmentErrors,
		m.PipelineRunning,
		m.BatchSize,
		m.BatchProcessingDuration,
		m.AdvisoryRequests,
		m.AdvisoryCache,
		m.AdvisoryAPIDuration,
		m.AdvisoryEnabled,
		m.ForecastRows,
		m.ForecastAreas,
	)

	return m
}

// NewMetricsForTesting creates unregistered Metrics to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return newMetrics(false)
}

func newMetrics(withHelp bool) *Metrics {
	help := func(s string) string {
		if withHelp {
			return s
		}
		return ""
	}

	return &Metrics{
		RequestsConsumed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_consumed_total",
			Help:      help("Total assessment requests read from the source topic."),
		}),
		AssessmentsProduced: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "assessments_produced_total",
			Help:      help("Total assessments written to the sink topic."),
		}),
		AssessmentErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "assessment_errors_total",
			Help:      help("Total requests that could not be assessed."),
		}),
		PipelineRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "pipeline_running",
			Help:      help("1 when the assessment pipeline is active, 0 when shut down."),
		}),
		BatchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_size",
			Help:      help("Number of requests per batch extracted from Kafka."),
			Buckets:   []float64{1, 5, 10, 20, 30, 40, 50, 75, 100},
		}),
		BatchProcessingDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "batch_processing_duration_seconds",
			Help:      help("Duration of a complete batch extract-assess-load cycle."),
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
		}),
		AdvisoryRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "advisory_requests_total",
			Help:      help("Advisory API requests by outcome."),
		}, []string{"outcome"}),
		AdvisoryCache: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "advisory_cache_total",
			Help:      help("Advisory cache lookups by result."),
		}, []string{"result"}),
		AdvisoryAPIDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "advisory_api_duration_seconds",
			Help:      help("Advisory API request duration in seconds."),
			Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 20},
		}),
		AdvisoryEnabled: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "advisory_enabled",
			Help:      help("1 when advisory text generation is enabled, 0 otherwise."),
		}),
		ForecastRows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "forecast_rows_total",
			Help:      help("Forecast table rows written, by kind."),
		}, []string{"kind"}),
		ForecastAreas: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "forecast_areas_total",
			Help:      help("Areas seen by the forecast job, by outcome."),
		}, []string{"outcome"}),
	}
}
