package observability

import (
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/push"
	"github.com/rs/zerolog"
)

const pushJob = "product_migration"

// Metrics is safe to use through a nil pointer; every method is then a no-op.
type Metrics struct {
	Registry       *prometheus.Registry
	Records        *prometheus.CounterVec
	AssetsUploaded prometheus.Counter
	RunDuration    prometheus.Histogram
}

func NewMetrics() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		Records: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "migration_records_total",
				Help: "Source records processed, by outcome",
			},
			[]string{"outcome"},
		),
		AssetsUploaded: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "migration_assets_uploaded_total",
				Help: "Image assets uploaded to the content store",
			},
		),
		RunDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "migration_run_duration_seconds",
				Help:    "Wall time of a full migration run",
				Buckets: prometheus.ExponentialBuckets(1, 2, 10),
			},
		),
	}
	m.Registry.MustRegister(m.Records, m.AssetsUploaded, m.RunDuration)
	return m
}

func (m *Metrics) RecordOutcome(outcome string) {
	if m == nil {
		return
	}
	m.Records.WithLabelValues(outcome).Inc()
}

func (m *Metrics) AssetUploaded() {
	if m == nil {
		return
	}
	m.AssetsUploaded.Inc()
}

func (m *Metrics) ObserveRun(d time.Duration) {
	if m == nil {
		return
	}
	m.RunDuration.Observe(d.Seconds())
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

// Start serves /metrics on port in the background until the process exits.
// A listen failure is logged, the run itself goes on without the endpoint.
func (m *Metrics) Start(port string, logger zerolog.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	srv := &http.Server{Addr: ":" + port, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error().Err(err).Str("port", port).Msg("metrics server stopped")
		}
	}()
	return srv
}

// Push sends the collected metrics to a Pushgateway, which outlives the run.
func (m *Metrics) Push(gatewayURL string) error {
	if m == nil {
		return errors.New("metrics not initialised")
	}
	return push.New(gatewayURL, pushJob).Gatherer(m.Registry).Push()
}
