package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mati7337/itchy-graphs/internal/model"
)

const namespace = "itchy"

// Fetch outcome label values.
const (
	OutcomeNetwork = "network"
	OutcomeCache   = "cache"
)

// Metrics holds the crawl collectors and the registry they are bound to.
type Metrics struct {
	registry *prometheus.Registry

	FetchesTotal    *prometheus.CounterVec
	RetriesTotal    *prometheus.CounterVec
	HTTPErrorsTotal *prometheus.CounterVec
	NodesProcessed  *prometheus.CounterVec
	NodesMissing    *prometheus.CounterVec
	CommentsTotal   prometheus.Counter
	RoundsTotal     prometheus.Counter
	CurrentRound    prometheus.Gauge
}

// New registers all collectors on a fresh registry.
// Go runtime and process collectors are included when withRuntime is set.
func New(withRuntime bool) *Metrics {
	reg := prometheus.NewRegistry()
	if withRuntime {
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		FetchesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "fetches_total",
				Help:      "Total number of successful page fetches.",
			},
			[]string{"outcome"},
		),
		RetriesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "fetch_retries_total",
				Help:      "Total number of retries after transient fetch failures.",
			},
			[]string{"kind"},
		),
		HTTPErrorsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_errors_total",
				Help:      "Total number of non-retried HTTP error responses.",
			},
			[]string{"status"},
		),
		NodesProcessed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "nodes_processed_total",
				Help:      "Total number of works and authors harvested and saved.",
			},
			[]string{"kind"},
		),
		NodesMissing: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "nodes_missing_total",
				Help:      "Total number of works and authors that answered 404.",
			},
			[]string{"kind"},
		),
		CommentsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "comments_harvested_total",
				Help:      "Total number of comments collected.",
			},
		),
		RoundsTotal: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "rounds_total",
				Help:      "Total number of crawl rounds finished.",
			},
		),
		CurrentRound: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "current_round",
				Help:      "Number of the last finished crawl round.",
			},
		),
	}
}

// Registry returns the registry the collectors are bound to.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveFetch counts a successful fetch.
func (m *Metrics) ObserveFetch(fromCache bool) {
	outcome := OutcomeNetwork
	if fromCache {
		outcome = OutcomeCache
	}
	m.FetchesTotal.WithLabelValues(outcome).Inc()
}

// ObserveRetry counts a retry after a transient failure of the given kind.
func (m *Metrics) ObserveRetry(kind string) {
	m.RetriesTotal.WithLabelValues(kind).Inc()
}

// ObserveHTTPError counts an HTTP error that was not retried.
func (m *Metrics) ObserveHTTPError(status int) {
	m.HTTPErrorsTotal.WithLabelValues(strconv.Itoa(status)).Inc()
}

// RoundFinished adds the counters of a finished round.
func (m *Metrics) RoundFinished(stats model.RoundStats) {
	m.NodesProcessed.WithLabelValues(string(model.KindWork)).Add(float64(stats.WorksProcessed))
	m.NodesProcessed.WithLabelValues(string(model.KindAuthor)).Add(float64(stats.AuthorsProcessed))
	m.NodesMissing.WithLabelValues(string(model.KindWork)).Add(float64(stats.WorksMissing))
	m.NodesMissing.WithLabelValues(string(model.KindAuthor)).Add(float64(stats.AuthorsMissing))
	m.CommentsTotal.Add(float64(stats.CommentsHarvested))
	m.RoundsTotal.Inc()
	m.CurrentRound.Set(float64(stats.Round))
}
