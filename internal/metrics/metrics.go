package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Registry struct {
	reg           *prometheus.Registry
	Fetches       *prometheus.CounterVec
	FetchDuration *prometheus.HistogramVec
	Searches      *prometheus.CounterVec
	MalformedRows *prometheus.CounterVec
	Itineraries   prometheus.Histogram
	DroppedPairs  prometheus.Counter
}

func NewRegistry() *Registry {
	r := prometheus.NewRegistry()

	fetches := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "flybulgarien_fetches_total",
		Help: "Upstream page fetches by target and outcome.",
	}, []string{"target", "outcome"})
	fetchDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "flybulgarien_fetch_duration_seconds",
		Help:    "Upstream page fetch duration.",
		Buckets: []float64{0.1, 0.25, 0.5, 1, 2, 5, 10, 25},
	}, []string{"target"})
	searches := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "flybulgarien_searches_total",
		Help: "Searches by outcome.",
	}, []string{"outcome"})
	malformed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "flybulgarien_malformed_rows_total",
		Help: "Rows that no longer match the expected markup.",
	}, []string{"group", "field"})
	itineraries := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "flybulgarien_itineraries_per_search",
		Help:    "Itineraries returned per successful search.",
		Buckets: []float64{0, 1, 2, 5, 10, 20, 50},
	})
	dropped := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "flybulgarien_dropped_pairs_total",
		Help: "Outbound/inbound pairs rejected by the combiner.",
	})

	r.MustRegister(fetches, fetchDuration, searches, malformed, itineraries, dropped)
	return &Registry{
		reg:           r,
		Fetches:       fetches,
		FetchDuration: fetchDuration,
		Searches:      searches,
		MalformedRows: malformed,
		Itineraries:   itineraries,
		DroppedPairs:  dropped,
	}
}

func (r *Registry) ObserveFetch(target, outcome string, d time.Duration) {
	r.Fetches.WithLabelValues(target, outcome).Inc()
	r.FetchDuration.WithLabelValues(target).Observe(d.Seconds())
}

func (r *Registry) Handler() http.Handler { return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{}) }
