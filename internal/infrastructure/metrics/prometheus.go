package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/yourusername/dermora-assistant/internal/usecase"
)

var _ usecase.ResolutionObserver = (*Recorder)(nil)

// Recorder Prometheus collectors for assistant replies
type Recorder struct {
	registry    *prometheus.Registry
	resolutions *prometheus.CounterVec
	latency     *prometheus.HistogramVec
}

// NewRecorder registers the collectors on a private registry
func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Recorder{
		registry: reg,
		resolutions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dermora",
			Name:      "resolutions_total",
			Help:      "Assistant replies by source and outcome.",
		}, []string{"source", "outcome"}),
		latency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "dermora",
			Name:      "resolution_duration_seconds",
			Help:      "Time to produce an assistant reply, remote call included.",
			Buckets:   []float64{.001, .01, .1, .5, 1, 2, 5, 10, 20},
		}, []string{"source"}),
	}
}

// ObserveResolution counts res and records how long it took
func (r *Recorder) ObserveResolution(res usecase.Resolution, elapsed time.Duration) {
	r.resolutions.WithLabelValues(string(res.Source), string(res.Outcome)).Inc()
	r.latency.WithLabelValues(string(res.Source)).Observe(elapsed.Seconds())
}

// Handler exposition endpoint for the recorder's registry
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}
