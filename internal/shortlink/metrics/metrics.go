package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	RedirectsServed   prometheus.Counter
	RedirectsNotFound prometheus.Counter
	LinksCreated      prometheus.Counter
	RedirectLatency   prometheus.Histogram
}

func New() *Metrics {
	return &Metrics{
		RedirectsServed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "linkdeck_redirects_served_total",
			Help: "Total number of short-link redirects served",
		}),
		RedirectsNotFound: promauto.NewCounter(prometheus.CounterOpts{
			Name: "linkdeck_redirects_not_found_total",
			Help: "Total number of redirect requests for unresolved slugs",
		}),
		LinksCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "linkdeck_links_created_total",
			Help: "Total number of short links created",
		}),
		RedirectLatency: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "linkdeck_redirect_duration_ms",
			Help:    "Latency of redirect handling in milliseconds",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 25, 50, 100, 250},
		}),
	}
}

func (m *Metrics) IncrementServed()   { m.RedirectsServed.Inc() }
func (m *Metrics) IncrementNotFound() { m.RedirectsNotFound.Inc() }
func (m *Metrics) IncrementCreated()  { m.LinksCreated.Inc() }

func (m *Metrics) ObserveRedirectMs(ms float64) { m.RedirectLatency.Observe(ms) }
