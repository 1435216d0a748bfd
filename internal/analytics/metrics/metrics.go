package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	EventsRecorded prometheus.Counter
	EventsDropped  prometheus.Counter
	EventsSkipped  prometheus.Counter
	PublishErrors  prometheus.Counter
}

func New() *Metrics {
	return &Metrics{
		EventsRecorded: promauto.NewCounter(prometheus.CounterOpts{
			Name: "linkdeck_analytics_events_recorded_total",
			Help: "Total number of analytics events persisted",
		}),
		EventsDropped: promauto.NewCounter(prometheus.CounterOpts{
			Name: "linkdeck_analytics_events_dropped_total",
			Help: "Total number of analytics events lost to persistence failures",
		}),
		EventsSkipped: promauto.NewCounter(prometheus.CounterOpts{
			Name: "linkdeck_analytics_events_skipped_total",
			Help: "Total number of interactions not recorded due to privacy opt-out",
		}),
		PublishErrors: promauto.NewCounter(prometheus.CounterOpts{
			Name: "linkdeck_analytics_publish_errors_total",
			Help: "Total number of click-stream publish failures",
		}),
	}
}

func (m *Metrics) IncrementRecorded()     { m.EventsRecorded.Inc() }
func (m *Metrics) IncrementDropped()      { m.EventsDropped.Inc() }
func (m *Metrics) IncrementSkipped()      { m.EventsSkipped.Inc() }
func (m *Metrics) IncrementPublishError() { m.PublishErrors.Inc() }
