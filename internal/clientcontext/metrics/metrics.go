package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	GeoCacheHits    prometheus.Counter
	GeoCacheMisses  prometheus.Counter
	GeoLookups      prometheus.Counter
	GeoLookupErrors prometheus.Counter
	PrivacyOptOuts  prometheus.Counter
}

func New() *Metrics {
	return &Metrics{
		GeoCacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "linkdeck_geo_cache_hits_total",
			Help: "Total number of IP-to-country resolutions served from cache",
		}),
		GeoCacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "linkdeck_geo_cache_misses_total",
			Help: "Total number of IP-to-country cache misses",
		}),
		GeoLookups: promauto.NewCounter(prometheus.CounterOpts{
			Name: "linkdeck_geo_lookups_total",
			Help: "Total number of external geo lookup calls",
		}),
		GeoLookupErrors: promauto.NewCounter(prometheus.CounterOpts{
			Name: "linkdeck_geo_lookup_errors_total",
			Help: "Total number of external geo lookups that failed or timed out",
		}),
		PrivacyOptOuts: promauto.NewCounter(prometheus.CounterOpts{
			Name: "linkdeck_privacy_optouts_total",
			Help: "Total number of requests skipped due to DNT or GPC signals",
		}),
	}
}

func (m *Metrics) IncrementGeoCacheHits()    { m.GeoCacheHits.Inc() }
func (m *Metrics) IncrementGeoCacheMisses()  { m.GeoCacheMisses.Inc() }
func (m *Metrics) IncrementGeoLookups()      { m.GeoLookups.Inc() }
func (m *Metrics) IncrementGeoLookupErrors() { m.GeoLookupErrors.Inc() }
func (m *Metrics) IncrementPrivacyOptOuts()  { m.PrivacyOptOuts.Inc() }
