package clientcontext

import (
	"context"
	"log/slog"
	"net/http"

	"linkdeck/internal/clientcontext/metrics"
)

// CountryResolver is the cached geo lookup; geo.Service implements it.
type CountryResolver interface {
	Country(ctx context.Context, ip string) string
}

// Resolver composes the sub-operations into one visitor context per request.
type Resolver struct {
	geo     CountryResolver
	logger  *slog.Logger
	metrics *metrics.Metrics
}

type Option func(*Resolver)

func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		r.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(r *Resolver) {
		r.metrics = m
	}
}

func NewResolver(geo CountryResolver, opts ...Option) *Resolver {
	r := &Resolver{
		geo:    geo,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve derives the visitor context for a request. The privacy gate runs
// first: an opted-out visitor yields Private=true and nothing else, before
// any header parsing or network call.
func (r *Resolver) Resolve(ctx context.Context, req *http.Request) Context {
	if PrivacyOptOut(req.Header) {
		if r.metrics != nil {
			r.metrics.IncrementPrivacyOptOuts()
		}
		return Context{Private: true, Device: DeviceUnknown}
	}

	ip := ExtractClientIP(req.Header)

	country := CountryFromHeaders(req.Header)
	if country == "" && ip != "" {
		country = r.geo.Country(ctx, ip)
	}

	referrer := req.Header.Get("Referer")

	return Context{
		IP:               ip,
		Country:          country,
		Device:           ClassifyDevice(req.Header.Get("User-Agent")),
		UserAgent:        req.Header.Get("User-Agent"),
		Referrer:         referrer,
		ReferrerPlatform: ReferrerPlatform(referrer),
		UTM:              ParseUTM(req.URL.Query()),
	}
}
