package clientcontext

import (
	"net/http"
	"strings"
)

// Platform and CDN country hints in priority order. These are free when
// present and save an external lookup.
var countryHeaders = []string{
	"CF-IPCountry",
	"X-Vercel-IP-Country",
	"X-Country-Code",
}

// Sentinel codes some edges send when they could not geolocate. Treated as
// absent so the pipeline can fall through to the IP lookup.
var unknownCountryCodes = map[string]bool{
	"XX": true,
	"T1": true,
}

// CountryFromHeaders returns the first valid 2-letter country code among the
// hint headers, normalized to upper case, or empty when no header qualifies.
func CountryFromHeaders(headers http.Header) string {
	for _, name := range countryHeaders {
		code := normalizeCountry(headers.Get(name))
		if code != "" {
			return code
		}
	}
	return ""
}

func normalizeCountry(raw string) string {
	code := strings.ToUpper(strings.TrimSpace(raw))
	if len(code) != 2 {
		return ""
	}
	for i := 0; i < 2; i++ {
		if code[i] < 'A' || code[i] > 'Z' {
			return ""
		}
	}
	if unknownCountryCodes[code] {
		return ""
	}
	return code
}
