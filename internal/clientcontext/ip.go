package clientcontext

import (
	"net/http"
	"strconv"
	"strings"
)

// Candidate headers in priority order. The edge-provided header wins over
// the generic proxy headers; X-Forwarded-For is last because any hop can
// append to it.
var clientIPHeaders = []string{
	"CF-Connecting-IP",
	"X-Real-IP",
	"X-Client-IP",
	"X-Forwarded-For",
}

// ExtractClientIP returns the first candidate header value that normalizes
// to a usable public address, or empty when every candidate is missing,
// loopback, or private. Private addresses are rejected rather than recorded:
// they identify infrastructure, not visitors, and are useless for geo lookup.
func ExtractClientIP(headers http.Header) string {
	for _, name := range clientIPHeaders {
		value := headers.Get(name)
		if value == "" {
			continue
		}
		if name == "X-Forwarded-For" {
			// first entry is the original client
			if idx := strings.Index(value, ","); idx != -1 {
				value = value[:idx]
			}
		}
		candidate := normalizeIP(value)
		if candidate == "" || isLoopbackOrPrivate(candidate) {
			continue
		}
		return candidate
	}
	return ""
}

func normalizeIP(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.Trim(s, `"'`)
	// Strip a trailing :port. IPv6 addresses contain colons themselves, so
	// only strip when there is exactly one, or when the host is bracketed.
	if strings.HasPrefix(s, "[") {
		if end := strings.Index(s, "]"); end != -1 {
			s = s[1:end]
		}
	} else if strings.Count(s, ":") == 1 {
		s = s[:strings.Index(s, ":")]
	}
	return s
}

func isLoopbackOrPrivate(ip string) bool {
	if ip == "::1" {
		return true
	}
	octets := strings.Split(ip, ".")
	if len(octets) != 4 {
		return false
	}
	switch octets[0] {
	case "127", "10":
		return true
	case "192":
		return octets[1] == "168"
	case "172":
		// 172.16.0.0/12 covers second octets 16 through 31
		n, err := strconv.Atoi(octets[1])
		return err == nil && n >= 16 && n <= 31
	default:
		return false
	}
}
