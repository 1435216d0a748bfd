package clientcontext

import (
	"net/url"
	"strings"
)

// Coarse referrer platform labels, matched against the referrer hostname.
const (
	PlatformDirect = "direct"
	PlatformOther  = "other"
)

var platformHosts = []struct {
	suffix   string
	platform string
}{
	{"instagram.com", "instagram"},
	{"tiktok.com", "tiktok"},
	{"twitter.com", "twitter"},
	{"x.com", "twitter"},
	{"t.co", "twitter"},
	{"facebook.com", "facebook"},
	{"fb.com", "facebook"},
	{"youtube.com", "youtube"},
	{"youtu.be", "youtube"},
	{"linkedin.com", "linkedin"},
	{"pinterest.com", "pinterest"},
	{"reddit.com", "reddit"},
	{"snapchat.com", "snapchat"},
	{"google.com", "google"},
}

// ReferrerPlatform extracts a coarse platform label from a referrer URL.
// An empty referrer means the visitor typed or bookmarked the link.
func ReferrerPlatform(referrer string) string {
	if strings.TrimSpace(referrer) == "" {
		return PlatformDirect
	}
	u, err := url.Parse(referrer)
	if err != nil || u.Hostname() == "" {
		return PlatformOther
	}
	host := strings.ToLower(u.Hostname())
	host = strings.TrimPrefix(host, "www.")
	for _, entry := range platformHosts {
		if host == entry.suffix || strings.HasSuffix(host, "."+entry.suffix) {
			return entry.platform
		}
	}
	return PlatformOther
}

// ParseUTM pulls the standard UTM parameters out of a query string. Missing
// parameters stay empty; this never fails.
func ParseUTM(query url.Values) UTM {
	return UTM{
		Source:   query.Get("utm_source"),
		Medium:   query.Get("utm_medium"),
		Campaign: query.Get("utm_campaign"),
		Term:     query.Get("utm_term"),
		Content:  query.Get("utm_content"),
	}
}
