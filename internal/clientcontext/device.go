package clientcontext

import (
	"strings"

	"github.com/mssola/useragent"
)

// ClassifyDevice maps a User-Agent string to a coarse device class.
// Checks are ordered and first match wins: the bot check runs before the
// mobile check because crawler UAs routinely contain "Mobile".
func ClassifyDevice(ua string) DeviceType {
	if strings.TrimSpace(ua) == "" {
		return DeviceUnknown
	}

	lower := strings.ToLower(ua)
	parsed := useragent.New(ua)

	if parsed.Bot() || containsAny(lower, "bot", "crawler", "spider") {
		return DeviceBot
	}
	if containsAny(lower, "tablet", "ipad") {
		return DeviceTablet
	}
	if parsed.Mobile() || containsAny(lower, "mobile", "iphone", "android") {
		return DeviceMobile
	}
	return DeviceDesktop
}

func containsAny(s string, needles ...string) bool {
	for _, needle := range needles {
		if strings.Contains(s, needle) {
			return true
		}
	}
	return false
}
