package clientcontext

import "net/http"

// PrivacyOptOut reports whether the request carries a Do-Not-Track or
// Global Privacy Control signal. When it does, the entire resolution
// pipeline is skipped before any network call or persistence can happen.
func PrivacyOptOut(headers http.Header) bool {
	return headers.Get("DNT") == "1" || headers.Get("Sec-GPC") == "1"
}
