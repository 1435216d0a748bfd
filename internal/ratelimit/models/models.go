package models

import "time"

// Config declares the fixed window applied to a guarded route.
type Config struct {
	Window      time.Duration
	MaxRequests int
}

// Result is the outcome of one rate limit check.
type Result struct {
	Allowed   bool
	Remaining int
	Limit     int
	ResetAt   time.Time
	// RetryAfter is seconds until the window resets, for the Retry-After
	// header on rejections.
	RetryAfter int
}
