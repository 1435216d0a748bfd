// Package retention decides how far back each subscription tier may query
// analytics. The window is a hard ceiling on queryable history, enforced on
// every read path regardless of what the caller asked for. Pruning of rows
// older than the window is a separate concern owned by the persistence side.
package retention

import "time"

// Tier is a subscription level.
type Tier string

const (
	TierFree Tier = "FREE"
	TierPro  Tier = "PRO"
)

// The original product configs disagreed on the free-tier window (7 vs 365
// days). 7 is the tier gate; 365 was the pro value leaking into a default.
const (
	freeRetentionDays = 7
	proRetentionDays  = 365
)

// ParseTier normalizes a tier string, defaulting unknown values to FREE so
// a malformed claim never widens the window.
func ParseTier(s string) Tier {
	if Tier(s) == TierPro {
		return TierPro
	}
	return TierFree
}

// Days returns the number of days of analytics history a tier may query.
func Days(tier Tier) int {
	if tier == TierPro {
		return proRetentionDays
	}
	return freeRetentionDays
}

// Cutoff returns the earliest instant a tier may query from, relative to now.
func Cutoff(tier Tier, now time.Time) time.Time {
	return now.AddDate(0, 0, -Days(tier))
}

// EffectiveStart clamps a requested start date to the cutoff. Requests for
// history older than the window silently begin at the cutoff instead.
func EffectiveStart(requested, cutoff time.Time) time.Time {
	if requested.Before(cutoff) {
		return cutoff
	}
	return requested
}
