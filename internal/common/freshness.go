package common

import "time"

// FreshnessStoredPrice is how long a stored live price is served without asking the feed again.
const FreshnessStoredPrice = 15 * time.Minute

// IsFresh returns true if updated is within ttl of now
func IsFresh(updated time.Time, ttl time.Duration, now time.Time) bool {
	if updated.IsZero() {
		return false
	}
	return now.Sub(updated) < ttl
}
