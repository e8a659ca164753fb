package ratelimit

import (
	"math/rand/v2"
	"time"
)

const (
	TrackDownloadConcurrency = 4
	TrackDownloadAttempts    = 3
)

// TrackDownloadPause returns a jittered pause between 500ms and 2s taken
// before each track download starts.
func TrackDownloadPause() time.Duration {
	const (
		minMillis = 500
		maxMillis = 2000
	)
	return time.Duration(minMillis+rand.N(maxMillis-minMillis+1)) * time.Millisecond //nolint:gosec
}
