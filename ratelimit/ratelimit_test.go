package ratelimit_test

import (
	"testing"

	"github.com/xeptore/yamusic/ratelimit"
)

func TestTrackDownloadPause(t *testing.T) {
	t.Parallel()
	for range 100 {
		ms := ratelimit.TrackDownloadPause().Milliseconds()
		if ms < 500 || ms > 2000 {
			t.Errorf("expected 500 <= ms <= 2000, got %d", ms)
		}
	}
}
