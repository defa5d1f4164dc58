package live

import (
	"testing"
	"time"
)

func TestScheduleBackToBack(t *testing.T) {
	var clock playbackClock

	// First buffer starts now; the next two queue behind it even though
	// "now" has barely advanced.
	if start := clock.Schedule(0, time.Second); start != 0 {
		t.Errorf("first start = %v, want 0", start)
	}
	if start := clock.Schedule(10*time.Millisecond, time.Second); start != time.Second {
		t.Errorf("second start = %v, want 1s", start)
	}
	if start := clock.Schedule(20*time.Millisecond, time.Second); start != 2*time.Second {
		t.Errorf("third start = %v, want 2s", start)
	}
}

func TestScheduleAfterSilence(t *testing.T) {
	var clock playbackClock

	clock.Schedule(0, time.Second)

	// The timeline has drained; the next buffer starts now, not at the
	// stale queue tail.
	if start := clock.Schedule(5*time.Second, time.Second); start != 5*time.Second {
		t.Errorf("start = %v, want 5s", start)
	}
	if start := clock.Schedule(5*time.Second, time.Second); start != 6*time.Second {
		t.Errorf("queued start = %v, want 6s", start)
	}
}
