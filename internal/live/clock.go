package live

import (
	"sync"
	"time"
)

// playbackClock schedules audio buffers back to back: each buffer starts
// at the later of "now" and the previous buffer's end, so playback never
// overlaps and never inserts unnecessary silence.
type playbackClock struct {
	mu   sync.Mutex
	next time.Duration
}

// Schedule returns the start offset for a buffer of the given duration,
// where now is the current position on the playback timeline.
func (c *playbackClock) Schedule(now, duration time.Duration) time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()

	start := c.next
	if now > start {
		start = now
	}
	c.next = start + duration
	return start
}
