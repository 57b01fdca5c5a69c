package stats

import (
	"sync"
	"sync/atomic"
	"time"
)

// rateCounter counts elements and calculates the rate between two ticks.
type rateCounter struct {
	counter   int64
	sinceTick int64
	mu        sync.Mutex
	lastTick  time.Time
}

func (r *rateCounter) Add(n int) {
	atomic.AddInt64(&r.counter, int64(n))
	atomic.AddInt64(&r.sinceTick, int64(n))
}

func (r *rateCounter) Value() int64 {
	return atomic.LoadInt64(&r.counter)
}

// Tick returns the elements per second since the last tick. Returns 0 for
// the first tick.
func (r *rateCounter) Tick(now time.Time) float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := atomic.SwapInt64(&r.sinceTick, 0)
	var rps float64
	if !r.lastTick.IsZero() {
		if d := now.Sub(r.lastTick).Seconds(); d > 0 {
			rps = float64(n) / d
		}
	}
	r.lastTick = now
	return rps
}
