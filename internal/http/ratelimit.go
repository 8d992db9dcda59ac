package http

import (
	"sync"
	"sync/atomic"
	"time"
)

// Only mutating endpoints go through the limiter; dashboard polling and HTMX
// partial refreshes are GETs and stay unlimited. The budget therefore only
// needs to cover form submissions, which a single household produces slowly.
const (
	mutationsPerWindow = 60
	limitWindow        = time.Minute
	limiterSweepEvery  = 5 * time.Minute
)

// rateLimiter counts mutations per client IP in fixed one-minute windows.
type rateLimiter struct {
	mu   sync.Mutex
	seen map[string]*ipWindow
	done chan struct{}
	once sync.Once
}

type ipWindow struct {
	start time.Time
	count int
}

func newRateLimiter() *rateLimiter {
	rl := &rateLimiter{
		seen: make(map[string]*ipWindow),
		done: make(chan struct{}),
	}
	go rl.sweepLoop()
	return rl
}

func (rl *rateLimiter) sweepLoop() {
	ticker := time.NewTicker(limiterSweepEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.sweep(time.Now())
		case <-rl.done:
			return
		}
	}
}

// sweep drops IPs whose window closed long ago so the map stays bounded even
// when many distinct addresses hit the server once.
func (rl *rateLimiter) sweep(now time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	for ip, w := range rl.seen {
		if now.Sub(w.start) > 2*limiterSweepEvery {
			delete(rl.seen, ip)
		}
	}
}

func (rl *rateLimiter) stop() {
	rl.once.Do(func() { close(rl.done) })
}

// allow reports whether another mutation from this IP fits in its current
// window. A full minute after a window opened, the next request opens a
// fresh one regardless of how many requests the old window absorbed.
func (rl *rateLimiter) allow(clientIP string, metrics *securityMetrics) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	w := rl.seen[clientIP]
	if w == nil || now.Sub(w.start) >= limitWindow {
		rl.seen[clientIP] = &ipWindow{start: now, count: 1}
		return true
	}

	w.count++
	if w.count > mutationsPerWindow {
		if metrics != nil {
			atomic.AddInt64(&metrics.rateLimitHits, 1)
		}
		return false
	}
	return true
}
