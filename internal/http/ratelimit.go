package http

import (
	"sync"
	"time"
)

// rateLimiter caps mutating requests per client IP over a one-minute
// window. Idle clients are swept from the map in the background.
type rateLimiter struct {
	mu           sync.Mutex
	limit        int
	clients      map[string]*clientWindow
	stopSweep    chan struct{}
	shutdownOnce sync.Once
}

type clientWindow struct {
	lastSeen time.Time
	requests int
}

func newRateLimiter(limit int) *rateLimiter {
	rl := &rateLimiter{
		limit:     limit,
		clients:   make(map[string]*clientWindow),
		stopSweep: make(chan struct{}),
	}
	go rl.sweepLoop()
	return rl
}

func (rl *rateLimiter) sweepLoop() {
	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.sweepIdle()
		case <-rl.stopSweep:
			return
		}
	}
}

// sweepIdle drops clients that have been quiet for more than ten minutes.
func (rl *rateLimiter) sweepIdle() {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := time.Now().Add(-10 * time.Minute)
	for ip, c := range rl.clients {
		if c.lastSeen.Before(cutoff) {
			delete(rl.clients, ip)
		}
	}
}

// stop terminates the background sweep goroutine.
func (rl *rateLimiter) stop() {
	rl.shutdownOnce.Do(func() {
		close(rl.stopSweep)
	})
}

// allow reports whether another request from the client fits in the
// current window. A window restarts after a minute of quiet.
func (rl *rateLimiter) allow(clientIP string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := time.Now()
	c, ok := rl.clients[clientIP]
	if !ok || now.Sub(c.lastSeen) > time.Minute {
		rl.clients[clientIP] = &clientWindow{lastSeen: now, requests: 1}
		return true
	}

	c.requests++
	c.lastSeen = now
	return c.requests <= rl.limit
}
