package ratelimiter

import (
	"sync"
	"time"
)

// FixedWindowRateLimiter counts requests per client IP and resets
// every window. One ticker clears the whole map, so counts never
// outlive the window.
type FixedWindowRateLimiter struct {
	mu      sync.Mutex
	clients map[string]int
	limit   int
	window  time.Duration
}

func NewFixedWindowLimiter(limit int, window time.Duration) *FixedWindowRateLimiter {
	rl := &FixedWindowRateLimiter{
		clients: make(map[string]int),
		limit:   limit,
		window:  window,
	}
	go rl.cleanup()
	return rl
}

func (rl *FixedWindowRateLimiter) cleanup() {
	ticker := time.NewTicker(rl.window)
	defer ticker.Stop()
	for range ticker.C {
		rl.mu.Lock()
		rl.clients = make(map[string]int)
		rl.mu.Unlock()
	}
}

func (rl *FixedWindowRateLimiter) Allow(ip string) (bool, time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	if rl.clients[ip] >= rl.limit {
		return false, rl.window
	}
	rl.clients[ip]++
	return true, 0
}
