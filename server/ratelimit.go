package server

import (
	"net"
	"net/http"
	"sync"
	"time"
)

// Limits carried over from the original API: 200 requests per 15 minutes
// per client address.
const (
	rateLimitMax    = 200
	rateLimitWindow = 15 * time.Minute
)

// rateLimiter is a fixed-window per-client counter. Windows reset lazily on
// the next request after expiry, so no sweeper goroutine is needed.
type rateLimiter struct {
	max     int
	window  time.Duration
	lock    sync.Mutex
	clients map[string]*windowCount
	nowFunc func() time.Time
}

type windowCount struct {
	start time.Time
	count int
}

func newRateLimiter(max int, window time.Duration) *rateLimiter {
	return &rateLimiter{
		max:     max,
		window:  window,
		clients: make(map[string]*windowCount),
		nowFunc: time.Now,
	}
}

func (rl *rateLimiter) allow(client string) bool {
	rl.lock.Lock()
	defer rl.lock.Unlock()

	now := rl.nowFunc()
	wc, ok := rl.clients[client]
	if !ok || now.Sub(wc.start) >= rl.window {
		rl.clients[client] = &windowCount{start: now, count: 1}
		return true
	}
	wc.count++
	return wc.count <= rl.max
}

func (s *Server) RateLimitMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		host, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			host = r.RemoteAddr
		}
		if !s.limiter.allow(host) {
			writeStatus(w, http.StatusTooManyRequests)
			return
		}
		next(w, r)
	}
}
