package http

import (
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/mux"
)

// Limiter is a fixed-window per-key rate limiter. It is explicitly owned
// and injected rather than package-global so tests can construct one with
// a fake clock and reset it deterministically.
type Limiter struct {
	mu     sync.Mutex
	max    int
	window time.Duration
	counts map[string]*windowCount
	now    func() time.Time
}

type windowCount struct {
	start time.Time
	count int
}

func NewLimiter(max int, window time.Duration) *Limiter {
	return &Limiter{
		max:    max,
		window: window,
		counts: make(map[string]*windowCount),
		now:    time.Now,
	}
}

// Allow records one hit for key and reports whether it fits in the current
// window.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	wc, ok := l.counts[key]
	if !ok || now.Sub(wc.start) >= l.window {
		l.counts[key] = &windowCount{start: now, count: 1}
		return true
	}
	if wc.count >= l.max {
		return false
	}
	wc.count++
	return true
}

// Reset clears all recorded windows.
func (l *Limiter) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.counts = make(map[string]*windowCount)
}

// RateLimit rejects requests over the per-user budget for the given action.
// Must run after Authenticate.
func RateLimit(l *Limiter, action string) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := fmt.Sprintf("%s:%d", action, userIDFrom(r))
			if !l.Allow(key) {
				writeErrorMessage(w, http.StatusTooManyRequests, "rate limit exceeded, try again later")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
