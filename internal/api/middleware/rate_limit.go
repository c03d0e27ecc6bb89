package middleware

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// IPRateLimiter limits each client to a fixed number of requests per minute.
// Clients are keyed by remote address; X-Forwarded-For and X-Real-IP are only
// honoured after WithTrustedProxy(true).
type IPRateLimiter struct {
	mu         sync.Mutex
	limiters   map[string]*clientLimiter
	rate       rate.Limit
	burst      int
	trustProxy bool
	now        func() time.Time
}

// NewIPRateLimiter creates a limiter allowing perMinute requests with the given burst
func NewIPRateLimiter(perMinute, burst int) *IPRateLimiter {
	if perMinute < 1 {
		perMinute = 1
	}
	if burst < 1 {
		burst = 1
	}
	return &IPRateLimiter{
		limiters: make(map[string]*clientLimiter),
		rate:     rate.Every(time.Minute / time.Duration(perMinute)),
		burst:    burst,
		now:      time.Now,
	}
}

// WithTrustedProxy makes the limiter key clients by forwarding headers. Enable
// only when a reverse proxy overwrites them.
func (i *IPRateLimiter) WithTrustedProxy(trust bool) *IPRateLimiter {
	i.trustProxy = trust
	return i
}

// WithClock replaces the time source used for idle tracking
func (i *IPRateLimiter) WithClock(now func() time.Time) *IPRateLimiter {
	i.now = now
	return i
}

// GetLimiter returns the rate limiter for a client
func (i *IPRateLimiter) GetLimiter(client string) *rate.Limiter {
	i.mu.Lock()
	defer i.mu.Unlock()

	entry, exists := i.limiters[client]
	if !exists {
		entry = &clientLimiter{limiter: rate.NewLimiter(i.rate, i.burst)}
		i.limiters[client] = entry
	}
	entry.lastSeen = i.now()
	return entry.limiter
}

// Len returns the number of tracked clients
func (i *IPRateLimiter) Len() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return len(i.limiters)
}

// Sweep drops clients not seen for longer than idle and returns how many were removed
func (i *IPRateLimiter) Sweep(idle time.Duration) int {
	i.mu.Lock()
	defer i.mu.Unlock()

	cutoff := i.now().Add(-idle)
	removed := 0
	for client, entry := range i.limiters {
		if entry.lastSeen.Before(cutoff) {
			delete(i.limiters, client)
			removed++
		}
	}
	return removed
}

// StartSweeper runs Sweep every interval until ctx is done
func (i *IPRateLimiter) StartSweeper(ctx context.Context, interval, idle time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				i.Sweep(idle)
			}
		}
	}()
}

// Middleware returns the rate limiting middleware
func (i *IPRateLimiter) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !i.GetLimiter(clientIP(r, i.trustProxy)).Allow() {
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Retry-After", "60")
			w.WriteHeader(http.StatusTooManyRequests)
			json.NewEncoder(w).Encode(map[string]string{
				"error": "Too many requests, please try again later.",
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientIP extracts the client IP from request; forwarding headers count only when trusted
func clientIP(r *http.Request, trustForwarded bool) string {
	if trustForwarded {
		if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
			first, _, _ := strings.Cut(xff, ",")
			return strings.TrimSpace(first)
		}
		if xri := r.Header.Get("X-Real-IP"); xri != "" {
			return xri
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
