package httpmiddleware

import (
	"context"
	"math"
	"net"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"
)

// RateLimitConfig configures the sliding window rate limiter.
type RateLimitConfig struct {
	// Max is the maximum number of requests allowed per window.
	Max int
	// Window is the duration of each window.
	Window time.Duration
	// Methods limits which request methods are counted. Empty means all.
	Methods []string
	// KeyFunc extracts the rate limit key from a request.
	// If nil, the client IP address is used.
	KeyFunc func(*http.Request) string
}

// window counts requests in the current and the previous fixed window. The
// previous count is weighted by how much of it still overlaps the sliding
// window ending now.
type window struct {
	start time.Time
	curr  float64
	prev  float64
}

type limiter struct {
	max     int
	size    time.Duration
	mu      sync.Mutex
	windows map[string]*window
}

func (l *limiter) allow(key string, now time.Time) (remaining int, resetAt time.Time, ok bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	w := l.windows[key]
	if w == nil {
		w = &window{start: now.Truncate(l.size)}
		l.windows[key] = w
	}
	if elapsed := now.Sub(w.start); elapsed >= l.size {
		if elapsed < 2*l.size {
			w.prev = w.curr
		} else {
			w.prev = 0
		}
		w.curr = 0
		w.start = now.Truncate(l.size)
	}

	weight := 1 - now.Sub(w.start).Seconds()/l.size.Seconds()
	count := w.prev*max(weight, 0) + w.curr
	resetAt = w.start.Add(l.size)
	if count >= float64(l.max) {
		return 0, resetAt, false
	}

	w.curr++
	return max(int(float64(l.max)-count-1), 0), resetAt, true
}

// evict drops keys idle for two full windows.
func (l *limiter) evict(now time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	for key, w := range l.windows {
		if now.Sub(w.start) >= 2*l.size {
			delete(l.windows, key)
		}
	}
}

// RateLimit returns a middleware that enforces a per-key sliding window rate
// limit and answers 429 Too Many Requests with a Retry-After header once it
// is exceeded. Counted requests carry X-RateLimit-* headers. Idle keys are
// evicted in the background until ctx is done.
func RateLimit(ctx context.Context, cfg RateLimitConfig) Middleware {
	l := &limiter{
		max:     cfg.Max,
		size:    cfg.Window,
		windows: make(map[string]*window),
	}
	keyFunc := cfg.KeyFunc
	if keyFunc == nil {
		keyFunc = ClientIP
	}

	go func() {
		ticker := time.NewTicker(2 * cfg.Window)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				l.evict(now)
			}
		}
	}()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if len(cfg.Methods) > 0 && !slices.Contains(cfg.Methods, r.Method) {
				next.ServeHTTP(w, r)
				return
			}

			remaining, resetAt, ok := l.allow(keyFunc(r), time.Now())

			h := w.Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(cfg.Max))
			h.Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
			h.Set("X-RateLimit-Reset", strconv.FormatInt(resetAt.Unix(), 10))

			if !ok {
				retryAfter := max(time.Until(resetAt), 0)
				h.Set("Retry-After", strconv.Itoa(int(math.Ceil(retryAfter.Seconds()))))
				http.Error(w, "Too many requests, please slow down.", http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// ClientIP returns the first X-Forwarded-For hop, then X-Real-IP, then the
// host part of RemoteAddr.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
