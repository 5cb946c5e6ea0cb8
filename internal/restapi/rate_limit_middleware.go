package restapi

import (
	"encoding/json"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"
	"planner.onebusaway.org/internal/app"
	"planner.onebusaway.org/internal/models"
)

const (
	noKeyBucket   = "__no_key__"
	limiterMaxAge = 10 * time.Minute
)

type keyLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimitMiddleware provides per-API-key rate limiting
type RateLimitMiddleware struct {
	limiters    map[string]*keyLimiter
	mu          sync.Mutex
	rateLimit   rate.Limit
	burstSize   int
	cleanupTick *time.Ticker
	done        chan struct{}
	stopOnce    sync.Once
	exemptKeys  map[string]bool
}

// NewRateLimitMiddleware allows ratePerSecond requests per interval for each
// API key. A negative rate disables limiting, zero rejects everything.
func NewRateLimitMiddleware(ratePerSecond int, interval time.Duration, exemptKeys ...string) *RateLimitMiddleware {
	var limit rate.Limit
	switch {
	case ratePerSecond < 0:
		limit = rate.Inf
	case ratePerSecond == 0:
		limit = 0
	default:
		limit = rate.Every(interval / time.Duration(ratePerSecond))
	}

	rl := &RateLimitMiddleware{
		limiters:    make(map[string]*keyLimiter),
		rateLimit:   limit,
		burstSize:   ratePerSecond,
		cleanupTick: time.NewTicker(5 * time.Minute),
		done:        make(chan struct{}),
		exemptKeys:  make(map[string]bool, len(exemptKeys)),
	}
	for _, key := range exemptKeys {
		rl.exemptKeys[key] = true
	}

	go rl.cleanup()
	return rl
}

func (rl *RateLimitMiddleware) getLimiter(apiKey string, now time.Time) *rate.Limiter {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	entry, ok := rl.limiters[apiKey]
	if !ok {
		entry = &keyLimiter{limiter: rate.NewLimiter(rl.rateLimit, rl.burstSize)}
		rl.limiters[apiKey] = entry
	}
	entry.lastSeen = now
	return entry.limiter
}

// Handler wraps next with the per-key limit.
func (rl *RateLimitMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		apiKey := app.RequestAPIKey(r)
		if apiKey == "" {
			apiKey = noKeyBucket
		}

		if rl.exemptKeys[apiKey] {
			next.ServeHTTP(w, r)
			return
		}

		if !rl.getLimiter(apiKey, time.Now()).Allow() {
			rl.sendRateLimitExceeded(w)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (rl *RateLimitMiddleware) retryAfter() time.Duration {
	switch {
	case rl.rateLimit == 0:
		return time.Hour
	case rl.rateLimit == rate.Inf:
		return time.Second
	default:
		return time.Duration(math.Ceil(float64(time.Second) / float64(rl.rateLimit)))
	}
}

func (rl *RateLimitMiddleware) sendRateLimitExceeded(w http.ResponseWriter) {
	retry := int(math.Ceil(rl.retryAfter().Seconds()))

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Retry-After", strconv.Itoa(retry))
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(rl.burstSize))
	w.Header().Set("X-RateLimit-Remaining", "0")
	w.WriteHeader(http.StatusTooManyRequests)

	_ = json.NewEncoder(w).Encode(models.NewResponse(http.StatusTooManyRequests, nil,
		"Rate limit exceeded. Please try again later."))
}

// cleanup drops limiters of keys idle for longer than limiterMaxAge.
func (rl *RateLimitMiddleware) cleanup() {
	for {
		select {
		case <-rl.done:
			return
		case now := <-rl.cleanupTick.C:
			rl.evictIdle(now)
		}
	}
}

func (rl *RateLimitMiddleware) evictIdle(now time.Time) {
	rl.mu.Lock()
	defer rl.mu.Unlock()
	for key, entry := range rl.limiters {
		if now.Sub(entry.lastSeen) > limiterMaxAge {
			delete(rl.limiters, key)
		}
	}
}

// Stop stops the cleanup goroutine
func (rl *RateLimitMiddleware) Stop() {
	rl.stopOnce.Do(func() {
		rl.cleanupTick.Stop()
		close(rl.done)
	})
}
