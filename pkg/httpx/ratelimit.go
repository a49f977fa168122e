package httpx

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/aussiebroadwan/accounts/pkg/slogx"
	"github.com/caarlos0/env/v11"
	"golang.org/x/time/rate"
)

// RateLimitConfig is a token bucket refilled at RequestsPerWindow per Window
// holding at most Burst tokens.
type RateLimitConfig struct {
	RequestsPerWindow int
	Window            time.Duration
	Burst             int
}

// limit converts the window into a per-second refill rate.
func (c RateLimitConfig) limit() rate.Limit {
	if c.Window <= 0 {
		return rate.Inf
	}
	return rate.Limit(float64(c.RequestsPerWindow) / c.Window.Seconds())
}

// refillTime is how long an empty bucket takes to fill up again. A key idle
// for longer than this is indistinguishable from a new one.
func (c RateLimitConfig) refillTime() time.Duration {
	if c.RequestsPerWindow <= 0 {
		return c.Window
	}
	return time.Duration(float64(c.Window) * float64(c.Burst) / float64(c.RequestsPerWindow))
}

// Profiles used by the account routes.
var (
	// StrictLimit guards credential endpoints: 5 per minute, all usable at once.
	StrictLimit = RateLimitConfig{RequestsPerWindow: 5, Window: time.Minute, Burst: 5}

	// ModerateLimit guards writes to existing accounts.
	ModerateLimit = RateLimitConfig{RequestsPerWindow: 20, Window: time.Minute, Burst: 20}

	// LenientLimit guards reads and probes.
	LenientLimit = RateLimitConfig{RequestsPerWindow: 100, Window: time.Minute, Burst: 100}
)

// rateLimitEnv mirrors the RATELIMIT_<PROFILE>_* variables. Zero means unset.
type rateLimitEnv struct {
	Requests  int `env:"REQUESTS"`
	WindowSec int `env:"WINDOW_SEC"`
	Burst     int `env:"BURST"`
}

// RateLimitFromEnv overlays RATELIMIT_<profile>_REQUESTS, _WINDOW_SEC and
// _BURST on def. Unset variables keep the default; malformed or negative
// values are an error.
func RateLimitFromEnv(profile string, def RateLimitConfig) (RateLimitConfig, error) {
	var o rateLimitEnv
	prefix := "RATELIMIT_" + profile + "_"
	if err := env.ParseWithOptions(&o, env.Options{Prefix: prefix}); err != nil {
		return def, fmt.Errorf("rate limit %s: %w", profile, err)
	}
	if o.Requests < 0 || o.WindowSec < 0 || o.Burst < 0 {
		return def, fmt.Errorf("rate limit %s: values must be positive", profile)
	}

	cfg := def
	if o.Requests > 0 {
		cfg.RequestsPerWindow = o.Requests
	}
	if o.WindowSec > 0 {
		cfg.Window = time.Duration(o.WindowSec) * time.Second
	}
	if o.Burst > 0 {
		cfg.Burst = o.Burst
	}
	return cfg, nil
}

// KeyExtractor groups requests into buckets. An empty key bypasses the limit.
type KeyExtractor func(*http.Request) string

// ClientIP keys on the originating client address, honouring
// X-Forwarded-For (first hop) and X-Real-IP from a fronting proxy.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := strings.TrimSpace(first); ip != "" {
			return ip
		}
	}
	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// JoinKeys concatenates the non-empty keys of several extractors.
func JoinKeys(sep string, extractors ...KeyExtractor) KeyExtractor {
	return func(r *http.Request) string {
		parts := make([]string, 0, len(extractors))
		for _, extract := range extractors {
			if k := extract(r); k != "" {
				parts = append(parts, k)
			}
		}
		return strings.Join(parts, sep)
	}
}

// JSONField keys on a top-level string field of a JSON body, lower-cased.
// The body is buffered and put back for the handler.
func JSONField(field string) KeyExtractor {
	return func(r *http.Request) string {
		if r.Body == nil || r.Body == http.NoBody {
			return ""
		}
		raw, err := io.ReadAll(io.LimitReader(r.Body, MaxBodyBytes))
		_ = r.Body.Close()
		r.Body = io.NopCloser(bytes.NewReader(raw))
		if err != nil {
			return ""
		}

		var body map[string]json.RawMessage
		if json.Unmarshal(raw, &body) != nil {
			return ""
		}
		var v string
		if json.Unmarshal(body[field], &v) != nil {
			return ""
		}
		return strings.ToLower(strings.TrimSpace(v))
	}
}

type bucket struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// keyedLimiter holds one token bucket per key. Buckets idle for longer than
// their refill time are dropped on the next sweep.
type keyedLimiter struct {
	cfg   RateLimitConfig
	now   func() time.Time
	idle  time.Duration
	sweep time.Duration

	mu        sync.Mutex
	buckets   map[string]*bucket
	lastSweep time.Time
}

func newKeyedLimiter(cfg RateLimitConfig, now func() time.Time) *keyedLimiter {
	if now == nil {
		now = time.Now
	}
	idle := max(cfg.refillTime(), time.Minute)
	return &keyedLimiter{
		cfg:       cfg,
		now:       now,
		idle:      idle,
		sweep:     idle,
		buckets:   make(map[string]*bucket),
		lastSweep: now(),
	}
}

// allow takes one token for key. When none is available it returns false
// and the wait until the next one.
func (kl *keyedLimiter) allow(key string) (bool, time.Duration) {
	kl.mu.Lock()
	defer kl.mu.Unlock()

	now := kl.now()
	if now.Sub(kl.lastSweep) >= kl.sweep {
		for k, b := range kl.buckets {
			if now.Sub(b.lastSeen) >= kl.idle {
				delete(kl.buckets, k)
			}
		}
		kl.lastSweep = now
	}

	b, ok := kl.buckets[key]
	if !ok {
		b = &bucket{limiter: rate.NewLimiter(kl.cfg.limit(), kl.cfg.Burst)}
		kl.buckets[key] = b
	}
	b.lastSeen = now

	res := b.limiter.ReserveN(now, 1)
	if !res.OK() {
		return false, kl.cfg.Window
	}
	if delay := res.DelayFrom(now); delay > 0 {
		res.CancelAt(now)
		return false, delay
	}
	return true, 0
}

// size reports the number of live buckets.
func (kl *keyedLimiter) size() int {
	kl.mu.Lock()
	defer kl.mu.Unlock()
	return len(kl.buckets)
}

// RateLimit rejects requests once the bucket for their key is empty,
// answering 429 RATE_LIMITED with a Retry-After header.
func RateLimit(cfg RateLimitConfig, key KeyExtractor) Middleware {
	return rateLimit(newKeyedLimiter(cfg, nil), key)
}

func rateLimit(kl *keyedLimiter, key KeyExtractor) Middleware {
	limitHeader := strconv.Itoa(kl.cfg.RequestsPerWindow)
	windowHeader := kl.cfg.Window.String()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			k := key(r)
			if k == "" {
				slogx.FromContext(r.Context()).Warn("rate limit key missing, request not limited",
					"path", r.URL.Path)
				next.ServeHTTP(w, r)
				return
			}

			ok, wait := kl.allow(k)
			if ok {
				next.ServeHTTP(w, r)
				return
			}

			retryAfter := max(int((wait+time.Second-1)/time.Second), 1)
			w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
			w.Header().Set("X-RateLimit-Limit", limitHeader)
			w.Header().Set("X-RateLimit-Window", windowHeader)

			slogx.FromContext(r.Context()).Warn("rate limit exceeded",
				"key", k,
				"path", r.URL.Path,
				"retry_after", retryAfter,
			)
			WriteError(w, http.StatusTooManyRequests, CodeRateLimited,
				"Too many requests. Please try again later.")
		})
	}
}

// RateLimitByIP limits per client address.
func RateLimitByIP(cfg RateLimitConfig) Middleware {
	return RateLimit(cfg, ClientIP)
}

// RateLimitByIPAndJSONField limits per client address and body field, so
// login attempts against one email do not lock out others on a shared NAT.
func RateLimitByIPAndJSONField(cfg RateLimitConfig, field string) Middleware {
	return RateLimit(cfg, JoinKeys("|", ClientIP, JSONField(field)))
}
