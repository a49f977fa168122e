package httpx_test

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aussiebroadwan/accounts/pkg/httpx"
	"github.com/stretchr/testify/require"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func fromAddr(h http.Handler, addr string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/v1/users", nil)
	req.RemoteAddr = addr
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name    string
		remote  string
		headers map[string]string
		want    string
	}{
		{name: "remote addr", remote: "192.168.1.1:12345", want: "192.168.1.1"},
		{name: "remote addr without port", remote: "192.168.1.1", want: "192.168.1.1"},
		{
			name:    "first forwarded hop",
			remote:  "10.0.0.1:1",
			headers: map[string]string{"X-Forwarded-For": "203.0.113.1, 10.0.0.1"},
			want:    "203.0.113.1",
		},
		{
			name:    "real ip",
			remote:  "10.0.0.1:1",
			headers: map[string]string{"X-Real-IP": " 203.0.113.2 "},
			want:    "203.0.113.2",
		},
		{
			name:    "empty forwarded entry falls through",
			remote:  "10.0.0.1:1",
			headers: map[string]string{"X-Forwarded-For": " , 10.0.0.9", "X-Real-IP": "203.0.113.3"},
			want:    "203.0.113.3",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			require.Equal(t, tt.want, httpx.ClientIP(req))
		})
	}
}

func TestJSONField(t *testing.T) {
	t.Run("normalises and restores body", func(t *testing.T) {
		body := `{"email":" Jane@Example.com ","password":"secret123"}`
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))

		require.Equal(t, "jane@example.com", httpx.JSONField("email")(req))

		rest, err := io.ReadAll(req.Body)
		require.NoError(t, err)
		require.Equal(t, body, string(rest))
	})

	for name, body := range map[string]string{
		"missing field": `{"password":"x"}`,
		"not json":      "email=jane",
		"not a string":  `{"email":42}`,
		"empty":         "",
	} {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
			require.Empty(t, httpx.JSONField("email")(req))
		})
	}
}

func TestJoinKeys(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"jane@x.com"}`))
	req.RemoteAddr = "192.168.1.1:12345"

	key := httpx.JoinKeys("|", httpx.ClientIP, httpx.JSONField("email"))
	require.Equal(t, "192.168.1.1|jane@x.com", key(req))

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{}`))
	req.RemoteAddr = "192.168.1.1:12345"
	require.Equal(t, "192.168.1.1", key(req), "empty parts are skipped")
}

func TestRateLimit(t *testing.T) {
	cfg := httpx.RateLimitConfig{RequestsPerWindow: 3, Window: time.Minute, Burst: 3}

	t.Run("blocks once the burst is spent", func(t *testing.T) {
		h := httpx.RateLimitByIP(cfg)(okHandler)
		for i := range 3 {
			require.Equal(t, http.StatusOK, fromAddr(h, "192.168.1.1:1").Code, "request %d", i+1)
		}

		rec := fromAddr(h, "192.168.1.1:1")
		require.Equal(t, http.StatusTooManyRequests, rec.Code)
		require.Equal(t, "20", rec.Header().Get("Retry-After"))
		require.Equal(t, "3", rec.Header().Get("X-RateLimit-Limit"))
		require.Equal(t, "1m0s", rec.Header().Get("X-RateLimit-Window"))
		require.Contains(t, rec.Body.String(), `"code":"RATE_LIMITED"`)
	})

	t.Run("keys are independent", func(t *testing.T) {
		h := httpx.RateLimitByIP(cfg)(okHandler)
		for range 3 {
			fromAddr(h, "192.168.1.1:1")
		}
		require.Equal(t, http.StatusTooManyRequests, fromAddr(h, "192.168.1.1:1").Code)
		require.Equal(t, http.StatusOK, fromAddr(h, "192.168.1.2:1").Code)
	})

	t.Run("rejected requests do not consume tokens", func(t *testing.T) {
		h := httpx.RateLimitByIP(httpx.RateLimitConfig{RequestsPerWindow: 60, Window: time.Minute, Burst: 1})(okHandler)
		require.Equal(t, http.StatusOK, fromAddr(h, "192.168.1.1:1").Code)
		for range 5 {
			rec := fromAddr(h, "192.168.1.1:1")
			require.Equal(t, http.StatusTooManyRequests, rec.Code)
			require.Equal(t, "1", rec.Header().Get("Retry-After"))
		}
	})

	t.Run("empty key is not limited", func(t *testing.T) {
		h := httpx.RateLimit(httpx.RateLimitConfig{RequestsPerWindow: 1, Window: time.Minute, Burst: 1},
			func(*http.Request) string { return "" })(okHandler)
		for range 3 {
			require.Equal(t, http.StatusOK, fromAddr(h, "192.168.1.1:1").Code)
		}
	})
}

func TestRateLimitByIPAndJSONField(t *testing.T) {
	h := httpx.RateLimitByIPAndJSONField(
		httpx.RateLimitConfig{RequestsPerWindow: 2, Window: time.Minute, Burst: 2}, "email",
	)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// The handler still sees the full body.
		b, _ := io.ReadAll(r.Body)
		require.Contains(t, string(b), `"password"`)
		w.WriteHeader(http.StatusOK)
	}))

	login := func(email string) int {
		req := httptest.NewRequest(http.MethodPost, "/v1/auth/token",
			strings.NewReader(fmt.Sprintf(`{"email":%q,"password":"x"}`, email)))
		req.RemoteAddr = "192.168.1.1:12345"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec.Code
	}

	require.Equal(t, http.StatusOK, login("jane@x.com"))
	require.Equal(t, http.StatusOK, login("JANE@x.com"))
	require.Equal(t, http.StatusTooManyRequests, login("jane@x.com"))
	require.Equal(t, http.StatusOK, login("john@x.com"))
}

func TestRateLimitProfiles(t *testing.T) {
	for name, cfg := range map[string]httpx.RateLimitConfig{
		"strict":   httpx.StrictLimit,
		"moderate": httpx.ModerateLimit,
		"lenient":  httpx.LenientLimit,
	} {
		t.Run(name, func(t *testing.T) {
			require.Positive(t, cfg.RequestsPerWindow)
			require.Positive(t, cfg.Window)
			require.Positive(t, cfg.Burst)
		})
	}

	require.Less(t, httpx.StrictLimit.RequestsPerWindow, httpx.ModerateLimit.RequestsPerWindow)
	require.Less(t, httpx.ModerateLimit.RequestsPerWindow, httpx.LenientLimit.RequestsPerWindow)
}

func TestRateLimitFromEnv(t *testing.T) {
	def := httpx.RateLimitConfig{RequestsPerWindow: 10, Window: time.Minute, Burst: 10}

	tests := []struct {
		name    string
		env     map[string]string
		want    httpx.RateLimitConfig
		wantErr bool
	}{
		{name: "defaults", want: def},
		{
			name: "requests",
			env:  map[string]string{"RATELIMIT_TEST_REQUESTS": "50"},
			want: httpx.RateLimitConfig{RequestsPerWindow: 50, Window: time.Minute, Burst: 10},
		},
		{
			name: "window",
			env:  map[string]string{"RATELIMIT_TEST_WINDOW_SEC": "120"},
			want: httpx.RateLimitConfig{RequestsPerWindow: 10, Window: 2 * time.Minute, Burst: 10},
		},
		{
			name: "all",
			env: map[string]string{
				"RATELIMIT_TEST_REQUESTS":   "200",
				"RATELIMIT_TEST_WINDOW_SEC": "30",
				"RATELIMIT_TEST_BURST":      "250",
			},
			want: httpx.RateLimitConfig{RequestsPerWindow: 200, Window: 30 * time.Second, Burst: 250},
		},
		{
			name: "zero keeps default",
			env:  map[string]string{"RATELIMIT_TEST_BURST": "0"},
			want: def,
		},
		{
			name:    "malformed",
			env:     map[string]string{"RATELIMIT_TEST_REQUESTS": "lots"},
			want:    def,
			wantErr: true,
		},
		{
			name:    "negative",
			env:     map[string]string{"RATELIMIT_TEST_WINDOW_SEC": "-10"},
			want:    def,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			got, err := httpx.RateLimitFromEnv("TEST", def)
			if tt.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
			require.Equal(t, tt.want, got)
		})
	}
}

func BenchmarkRateLimitManyIPs(b *testing.B) {
	h := httpx.RateLimitByIP(httpx.RateLimitConfig{RequestsPerWindow: 1_000_000, Window: time.Minute, Burst: 1000})(okHandler)
	for i := 0; b.Loop(); i++ {
		fromAddr(h, fmt.Sprintf("192.168.%d.%d:1", i%255, (i/255)%255))
	}
}
