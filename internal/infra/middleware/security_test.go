package middleware

import (
	"context"
	"crypto/tls"
	"net/http"
	"net/http/httptest"
	"testing"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestSecurityHeaders(t *testing.T) {
	handler := SecurityHeaders(okHandler())

	req := httptest.NewRequest("GET", "/healthz", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	want := map[string]string{
		"X-Frame-Options":         "DENY",
		"X-Content-Type-Options":  "nosniff",
		"Content-Security-Policy": "default-src 'self'",
		"Referrer-Policy":         "strict-origin-when-cross-origin",
	}
	for header, value := range want {
		if got := w.Header().Get(header); got != value {
			t.Errorf("%s = %q, want %q", header, got, value)
		}
	}
	if hsts := w.Header().Get("Strict-Transport-Security"); hsts != "" {
		t.Errorf("HSTS set without TLS: %q", hsts)
	}
}

func TestSecurityHeadersHSTSWithTLS(t *testing.T) {
	handler := SecurityHeaders(okHandler())

	req := httptest.NewRequest("GET", "/healthz", nil)
	req.TLS = &tls.ConnectionState{}
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if got := w.Header().Get("Strict-Transport-Security"); got != "max-age=31536000; includeSubDomains" {
		t.Errorf("HSTS = %q", got)
	}
}

func TestRateLimitBlocksExcessiveTraffic(t *testing.T) {
	handler := RateLimit(context.Background(), RateLimitConfig{RequestsPerMin: 6, BurstSize: 3})(okHandler())

	var ok, blocked int
	for i := 0; i < 10; i++ {
		req := httptest.NewRequest("GET", "/ws", nil)
		req.RemoteAddr = "192.168.1.1:12345"
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		switch w.Code {
		case http.StatusOK:
			ok++
		case http.StatusTooManyRequests:
			blocked++
		}
	}
	if ok != 3 || blocked != 7 {
		t.Errorf("ok=%d blocked=%d, want burst of 3 allowed and 7 blocked", ok, blocked)
	}
}

func TestRateLimitSeparatesClientsByIP(t *testing.T) {
	handler := RateLimit(context.Background(), RateLimitConfig{RequestsPerMin: 6, BurstSize: 2})(okHandler())

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest("GET", "/ws", nil)
		req.RemoteAddr = "192.168.1.1:12345"
		handler.ServeHTTP(httptest.NewRecorder(), req)
	}

	// A different IP has its own bucket.
	req := httptest.NewRequest("GET", "/ws", nil)
	req.RemoteAddr = "192.168.1.2:12345"
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("fresh client got %d, want 200", w.Code)
	}
}

func TestClientIPSpoofingPrevention(t *testing.T) {
	tests := []struct {
		name           string
		remoteAddr     string
		xForwardedFor  string
		trustedProxies []string
		want           string
	}{
		{"no trusted proxies ignores XFF", "1.2.3.4:12345", "8.8.8.8", nil, "1.2.3.4"},
		{"untrusted peer ignores XFF", "1.2.3.4:12345", "8.8.8.8", []string{"10.0.0.1"}, "1.2.3.4"},
		{"trusted proxy honors XFF", "10.0.0.1:12345", "8.8.8.8", []string{"10.0.0.1"}, "8.8.8.8"},
		{"trusted proxy takes first hop", "10.0.0.1:12345", "8.8.8.8, 9.9.9.9", []string{"10.0.0.1"}, "8.8.8.8"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/ws", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.xForwardedFor != "" {
				req.Header.Set("X-Forwarded-For", tt.xForwardedFor)
			}
			if got := clientIP(req, tt.trustedProxies); got != tt.want {
				t.Errorf("clientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestClientIPXRealIP(t *testing.T) {
	req := httptest.NewRequest("GET", "/ws", nil)
	req.Header.Set("X-Real-IP", "203.0.113.1")
	req.RemoteAddr = "10.0.0.1:12345"

	if got := clientIP(req, []string{"10.0.0.1"}); got != "203.0.113.1" {
		t.Errorf("clientIP() = %q", got)
	}
}
