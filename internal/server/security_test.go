package server

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestAuthMiddleware(t *testing.T) {
	apiKey := "secret-key"
	middleware := AuthMiddleware(apiKey, nil, NewSuspiciousActivityDetector())

	tests := []struct {
		name           string
		providedKey    string
		path           string
		expectedStatus int
	}{
		{
			name:           "Valid API Key",
			providedKey:    apiKey,
			path:           "/api/v1/gacha/roll",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Invalid API Key",
			providedKey:    "wrong-key",
			path:           "/api/v1/gacha/roll",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Missing API Key",
			providedKey:    "",
			path:           "/api/v1/gacha/pity",
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "Public Path - Healthz",
			providedKey:    "",
			path:           "/healthz",
			expectedStatus: http.StatusOK,
		},
		{
			name:           "Public Path - Metrics",
			providedKey:    "",
			path:           "/metrics",
			expectedStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", tt.path, nil)
			if tt.providedKey != "" {
				req.Header.Set(HeaderAPIKey, tt.providedKey)
			}
			rec := httptest.NewRecorder()

			handler := middleware(okHandler())
			handler.ServeHTTP(rec, req)

			if rec.Code != tt.expectedStatus {
				t.Errorf("expected status %d, got %d", tt.expectedStatus, rec.Code)
			}
		})
	}
}

func TestSecurityHeadersMiddleware(t *testing.T) {
	handler := SecurityHeadersMiddleware()(okHandler())

	req := httptest.NewRequest("GET", "/api/v1/gacha/pity", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	assert.Equal(t, HeaderValueNoSniff, rec.Header().Get(HeaderContentType))
	assert.Equal(t, HeaderValueSameOrigin, rec.Header().Get(HeaderFrameOptions))
	assert.Equal(t, HeaderValueXSSBlock, rec.Header().Get(HeaderXSSProtection))
	assert.Equal(t, HeaderValueReferrerStrictOrigin, rec.Header().Get(HeaderReferrerPolicy))
}

func TestRequestSizeLimitMiddleware(t *testing.T) {
	handler := RequestSizeLimitMiddleware(16)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := io.ReadAll(r.Body); err != nil {
			w.WriteHeader(http.StatusRequestEntityTooLarge)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))

	t.Run("Small body passes", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/api/v1/gacha/roll", strings.NewReader(`{"bannerId":"b"}`))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("Oversized body rejected", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/api/v1/gacha/roll", strings.NewReader(strings.Repeat("x", 64)))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	})
}

func TestSecurityLoggingMiddlewareRateLimit(t *testing.T) {
	detector := NewSuspiciousActivityDetector()
	handler := SecurityLoggingMiddleware(nil, detector)(okHandler())

	req := httptest.NewRequest("GET", "/api/v1/gacha/pity", nil)
	req.RemoteAddr = "10.0.0.9:4242"

	var lastCode int
	for i := 0; i < 1001; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		lastCode = rec.Code
	}

	assert.Equal(t, http.StatusTooManyRequests, lastCode)
}

func TestExtractIP(t *testing.T) {
	tests := []struct {
		name           string
		remoteAddr     string
		forwardedFor   string
		trustedProxies []string
		expected       string
	}{
		{
			name:       "Direct connection",
			remoteAddr: "203.0.113.5:1234",
			expected:   "203.0.113.5",
		},
		{
			name:           "Forwarded-For from untrusted source is ignored",
			remoteAddr:     "203.0.113.5:1234",
			forwardedFor:   "198.51.100.7",
			trustedProxies: []string{"10.0.0.1"},
			expected:       "203.0.113.5",
		},
		{
			name:           "Forwarded-For from trusted proxy",
			remoteAddr:     "10.0.0.1:1234",
			forwardedFor:   "198.51.100.7",
			trustedProxies: []string{"10.0.0.1"},
			expected:       "198.51.100.7",
		},
		{
			name:           "Rightmost hop wins with chained proxies",
			remoteAddr:     "10.0.0.1:1234",
			forwardedFor:   "198.51.100.7, 192.0.2.44",
			trustedProxies: []string{"10.0.0.1"},
			expected:       "192.0.2.44",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.forwardedFor != "" {
				req.Header.Set(HeaderForwardedFor, tt.forwardedFor)
			}

			assert.Equal(t, tt.expected, extractIP(req, tt.trustedProxies))
		})
	}
}
