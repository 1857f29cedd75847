package middleware

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimit_BurstThen429(t *testing.T) {
	h := RateLimit(1, 2, slog.New(slog.NewTextHandler(io.Discard, nil)))(okHandler())

	codes := make([]int, 0, 3)
	for range 3 {
		req := httptest.NewRequest(http.MethodPost, "/api/search/filters", nil)
		req.RemoteAddr = "203.0.113.7:5000"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
		if rec.Code == http.StatusTooManyRequests {
			assert.Equal(t, "RATE_LIMITED", errorCode(t, rec))
		}
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	// Another client has its own bucket.
	req := httptest.NewRequest(http.MethodPost, "/api/search/filters", nil)
	req.RemoteAddr = "203.0.113.8:5000"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		remote  string
		want    string
	}{
		{"remote addr", nil, "198.51.100.1:1234", "198.51.100.1"},
		{"forwarded chain", map[string]string{"X-Forwarded-For": "203.0.113.5, 10.0.0.1"}, "10.0.0.2:1", "203.0.113.5"},
		{"real ip", map[string]string{"X-Real-IP": "203.0.113.9"}, "10.0.0.2:1", "203.0.113.9"},
		{"garbage header", map[string]string{"X-Forwarded-For": "nope"}, "10.0.0.2:1", "10.0.0.2"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, clientIP(req))
		})
	}
}

func TestVisitorStore_SweepsStaleEntries(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	s := newVisitorStore(1, 1, time.Minute)
	s.now = func() time.Time { return now }

	s.get("a")
	now = now.Add(2 * time.Minute)
	s.get("b")

	assert.Len(t, s.visitors, 1)
	assert.Contains(t, s.visitors, "b")
}
