package http

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLogging_RecordsRequestFields(t *testing.T) {
	var logBuf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&logBuf, nil))

	handler := Logging(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"ok":true}`))
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("POST", "/subscribe", nil))

	assert.Equal(t, http.StatusCreated, rr.Code)
	logged := logBuf.String()
	assert.Contains(t, logged, "request completed")
	assert.Contains(t, logged, `"method":"POST"`)
	assert.Contains(t, logged, `"path":"/subscribe"`)
	assert.Contains(t, logged, `"status":201`)
}

func TestRecover_CatchesPanic(t *testing.T) {
	var logBuf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&logBuf, nil))

	handler := Recover(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("renderer wiring is broken")
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest("GET", "/subscribers", nil))

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Contains(t, logBuf.String(), "panic recovered")
	assert.NotContains(t, rr.Body.String(), "renderer wiring", "panic detail must not leak")
}

func TestLimitRequestBody_RejectsOversizedBody(t *testing.T) {
	handler := LimitRequestBody(64)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, err := io.ReadAll(r.Body); err != nil {
			http.Error(w, "body too large", http.StatusRequestEntityTooLarge)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))

	small := httptest.NewRequest("POST", "/subscribe", strings.NewReader(`{"email":"a@b.io"}`))
	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, small)
	assert.Equal(t, http.StatusOK, rr.Code)

	big := httptest.NewRequest("POST", "/subscribe", strings.NewReader(strings.Repeat("x", 1024)))
	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, big)
	assert.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)
}

func TestRateLimiter_EnforcesLimitPerIP(t *testing.T) {
	rl := NewRateLimiter(3, time.Minute)
	handler := rl.Limit(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	doReq := func(remoteAddr string) int {
		req := httptest.NewRequest("POST", "/subscribe", nil)
		req.RemoteAddr = remoteAddr
		rr := httptest.NewRecorder()
		handler.ServeHTTP(rr, req)
		return rr.Code
	}

	for i := 0; i < 3; i++ {
		assert.Equal(t, http.StatusOK, doReq("10.0.0.1:1234"), "request %d within limit", i+1)
	}
	assert.Equal(t, http.StatusTooManyRequests, doReq("10.0.0.1:1234"))

	// A different IP has its own window.
	assert.Equal(t, http.StatusOK, doReq("10.0.0.2:1234"))
}

func TestRateLimiter_WindowSlides(t *testing.T) {
	rl := NewRateLimiter(1, 50*time.Millisecond)
	handler := rl.Limit(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest("POST", "/subscribe", nil)
	req.RemoteAddr = "10.0.0.3:1234"

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusTooManyRequests, rr.Code)

	time.Sleep(60 * time.Millisecond)

	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusOK, rr.Code, "expired window must admit again")
}

func TestExtractIP(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		headers    map[string]string
		want       string
	}{
		{
			name:       "remote addr fallback",
			remoteAddr: "192.0.2.7:5678",
			want:       "192.0.2.7",
		},
		{
			name:       "x-forwarded-for first hop wins",
			remoteAddr: "10.0.0.1:1234",
			headers:    map[string]string{"X-Forwarded-For": "203.0.113.9, 10.0.0.1"},
			want:       "203.0.113.9",
		},
		{
			name:       "x-real-ip",
			remoteAddr: "10.0.0.1:1234",
			headers:    map[string]string{"X-Real-IP": "198.51.100.4"},
			want:       "198.51.100.4",
		},
		{
			name:       "garbage forwarded header falls through",
			remoteAddr: "192.0.2.8:5678",
			headers:    map[string]string{"X-Forwarded-For": "not-an-ip, also-bad"},
			want:       "192.0.2.8",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			req.RemoteAddr = tt.remoteAddr
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, extractIP(req))
		})
	}
}

func BenchmarkRateLimiter_Allow(b *testing.B) {
	rl := NewRateLimiter(1000000, time.Minute)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		rl.allow(fmt.Sprintf("10.0.%d.%d", i%256, i%100))
	}
}
