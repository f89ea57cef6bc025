package middleware_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kurokeita/quotable/internal/platform/ctxutil"
	"github.com/kurokeita/quotable/internal/platform/middleware"
)

var okHandler = http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
	writer.WriteHeader(http.StatusOK)
})

func TestRequireAPIKey(t *testing.T) {
	tests := []struct {
		name       string
		cfg        middleware.ProtectionConfig
		header     string
		wantStatus int
	}{
		{"disabled_passes", middleware.ProtectionConfig{Enabled: false, APIKey: "secret"}, "", http.StatusOK},
		{"missing_key", middleware.ProtectionConfig{Enabled: true, APIKey: "secret"}, "", http.StatusUnauthorized},
		{"wrong_key", middleware.ProtectionConfig{Enabled: true, APIKey: "secret"}, "secreT", http.StatusUnauthorized},
		{"valid_key", middleware.ProtectionConfig{Enabled: true, APIKey: "secret"}, "secret", http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			request := httptest.NewRequest(http.MethodPost, "/api/v1/quotes", nil)
			if tt.header != "" {
				request.Header.Set("x-api-key", tt.header)
			}
			recorder := httptest.NewRecorder()

			middleware.RequireAPIKey(tt.cfg)(okHandler).ServeHTTP(recorder, request)

			assert.Equal(t, tt.wantStatus, recorder.Code)
		})
	}
}

func TestRequireAPIKey_MarksContext(t *testing.T) {
	var authorized bool
	next := http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		authorized = ctxutil.IsWriteAuthorized(request.Context())
	})

	request := httptest.NewRequest(http.MethodDelete, "/api/v1/quotes/x", nil)
	request.Header.Set("x-api-key", "secret")

	middleware.RequireAPIKey(middleware.ProtectionConfig{Enabled: true, APIKey: "secret"})(next).
		ServeHTTP(httptest.NewRecorder(), request)

	assert.True(t, authorized)
}

type fakeCounter struct {
	counts map[string]int64
	err    error
}

func (c *fakeCounter) Hit(_ context.Context, key string, window time.Duration) (int64, time.Duration, error) {
	if c.err != nil {
		return 0, 0, c.err
	}
	c.counts[key]++
	return c.counts[key], window / 2, nil
}

func TestWriteRateLimit(t *testing.T) {
	counter := &fakeCounter{counts: map[string]int64{}}
	handler := middleware.WriteRateLimit(counter, 2, time.Minute)(okHandler)

	send := func(method string) *httptest.ResponseRecorder {
		request := httptest.NewRequest(method, "/api/v1/quotes", nil)
		request.RemoteAddr = "203.0.113.9:4242"
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, request)
		return recorder
	}

	assert.Equal(t, http.StatusOK, send(http.MethodPost).Code)
	assert.Equal(t, http.StatusOK, send(http.MethodPatch).Code)

	limited := send(http.MethodDelete)
	assert.Equal(t, http.StatusTooManyRequests, limited.Code)
	assert.Equal(t, "30", limited.Header().Get("Retry-After"))

	// Reads are never counted.
	assert.Equal(t, http.StatusOK, send(http.MethodGet).Code)
	assert.EqualValues(t, 3, counter.counts["ratelimit:write:203.0.113.9"])
}

func TestWriteRateLimit_FailsOpen(t *testing.T) {
	counter := &fakeCounter{err: errors.New("redis down")}

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodPost, "/api/v1/upload", nil)
	middleware.WriteRateLimit(counter, 1, time.Minute)(okHandler).ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusOK, recorder.Code)
}

func TestWriteRateLimit_NilCounter(t *testing.T) {
	handler := middleware.WriteRateLimit(nil, 1, time.Minute)(okHandler)

	for range 3 {
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/", nil))
		assert.Equal(t, http.StatusOK, recorder.Code)
	}
}

func TestRateLimit_Burst(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	handler := middleware.RateLimit(ctx, 1, 2)(okHandler)

	codes := make([]int, 0, 3)
	for range 3 {
		request := httptest.NewRequest(http.MethodGet, "/", nil)
		request.Header.Set("X-Real-IP", "198.51.100.1")
		recorder := httptest.NewRecorder()
		handler.ServeHTTP(recorder, request)
		codes = append(codes, recorder.Code)
	}

	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)
}

type envConfig struct{ development bool }

func (c envConfig) IsDevelopment() bool { return c.development }

func TestCORS(t *testing.T) {
	tests := []struct {
		name      string
		dev       bool
		allowed   []string
		origin    string
		wantAllow string
	}{
		{"development_reflects_any", true, nil, "http://localhost:3000", "http://localhost:3000"},
		{"production_allowed", false, []string{"https://quotable.example"}, "https://quotable.example", "https://quotable.example"},
		{"production_rejected", false, []string{"https://quotable.example"}, "https://evil.example", ""},
		{"wildcard", false, []string{"*"}, "https://any.example", "https://any.example"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			request := httptest.NewRequest(http.MethodGet, "/api/v1/quotes", nil)
			request.Header.Set("Origin", tt.origin)
			recorder := httptest.NewRecorder()

			middleware.CORS(envConfig{development: tt.dev}, tt.allowed)(okHandler).ServeHTTP(recorder, request)

			assert.Equal(t, tt.wantAllow, recorder.Header().Get("Access-Control-Allow-Origin"))
		})
	}
}

func TestCORS_Preflight(t *testing.T) {
	request := httptest.NewRequest(http.MethodOptions, "/api/v1/quotes", nil)
	request.Header.Set("Origin", "http://localhost:3000")
	recorder := httptest.NewRecorder()

	middleware.CORS(envConfig{development: true}, nil)(okHandler).ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusNoContent, recorder.Code)
	assert.Contains(t, recorder.Header().Get("Access-Control-Allow-Headers"), "x-api-key")
}

func TestRequestID(t *testing.T) {
	var seen string
	next := http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		seen = ctxutil.GetRequestID(request.Context())
	})

	recorder := httptest.NewRecorder()
	middleware.RequestID()(next).ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))

	require.NotEmpty(t, seen)
	assert.Equal(t, seen, recorder.Header().Get("X-Request-ID"))

	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.Header.Set("X-Request-ID", "client-supplied")
	middleware.RequestID()(next).ServeHTTP(httptest.NewRecorder(), request)
	assert.Equal(t, "client-supplied", seen)
}

func TestRealIP(t *testing.T) {
	request := httptest.NewRequest(http.MethodGet, "/", nil)
	request.RemoteAddr = "192.0.2.1:1234"
	assert.Equal(t, "192.0.2.1", middleware.RealIP(request))

	request.Header.Set("X-Forwarded-For", "203.0.113.5, 10.0.0.1")
	assert.Equal(t, "203.0.113.5", middleware.RealIP(request))

	request.Header.Set("X-Real-IP", "198.51.100.7")
	assert.Equal(t, "198.51.100.7", middleware.RealIP(request))
}

func TestPanicRecovery(t *testing.T) {
	boom := http.HandlerFunc(func(http.ResponseWriter, *http.Request) { panic("boom") })

	recorder := httptest.NewRecorder()
	middleware.PanicRecovery()(boom).ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, recorder.Code)
	assert.JSONEq(t, `{"error":"An unexpected error occurred","code":"INTERNAL_ERROR"}`, recorder.Body.String())
}
