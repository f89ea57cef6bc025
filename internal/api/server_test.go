package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kurokeita/quotable/internal/api"
	"github.com/kurokeita/quotable/internal/core/author"
	"github.com/kurokeita/quotable/internal/core/quote"
	"github.com/kurokeita/quotable/internal/core/tag"
	"github.com/kurokeita/quotable/internal/core/upload"
	"github.com/kurokeita/quotable/internal/platform/config"
	"github.com/kurokeita/quotable/internal/platform/middleware"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func healthy(context.Context) error { return nil }

func newServer(t *testing.T, deps api.HealthDependencies) http.Handler {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	guard := middleware.RequireAPIKey(middleware.ProtectionConfig{Enabled: true, APIKey: "secret"})
	liveness, readiness := api.NewHealthHandlers(deps, discard)

	cfg := &config.Config{
		ServerPort:     "0",
		Environment:    "production",
		AllowedOrigins: []string{"https://quotes.example"},
	}

	server := api.NewServer(ctx, cfg, discard, api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Authors:   author.NewHandler(nil, guard),
		Quotes:    quote.NewHandler(nil, guard),
		Tags:      tag.NewHandler(nil),
		Upload:    upload.NewHandler(nil, 1<<20, guard),
	})
	return server.Handler()
}

func decode(t *testing.T, recorder *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	return body
}

func TestLiveness(t *testing.T) {
	handler := newServer(t, api.HealthDependencies{})

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, recorder.Code)
	assert.JSONEq(t, `{"data":{"status":"ok"}}`, recorder.Body.String())
	assert.NotEmpty(t, recorder.Header().Get("X-Request-ID"))
}

func TestReadiness(t *testing.T) {
	down := func(context.Context) error { return errors.New("connection refused") }

	tests := []struct {
		name       string
		deps       api.HealthDependencies
		wantStatus int
		wantState  string
		wantChecks int
	}{
		{
			name:       "all_healthy",
			deps:       api.HealthDependencies{CheckDatabase: healthy, CheckCache: healthy},
			wantStatus: http.StatusOK,
			wantState:  "ready",
			wantChecks: 2,
		},
		{
			name:       "cache_not_configured",
			deps:       api.HealthDependencies{CheckDatabase: healthy},
			wantStatus: http.StatusOK,
			wantState:  "ready",
			wantChecks: 1,
		},
		{
			name:       "cache_down",
			deps:       api.HealthDependencies{CheckDatabase: healthy, CheckCache: down},
			wantStatus: http.StatusServiceUnavailable,
			wantState:  "degraded",
			wantChecks: 2,
		},
		{
			name:       "database_down",
			deps:       api.HealthDependencies{CheckDatabase: down},
			wantStatus: http.StatusServiceUnavailable,
			wantState:  "degraded",
			wantChecks: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := newServer(t, tt.deps)

			recorder := httptest.NewRecorder()
			handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/ready", nil))

			assert.Equal(t, tt.wantStatus, recorder.Code)
			data := decode(t, recorder)["data"].(map[string]any)
			assert.Equal(t, tt.wantState, data["status"])
			assert.Equal(t, "quotable-api", data["app"])
			assert.Len(t, data["checks"], tt.wantChecks)
		})
	}
}

func TestWriteRoutesRequireAPIKey(t *testing.T) {
	handler := newServer(t, api.HealthDependencies{})

	tests := []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/api/v1/authors"},
		{http.MethodPatch, "/api/v1/authors/0192d3a4-5b6c-7d8e-9f00-112233445566"},
		{http.MethodDelete, "/api/v1/authors/0192d3a4-5b6c-7d8e-9f00-112233445566"},
		{http.MethodPost, "/api/v1/quotes"},
		{http.MethodPatch, "/api/v1/quotes/0192d3a4-5b6c-7d8e-9f00-112233445566"},
		{http.MethodDelete, "/api/v1/quotes/0192d3a4-5b6c-7d8e-9f00-112233445566"},
		{http.MethodPost, "/api/v1/upload"},
	}

	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			request := httptest.NewRequest(tt.method, tt.path, strings.NewReader(`{}`))
			request.Header.Set("x-api-key", "wrong")

			recorder := httptest.NewRecorder()
			handler.ServeHTTP(recorder, request)

			assert.Equal(t, http.StatusUnauthorized, recorder.Code)
			assert.Equal(t, "UNAUTHORIZED", decode(t, recorder)["code"])
		})
	}
}

func TestUnknownRoute(t *testing.T) {
	handler := newServer(t, api.HealthDependencies{})

	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/api/v2/quotes", nil))

	assert.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestCORS_AllowedOrigin(t *testing.T) {
	handler := newServer(t, api.HealthDependencies{})

	tests := []struct {
		origin string
		want   string
	}{
		{"https://quotes.example", "https://quotes.example"},
		{"https://evil.example", ""},
	}

	for _, tt := range tests {
		t.Run(tt.origin, func(t *testing.T) {
			request := httptest.NewRequest(http.MethodOptions, "/api/v1/quotes", nil)
			request.Header.Set("Origin", tt.origin)

			recorder := httptest.NewRecorder()
			handler.ServeHTTP(recorder, request)

			assert.Equal(t, http.StatusNoContent, recorder.Code)
			assert.Equal(t, tt.want, recorder.Header().Get("Access-Control-Allow-Origin"))
		})
	}
}
