package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/hitoshi/flavorcast/internal/middleware"
	"github.com/hitoshi/flavorcast/internal/model"
	"github.com/hitoshi/flavorcast/internal/schedule"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T, searcher FlavorSearcher, burst int) (http.Handler, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	rl := middleware.NewRateLimiter(middleware.RateLimiterConfigPerMinute(1, burst), logger)
	t.Cleanup(rl.Stop)

	return NewRouter(&RouterDeps{
		Logger:         logger,
		RateLimiter:    rl,
		FlavorSearcher: searcher,
		Schedule:       schedule.New(),
		Location:       model.Location{Name: "The Dairy Godmother"},
		MetricsHandler: http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Write([]byte("# metrics\n"))
		}),
	}), &buf
}

func TestNewRouter_Endpoints(t *testing.T) {
	router, _ := newTestRouter(t, &mockSearcher{}, 100)

	tests := []struct {
		path string
		want int
	}{
		{"/health", http.StatusOK},
		{"/metrics", http.StatusOK},
		{"/api/flavors?date=2017-05-29", http.StatusOK},
		{"/api/status?at=2017-05-29T18:00:00Z", http.StatusOK},
		{"/api/hours?date=2017-05-29", http.StatusOK},
		{"/api/hours/week", http.StatusOK},
		{"/api/location", http.StatusOK},
		{"/api/flavors?date=bogus", http.StatusBadRequest},
		{"/api/feeds", http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))
			assert.Equal(t, tt.want, w.Code)
		})
	}
}

func TestNewRouter_NotFoundUsesUnifiedError(t *testing.T) {
	router, _ := newTestRouter(t, &mockSearcher{}, 100)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nope", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
	var body middleware.ErrorResponseBody
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	assert.Equal(t, model.ErrCodeNotFound, body.Code)
}

func TestNewRouter_AppliesMiddlewareStack(t *testing.T) {
	router, logs := newTestRouter(t, &mockSearcher{}, 100)

	req := httptest.NewRequest(http.MethodGet, "/api/location", nil)
	req.Header.Set(middleware.RequestIDHeader, "trace-7")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, "trace-7", w.Header().Get(middleware.RequestIDHeader))
	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Contains(t, logs.String(), `"request_id":"trace-7"`)
	assert.Contains(t, logs.String(), `"path":"/api/location"`)
}

func TestNewRouter_RecoversPanickingSearcher(t *testing.T) {
	searcher := &mockSearcher{searchFn: func(ctx context.Context, date time.Time) model.FlavorResult {
		panic("boom")
	}}
	router, logs := newTestRouter(t, searcher, 100)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/flavors", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, logs.String(), "panic recovered")
}

func TestNewRouter_RateLimitsAPIButNotHealth(t *testing.T) {
	router, _ := newTestRouter(t, &mockSearcher{}, 1)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/location", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/location", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	for i := 0; i < 3; i++ {
		w = httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	}
}

func TestNewRouter_WithoutMetricsHandler(t *testing.T) {
	router := NewRouter(&RouterDeps{
		Logger:         slog.New(slog.NewJSONHandler(&bytes.Buffer{}, nil)),
		FlavorSearcher: &mockSearcher{},
		Schedule:       schedule.New(),
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
