package healthcheck

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zaptest"
)

func staticChecker(status Status, message string) Checker {
	return CheckerFunc(func(ctx context.Context) Check {
		return Check{Status: status, Message: message, LastChecked: time.Now()}
	})
}

func TestAggregateStatus(t *testing.T) {
	tests := []struct {
		name     string
		statuses []Status
		want     Status
	}{
		{"all healthy", []Status{StatusHealthy, StatusHealthy}, StatusHealthy},
		{"one down degrades", []Status{StatusHealthy, StatusUnhealthy}, StatusDegraded},
		{"all down is unhealthy", []Status{StatusUnhealthy, StatusUnhealthy}, StatusUnhealthy},
		{"no checkers is healthy", nil, StatusHealthy},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := New("test", zaptest.NewLogger(t))
			for i, s := range tt.statuses {
				h.Register(string(rune('a'+i)), staticChecker(s, ""))
			}

			resp := h.Check(context.Background())

			assert.Equal(t, tt.want, resp.Status)
			assert.Len(t, resp.Checks, len(tt.statuses))
		})
	}
}

func TestCheckCachesResults(t *testing.T) {
	h := New("test", zaptest.NewLogger(t))
	calls := 0
	h.Register("db", CheckerFunc(func(ctx context.Context) Check {
		calls++
		return Check{Status: StatusHealthy, LastChecked: time.Now()}
	}))

	h.Check(context.Background())
	h.Check(context.Background())

	assert.Equal(t, 1, calls, "second call within the TTL is served from cache")

	h.SetCacheTTL(0)
	h.Check(context.Background())
	assert.Equal(t, 2, calls)
}

func TestHandlerStatusCodes(t *testing.T) {
	h := New("test", zaptest.NewLogger(t))
	h.Register("db", staticChecker(StatusUnhealthy, "down"))

	rec := httptest.NewRecorder()
	h.Handler()(rec, httptest.NewRequest("GET", "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	degraded := New("test", zaptest.NewLogger(t))
	degraded.Register("db", staticChecker(StatusHealthy, ""))
	degraded.Register("cache", staticChecker(StatusUnhealthy, "down"))

	rec = httptest.NewRecorder()
	degraded.Handler()(rec, httptest.NewRequest("GET", "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code, "degraded stays in rotation")
	assert.Contains(t, rec.Body.String(), `"degraded"`)
}

func TestReadinessRequiresAllHealthy(t *testing.T) {
	h := New("test", zaptest.NewLogger(t))
	h.Register("db", staticChecker(StatusHealthy, ""))
	h.Register("cache", staticChecker(StatusUnhealthy, "down"))

	rec := httptest.NewRecorder()
	h.ReadinessHandler()(rec, httptest.NewRequest("GET", "/ready", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = httptest.NewRecorder()
	h.LivenessHandler()(rec, httptest.NewRequest("GET", "/live", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestHTTPChecker(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))
	defer server.Close()

	check := NewHTTPChecker(server.URL).Check(context.Background())
	assert.Equal(t, StatusHealthy, check.Status, "any response means reachable")

	server.Close()
	check = NewHTTPChecker(server.URL).Check(context.Background())
	assert.Equal(t, StatusUnhealthy, check.Status)
}
