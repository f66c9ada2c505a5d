package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/macroplan/v1/internal/domain/suggestion"
	"github.com/macroplan/v1/internal/infrastructure/http/middleware"
	"github.com/macroplan/v1/internal/ports/inbound"
	"github.com/macroplan/v1/internal/ports/outbound"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type stubService struct {
	submitID     uuid.UUID
	submitEvents []suggestion.Event
	submitErr    error
	pollResult   suggestion.Request
	pollErr      error
	cancelErr    error
}

func (s *stubService) Submit(ctx context.Context, cmd inbound.SubmitSuggestionCommand) (uuid.UUID, <-chan suggestion.Event, error) {
	if s.submitErr != nil {
		return uuid.Nil, nil, s.submitErr
	}
	events := make(chan suggestion.Event, len(s.submitEvents))
	for _, e := range s.submitEvents {
		events <- e
	}
	close(events)
	return s.submitID, events, nil
}

func (s *stubService) Poll(ctx context.Context, userID, requestID uuid.UUID) (suggestion.Request, error) {
	return s.pollResult, s.pollErr
}

func (s *stubService) Cancel(ctx context.Context, userID, requestID uuid.UUID) error {
	return s.cancelErr
}

type stubModelGateway struct{}

func (stubModelGateway) Resolve(ctx context.Context, userID uuid.UUID) (outbound.ProviderChain, error) {
	return nil, suggestion.ErrProvider
}

func (stubModelGateway) ListModels(ctx context.Context, userID uuid.UUID) (map[string][]outbound.ModelInfo, error) {
	return map[string][]outbound.ModelInfo{
		"ollama": {{ID: "llama3.2:3b", Name: "llama3.2:3b", Provider: "ollama"}},
	}, nil
}

func newTestRouter(t *testing.T, service inbound.SuggestionService) (http.Handler, uuid.UUID) {
	t.Helper()
	h := NewSuggestHandlers(service, stubModelGateway{}, zaptest.NewLogger(t))
	userID := uuid.New()

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			next.ServeHTTP(w, req.WithContext(middleware.WithUserID(req.Context(), userID)))
		})
	})
	r.Post("/ai/suggest", h.Submit)
	r.Get("/ai/suggest/{id}", h.Poll)
	r.Post("/ai/suggest/{id}/cancel", h.Cancel)
	r.Get("/ai/models", h.Models)
	return r, userID
}

func TestSubmitStreamsEvents(t *testing.T) {
	id := uuid.New()
	service := &stubService{
		submitID: id,
		submitEvents: []suggestion.Event{
			{RequestID: id, Status: suggestion.StatusContactingProvider},
			{RequestID: id, Status: suggestion.StatusReady, Suggestions: []suggestion.Suggestion{{FoodID: 12, Quantity: 1}}},
		},
	}
	router, _ := newTestRouter(t, service)

	req := httptest.NewRequest("POST", "/ai/suggest", strings.NewReader(`{"meal_id":7,"target_calories":600}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/event-stream", rec.Header().Get("Content-Type"))

	body := rec.Body.String()
	frames := strings.Split(strings.TrimSpace(body), "\n\n")
	require.Len(t, frames, 3, "queued frame plus two pipeline events")
	assert.Contains(t, frames[0], `"queued"`)
	assert.Contains(t, frames[2], `"ready"`)
	assert.Contains(t, frames[2], `"food_id":12`)
}

func TestSubmitRejectsBadPayload(t *testing.T) {
	router, _ := newTestRouter(t, &stubService{})

	for _, body := range []string{
		`not json`,
		`{"meal_id":0,"target_calories":600}`,
		`{"meal_id":7,"target_calories":-5}`,
		`{"meal_id":7,"target_calories":600,"mode":"banquet"}`,
		`{"meal_id":7,"target_calories":600,"date":"08/20/2026"}`,
	} {
		req := httptest.NewRequest("POST", "/ai/suggest", strings.NewReader(body))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "payload: %s", body)
	}
}

func TestPollReturnsSnapshot(t *testing.T) {
	id := uuid.New()
	service := &stubService{pollResult: suggestion.Request{
		ID:     id,
		Status: suggestion.StatusReady,
	}}
	router, _ := newTestRouter(t, service)

	req := httptest.NewRequest("GET", "/ai/suggest/"+id.String(), nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
}

func TestPollErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"not found", suggestion.ErrNotFound, http.StatusNotFound},
		{"not owner", suggestion.ErrNotOwner, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, _ := newTestRouter(t, &stubService{pollErr: tt.err})

			req := httptest.NewRequest("GET", "/ai/suggest/"+uuid.NewString(), nil)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, tt.want, rec.Code)
		})
	}
}

func TestPollRejectsMalformedID(t *testing.T) {
	router, _ := newTestRouter(t, &stubService{})

	req := httptest.NewRequest("GET", "/ai/suggest/not-a-uuid", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCancel(t *testing.T) {
	router, _ := newTestRouter(t, &stubService{})

	req := httptest.NewRequest("POST", "/ai/suggest/"+uuid.NewString()+"/cancel", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestModels(t *testing.T) {
	router, _ := newTestRouter(t, &stubService{})

	req := httptest.NewRequest("GET", "/ai/models", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "llama3.2:3b")
}

func TestUnauthenticatedRequestRejected(t *testing.T) {
	h := NewSuggestHandlers(&stubService{}, stubModelGateway{}, zaptest.NewLogger(t))

	req := httptest.NewRequest("GET", "/ai/models", nil)
	rec := httptest.NewRecorder()
	h.Models(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
