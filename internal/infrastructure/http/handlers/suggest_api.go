package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/macroplan/v1/internal/domain/nutrition"
	"github.com/macroplan/v1/internal/domain/suggestion"
	"github.com/macroplan/v1/internal/infrastructure/http/middleware"
	"github.com/macroplan/v1/internal/ports/inbound"
	"github.com/macroplan/v1/internal/ports/outbound"
	"go.uber.org/zap"
)

// SuggestHandlers serves the suggestion API surface.
type SuggestHandlers struct {
	service  inbound.SuggestionService
	gateway  outbound.ProviderGateway
	validate *validator.Validate
	logger   *zap.Logger
}

// NewSuggestHandlers creates suggestion API handlers.
func NewSuggestHandlers(service inbound.SuggestionService, gateway outbound.ProviderGateway, logger *zap.Logger) *SuggestHandlers {
	return &SuggestHandlers{
		service:  service,
		gateway:  gateway,
		validate: validator.New(),
		logger:   logger.Named("suggest-api"),
	}
}

// suggestRequest is the submit payload.
type suggestRequest struct {
	MealID         int64   `json:"meal_id" validate:"required,gt=0"`
	TargetCalories float64 `json:"target_calories" validate:"required,gt=0"`
	Mode           string  `json:"mode" validate:"omitempty,oneof=meal single-item"`
	Date           string  `json:"date" validate:"omitempty,datetime=2006-01-02"`
	Preferences    string  `json:"preferences"`
	AllowNewFoods  bool    `json:"allow_new_foods"`
	ExcludeFoodIDs []int64 `json:"exclude_food_ids"`
}

// Submit handles POST /api/v1/ai/suggest. Progress streams back as
// server-sent events; the stream ends after the terminal event.
func (h *SuggestHandlers) Submit(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, h.logger, http.StatusUnauthorized, "authentication required")
		return
	}

	var req suggestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "invalid request: "+err.Error())
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, h.logger, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	requestID, events, err := h.service.Submit(r.Context(), inbound.SubmitSuggestionCommand{
		UserID:         userID,
		MealID:         req.MealID,
		TargetCalories: req.TargetCalories,
		Mode:           inbound.SuggestionMode(req.Mode),
		Date:           req.Date,
		Preferences:    req.Preferences,
		AllowNewFoods:  req.AllowNewFoods,
		ExcludeFoodIDs: req.ExcludeFoodIDs,
	})
	if err != nil {
		if errors.Is(err, suggestion.ErrValidation) {
			writeError(w, h.logger, http.StatusBadRequest, "meal_id and target_calories are required")
			return
		}
		writeError(w, h.logger, http.StatusInternalServerError, "failed to submit suggestion job")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	// First event carries the request id so a dropped stream can fall back
	// to polling.
	h.writeEvent(w, suggestion.Event{RequestID: requestID, Status: suggestion.StatusQueued})
	flusher.Flush()

	for {
		select {
		case event, open := <-events:
			if !open {
				return
			}
			h.writeEvent(w, event)
			flusher.Flush()
		case <-r.Context().Done():
			// Client went away; the job keeps running and remains pollable.
			return
		}
	}
}

func (h *SuggestHandlers) writeEvent(w http.ResponseWriter, event suggestion.Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		h.logger.Error("failed to marshal event", zap.Error(err))
		return
	}
	if _, err := w.Write([]byte("data: " + string(payload) + "\n\n")); err != nil {
		h.logger.Debug("event write failed", zap.Error(err))
	}
}

// Poll handles GET /api/v1/ai/suggest/{id}.
func (h *SuggestHandlers) Poll(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, h.logger, http.StatusUnauthorized, "authentication required")
		return
	}

	requestID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "invalid request id")
		return
	}

	snap, err := h.service.Poll(r.Context(), userID, requestID)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, h.logger, http.StatusOK, APIResponse{Success: true, Data: snap})
}

// Cancel handles POST /api/v1/ai/suggest/{id}/cancel.
func (h *SuggestHandlers) Cancel(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, h.logger, http.StatusUnauthorized, "authentication required")
		return
	}

	requestID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.logger, http.StatusBadRequest, "invalid request id")
		return
	}

	if err := h.service.Cancel(r.Context(), userID, requestID); err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, h.logger, http.StatusOK, APIResponse{Success: true, Message: "cancellation requested"})
}

// Models handles GET /api/v1/ai/models.
func (h *SuggestHandlers) Models(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		writeError(w, h.logger, http.StatusUnauthorized, "authentication required")
		return
	}

	models, err := h.gateway.ListModels(r.Context(), userID)
	if err != nil {
		if errors.Is(err, suggestion.ErrProvider) {
			writeError(w, h.logger, http.StatusBadRequest, "no AI provider configured")
			return
		}
		writeError(w, h.logger, http.StatusInternalServerError, "failed to list models")
		return
	}

	writeJSON(w, h.logger, http.StatusOK, APIResponse{Success: true, Data: models})
}

func (h *SuggestHandlers) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, suggestion.ErrNotFound):
		writeError(w, h.logger, http.StatusNotFound, "suggestion request not found")
	case errors.Is(err, suggestion.ErrNotOwner):
		writeError(w, h.logger, http.StatusForbidden, "not your suggestion request")
	case errors.Is(err, nutrition.ErrMealNotFound):
		writeError(w, h.logger, http.StatusNotFound, "meal not found")
	default:
		writeError(w, h.logger, http.StatusInternalServerError, "internal error")
	}
}
