// Package inbound defines the interfaces for inbound ports (primary/driving adapters)
// These are the interfaces that the application exposes to the outside world
package inbound

import (
	"context"

	"github.com/google/uuid"
	"github.com/macroplan/v1/internal/domain/suggestion"
)

// SuggestionService defines the use cases the HTTP surface drives: submitting
// an asynchronous suggestion job and observing it.
type SuggestionService interface {
	// Submit validates the command, creates the job record and starts the
	// pipeline. The returned channel streams progress events and closes after
	// the terminal event.
	Submit(ctx context.Context, cmd SubmitSuggestionCommand) (uuid.UUID, <-chan suggestion.Event, error)

	// Poll returns a snapshot of the job. Transient parsing_response is
	// reported as waiting_for_response while no suggestion set is attached.
	Poll(ctx context.Context, userID, requestID uuid.UUID) (suggestion.Request, error)

	// Cancel marks the job cancelled. Idempotent on terminal jobs. The
	// in-flight provider call, if any, is not preempted.
	Cancel(ctx context.Context, userID, requestID uuid.UUID) error
}

// SuggestionMode selects the prompt shape.
type SuggestionMode string

const (
	// ModeMeal asks for a small set of foods composing a meal.
	ModeMeal SuggestionMode = "meal"
	// ModeSingleItem asks for exactly one food.
	ModeSingleItem SuggestionMode = "single-item"
)

// SubmitSuggestionCommand contains data for submitting a suggestion job.
type SubmitSuggestionCommand struct {
	UserID         uuid.UUID
	MealID         int64
	TargetCalories float64
	Mode           SuggestionMode
	Date           string
	Preferences    string
	AllowNewFoods  bool
	ExcludeFoodIDs []int64
}
