package suggestion

import (
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of a suggestion request.
type Status string

const (
	StatusQueued             Status = "queued"
	StatusContactingProvider Status = "contacting_provider"
	StatusWaitingForResponse Status = "waiting_for_response"
	StatusParsingResponse    Status = "parsing_response"
	StatusReady              Status = "ready"
	StatusError              Status = "error"
	StatusCancelled          Status = "cancelled"
)

// Terminal reports whether the status is final.
func (s Status) Terminal() bool {
	return s == StatusReady || s == StatusError || s == StatusCancelled
}

// Request is the registry record for one suggestion job. It is mutated only
// by the pipeline goroutine executing the job and by an owner-initiated
// cancel; the store serializes access.
type Request struct {
	ID          uuid.UUID    `json:"request_id"`
	UserID      uuid.UUID    `json:"-"`
	MealID      int64        `json:"meal_id"`
	Status      Status       `json:"status"`
	CreatedAt   time.Time    `json:"created_at"`
	Suggestions []Suggestion `json:"suggestions,omitempty"`
	Totals      *Totals      `json:"totals,omitempty"`
	Error       string       `json:"error,omitempty"`
	DebugPrompt string       `json:"debug_prompt,omitempty"`
	RawResponse string       `json:"raw_response,omitempty"`
}

// NewRequest creates a queued request record.
func NewRequest(userID uuid.UUID, mealID int64, now time.Time) *Request {
	return &Request{
		ID:        uuid.New(),
		UserID:    userID,
		MealID:    mealID,
		Status:    StatusQueued,
		CreatedAt: now,
	}
}

// Advance moves the request to the given in-flight status. A terminal status
// never changes: once cancelled (or failed), later stage writes are ignored,
// which is what makes cancellation cooperative rather than preemptive.
func (r *Request) Advance(next Status) bool {
	if r.Status.Terminal() {
		return false
	}
	r.Status = next
	return true
}

// Complete attaches the result payload and marks the request ready. A late
// completion after cancel leaves the cancelled status in place and discards
// nothing else: the payload is still attached for the sweep window, but the
// status seen by consumers stays cancelled.
func (r *Request) Complete(suggestions []Suggestion, totals Totals) {
	r.Suggestions = suggestions
	r.Totals = &totals
	if !r.Status.Terminal() {
		r.Status = StatusReady
	}
}

// Fail marks the request failed with a message, unless already terminal.
func (r *Request) Fail(message string) {
	if r.Status.Terminal() {
		return
	}
	r.Status = StatusError
	r.Error = message
}

// Cancel marks the request cancelled. Idempotent on terminal records.
func (r *Request) Cancel() {
	if r.Status.Terminal() {
		return
	}
	r.Status = StatusCancelled
}

// Cancelled reports whether the owner cancelled the request.
func (r *Request) Cancelled() bool {
	return r.Status == StatusCancelled
}

// Snapshot returns a copy safe to hand outside the store's lock.
func (r *Request) Snapshot() Request {
	copied := *r
	if r.Suggestions != nil {
		copied.Suggestions = make([]Suggestion, len(r.Suggestions))
		copy(copied.Suggestions, r.Suggestions)
	}
	if r.Totals != nil {
		totals := *r.Totals
		copied.Totals = &totals
	}
	return copied
}
