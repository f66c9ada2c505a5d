package suggestion

import "github.com/google/uuid"

// Event is one streamed progress update for a suggestion job. Intermediate
// events carry only the status; the terminal event carries either the result
// payload or an error message.
type Event struct {
	RequestID   uuid.UUID    `json:"request_id"`
	Status      Status       `json:"status"`
	Suggestions []Suggestion `json:"suggestions,omitempty"`
	Totals      *Totals      `json:"totals,omitempty"`
	Error       string       `json:"error,omitempty"`
}

// TerminalEvent builds the closing event for a request snapshot.
func TerminalEvent(r Request) Event {
	return Event{
		RequestID:   r.ID,
		Status:      r.Status,
		Suggestions: r.Suggestions,
		Totals:      r.Totals,
		Error:       r.Error,
	}
}

// ProgressEvent builds an intermediate status event.
func ProgressEvent(id uuid.UUID, status Status) Event {
	return Event{RequestID: id, Status: status}
}
