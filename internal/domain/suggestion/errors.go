package suggestion

import "errors"

// Errors surfaced by the suggestion pipeline and the request registry

var (
	// ErrValidation rejects a submission before any job record is created.
	ErrValidation = errors.New("meal id and target calories are required")

	// ErrProvider means the primary and fallback providers both failed, or
	// no provider is configured at all.
	ErrProvider = errors.New("no generation provider produced a response")

	// ErrParse means no structured data could be recovered from the provider
	// text, even via the salvage pass.
	ErrParse = errors.New("could not parse suggestions from provider response")

	// ErrEmptyResult means normalization, enforcement and the deterministic
	// fallback all produced nothing.
	ErrEmptyResult = errors.New("no suggestions fit the remaining budget")

	// ErrNotFound means the request id is unknown to the registry, possibly
	// because the sweep already reclaimed it.
	ErrNotFound = errors.New("suggestion request not found")

	// ErrNotOwner rejects poll/cancel calls from a user other than the
	// request's creator.
	ErrNotOwner = errors.New("suggestion request belongs to another user")
)
