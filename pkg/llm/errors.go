package llm

import "errors"

// Sentinel errors for completion handling.
var (
	ErrAPI             = errors.New("llm: api error")
	ErrNoChoices       = errors.New("llm: response has no choices")
	ErrDecode          = errors.New("llm: response is not valid JSON for the schema")
	ErrInvalidResponse = errors.New("llm: response violates the schema")
)
