package summarize

import "errors"

// Sentinel errors for the summarization pipeline.
var (
	// ErrTemplate indicates a malformed prompt template: an unknown
	// placeholder, or a missing required one. Raised at load time,
	// before any model call.
	ErrTemplate = errors.New("invalid prompt template")
)
