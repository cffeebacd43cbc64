package domain

import "errors"

// Error kinds. Components wrap these with %w so the HTTP layer can map the
// kind without inspecting component internals.
var (
	ErrValidation        = errors.New("validation error")
	ErrNotFound          = errors.New("not found")
	ErrRateLimited       = errors.New("rate limited")
	ErrUpstreamTemporary = errors.New("upstream temporarily unavailable")
	ErrUpstreamPermanent = errors.New("upstream rejected request")
	ErrConfig            = errors.New("configuration error")
	ErrCancelled         = errors.New("cancelled")
)
