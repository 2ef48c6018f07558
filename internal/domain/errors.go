package domain

import "errors"

// Sentinel errors used throughout the application. Handlers translate
// these to HTTP status codes via a single mapError function.
var (
	ErrDuplicateKey     = errors.New("duplicate key")
	ErrValidation       = errors.New("validation error")
	ErrInvalidChannel   = errors.New("invalid channel: must be push or email")
	ErrInvalidPriority  = errors.New("invalid priority: must be high or low")
	ErrInvalidRecipient = errors.New("recipient id must not be empty")
	ErrInvalidContent   = errors.New("content must not be empty")
	ErrServiceError     = errors.New("service error")
	ErrRepositoryError  = errors.New("repository error")
	ErrSerialError      = errors.New("serialization error")
)
