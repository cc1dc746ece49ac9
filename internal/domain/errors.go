package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrSessionNotFound signals an unknown or evicted search session.
	ErrSessionNotFound = errors.New("session not found")
	// ErrRestaurantNotFound signals that the backend has no such restaurant.
	ErrRestaurantNotFound = errors.New("restaurant not found")

	// ErrInvalidNumber signals numeric text input that failed validation.
	ErrInvalidNumber = errors.New("invalid number")
	// ErrInvalidFilterMode signals an unknown filter mode key.
	ErrInvalidFilterMode = errors.New("invalid filter mode")
	// ErrInvalidAxis signals an unknown coordinate axis.
	ErrInvalidAxis = errors.New("invalid coordinate axis")
	// ErrPageOutOfRange signals a page change outside [1, totalPages].
	ErrPageOutOfRange = errors.New("page out of range")
	// ErrInvalidImage signals an unsupported or oversized image upload.
	ErrInvalidImage = errors.New("invalid image")

	// ErrBackendUnavailable signals a transport failure talking to the backend.
	ErrBackendUnavailable = errors.New("backend unavailable")
	// ErrBackendStatus signals a non-success HTTP status from the backend.
	ErrBackendStatus = errors.New("backend returned non-success status")
	// ErrMalformedResponse signals a backend body that could not be decoded.
	ErrMalformedResponse = errors.New("malformed backend response")
	// ErrEmptyResult signals a well-formed response carrying no restaurants.
	ErrEmptyResult = errors.New("empty result")
)

// StatusError wraps ErrBackendStatus with the HTTP status the backend returned.
type StatusError struct {
	Endpoint string
	Code     int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: %s: status %d", ErrBackendStatus.Error(), e.Endpoint, e.Code)
}

func (e *StatusError) Unwrap() error { return ErrBackendStatus }

// NewStatusError creates a backend status error.
func NewStatusError(endpoint string, code int) error {
	return &StatusError{Endpoint: endpoint, Code: code}
}
