package services

import (
	"errors"
	"fmt"
)

var (
	// ErrConsentDenied is returned by a ConsentProvider when the user
	// declines to share their profile.
	ErrConsentDenied = errors.New("consent denied")

	// ErrGatewayRejected means the backend answered and refused.
	ErrGatewayRejected = errors.New("gateway rejected")

	// ErrMalformedResponse is a success reply missing required fields. It is
	// handled as a rejection.
	ErrMalformedResponse = fmt.Errorf("malformed response: %w", ErrGatewayRejected)

	// ErrNetworkUnavailable means no answer was obtained.
	ErrNetworkUnavailable = errors.New("network unavailable")

	// ErrStorageFailure wraps persistent store failures. It is logged, never
	// returned from session operations.
	ErrStorageFailure = errors.New("storage failure")

	ErrNotAuthenticated = errors.New("not authenticated")

	// ErrSuperseded is returned by an operation whose result was discarded
	// because a logout completed while it was waiting on the backend.
	ErrSuperseded = errors.New("superseded by a later operation")
)

// RejectedError carries the backend's message verbatim.
type RejectedError struct {
	Message string
	Err     error
}

func (e *RejectedError) Error() string {
	msg := e.Message
	if msg == "" && e.Err != nil {
		msg = e.Err.Error()
	}
	if msg == "" {
		return ErrGatewayRejected.Error()
	}
	return ErrGatewayRejected.Error() + ": " + msg
}

func (e *RejectedError) Is(target error) bool {
	return target == ErrGatewayRejected
}

func (e *RejectedError) Unwrap() error {
	return e.Err
}
