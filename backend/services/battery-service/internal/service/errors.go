package service

import "errors"

var (
	// ErrInvalidRequest marks failures caused by caller input. Callers can recover by fixing the input.
	ErrInvalidRequest = errors.New("battery: invalid request")
	// ErrStorageFailure marks failures reported by the storage collaborator.
	ErrStorageFailure = errors.New("battery: storage failure")
)

const (
	msgEmptyBatteryList   = "battery list cannot be empty"
	msgMissingFields      = "batteries should contain all the required fields"
	msgInvalidText        = "battery name and postcode must be valid UTF-8 without NUL characters"
	msgInvalidPostcodes   = "a valid postcode range must be provided"
	msgStorageUnavailable = "internal server error"
)

// Error is returned by BatteryService. Kind is one of the Err* sentinels and is matched
// by errors.Is; Message is safe to show to clients.
type Error struct {
	Kind    error
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *Error) Is(target error) bool { return target == e.Kind }

func (e *Error) Unwrap() error { return e.Err }

func invalidRequest(message string) *Error {
	return &Error{Kind: ErrInvalidRequest, Message: message}
}

func storageFailure(err error) *Error {
	return &Error{Kind: ErrStorageFailure, Message: msgStorageUnavailable, Err: err}
}
