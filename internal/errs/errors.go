package errs

import (
	"errors"
	"fmt"
)

// Sentinels for errors.Is checks. Every typed error below matches exactly one of them.
var (
	ErrConfiguration      = errors.New("configuration error")
	ErrRequestFailure     = errors.New("language model request failed")
	ErrMalformedArguments = errors.New("malformed function arguments")
	ErrDataUnavailable    = errors.New("price history unavailable")
	ErrDegenerateSeries   = errors.New("price history too short")
	ErrInvalidRequest     = errors.New("invalid forecast request")
)

// ConfigurationError reports a missing or invalid configuration value.
type ConfigurationError struct {
	Field  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("config %s: %s", e.Field, e.Reason)
}

func (e *ConfigurationError) Is(target error) bool { return target == ErrConfiguration }

// RequestFailure is a non-success response (or transport failure, Status 0) from the
// language model service.
type RequestFailure struct {
	Status  int
	Message string
	Err     error
}

func (e *RequestFailure) Error() string {
	if e.Status == 0 {
		return fmt.Sprintf("llm request failed: %s", e.Message)
	}
	return fmt.Sprintf("llm request failed: status %d: %s", e.Status, e.Message)
}

func (e *RequestFailure) Is(target error) bool { return target == ErrRequestFailure }
func (e *RequestFailure) Unwrap() error        { return e.Err }

// MalformedArguments means the model called the function with an unusable payload.
type MalformedArguments struct {
	Payload string
	Reason  string
}

func (e *MalformedArguments) Error() string {
	return fmt.Sprintf("malformed function arguments (%s): %q", e.Reason, e.Payload)
}

func (e *MalformedArguments) Is(target error) bool { return target == ErrMalformedArguments }

// DataUnavailable means no price history could be retrieved for Symbol.
type DataUnavailable struct {
	Symbol string
	Err    error
}

func (e *DataUnavailable) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("no price history for %s", e.Symbol)
	}
	return fmt.Sprintf("no price history for %s: %v", e.Symbol, e.Err)
}

func (e *DataUnavailable) Is(target error) bool { return target == ErrDataUnavailable }
func (e *DataUnavailable) Unwrap() error        { return e.Err }

// DegenerateSeries means the history is too short to derive a positive input window.
type DegenerateSeries struct {
	Symbol string
	Points int
	Min    int
}

func (e *DegenerateSeries) Error() string {
	return fmt.Sprintf("price history for %s has %d points, need at least %d", e.Symbol, e.Points, e.Min)
}

func (e *DegenerateSeries) Is(target error) bool { return target == ErrDegenerateSeries }

// InvalidRequest rejects a forecast request before any data is fetched.
type InvalidRequest struct {
	Reason string
}

func (e *InvalidRequest) Error() string {
	return "invalid forecast request: " + e.Reason
}

func (e *InvalidRequest) Is(target error) bool { return target == ErrInvalidRequest }
