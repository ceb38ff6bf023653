package domain

import (
	"encoding/json"
	"fmt"
)

// ErrorCode represents a specific type of error in the domain
type ErrorCode string

const (
	// Common errors
	ErrInternal     ErrorCode = "INTERNAL_ERROR"
	ErrInvalidInput ErrorCode = "INVALID_INPUT"
	ErrNotFound     ErrorCode = "NOT_FOUND"
	ErrUnauthorized ErrorCode = "UNAUTHORIZED"

	// Pipeline specific errors
	ErrUpstreamUnavailable ErrorCode = "UPSTREAM_UNAVAILABLE"
	ErrAnalysisTimeout     ErrorCode = "ANALYSIS_TIMEOUT"
	ErrInvalidSignal       ErrorCode = "INVALID_SIGNAL"
	ErrPersistenceFailure  ErrorCode = "PERSISTENCE_FAILURE"
	ErrTierNotFound        ErrorCode = "TIER_NOT_FOUND"
)

// DomainError represents a domain-specific error. Stage names the pipeline
// step that failed so callers can diagnose where a submission died.
type DomainError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Stage   string    `json:"stage,omitempty"`
	Err     error     `json:"-"`
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// MarshalJSON implements the json.Marshaler interface
func (e *DomainError) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Code    string `json:"code"`
		Message string `json:"message"`
		Stage   string `json:"stage,omitempty"`
	}{
		Code:    string(e.Code),
		Message: e.Message,
		Stage:   e.Stage,
	})
}

// NewError creates a new DomainError
func NewError(code ErrorCode, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Helper functions for common errors
func NewNotFoundError(message string) *DomainError {
	return NewError(ErrNotFound, message, nil)
}

func NewInvalidInputError(message string) *DomainError {
	return NewError(ErrInvalidInput, message, nil)
}

func NewUnauthorizedError(message string) *DomainError {
	return NewError(ErrUnauthorized, message, nil)
}

func NewInternalError(message string, err error) *DomainError {
	return NewError(ErrInternal, message, err)
}

func NewTierNotFoundError(name string) *DomainError {
	return NewError(ErrTierNotFound, fmt.Sprintf("Unknown difficulty tier: %s", name), nil)
}

// NewUpstreamUnavailableError marks a failure to reach or enqueue work on the
// analysis service; no database writes have happened at this point.
func NewUpstreamUnavailableError(stage string, err error) *DomainError {
	return &DomainError{
		Code:    ErrUpstreamUnavailable,
		Message: "Analysis service is unavailable",
		Stage:   stage,
		Err:     err,
	}
}

// NewAnalysisTimeoutError marks a poll budget exhausted while waiting for the
// analysis job; surfaced distinctly so callers can offer retry guidance.
func NewAnalysisTimeoutError(err error) *DomainError {
	return &DomainError{
		Code:    ErrAnalysisTimeout,
		Message: "Timed out waiting for the analysis result",
		Stage:   "analysis-poll",
		Err:     err,
	}
}

// NewInvalidSignalError marks an analysis that completed without a usable
// anxiety value. Callers treat it as "no voice detected", not as a failure.
func NewInvalidSignalError() *DomainError {
	return NewError(ErrInvalidSignal, "Analysis produced no usable anxiety signal", nil)
}

// NewPersistenceError wraps a transaction or lock failure; the whole
// submission has been rolled back when this surfaces.
func NewPersistenceError(stage string, err error) *DomainError {
	return &DomainError{
		Code:    ErrPersistenceFailure,
		Message: "Failed to persist session results",
		Stage:   stage,
		Err:     err,
	}
}
