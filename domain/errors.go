package domain

import (
	"errors"
	"fmt"
)

// ErrorCode represents a semantic classification shared across layers.
type ErrorCode string

const (
	ErrCodeNotFound ErrorCode = "NOT_FOUND"
	ErrCodeInvalid  ErrorCode = "INVALID"
	ErrCodeStorage  ErrorCode = "STORAGE"
	ErrCodeInternal ErrorCode = "INTERNAL"
)

// Error represents a domain-level error.
type Error struct {
	Code    ErrorCode
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// NewError builds a domain error.
func NewError(code ErrorCode, message string) *Error {
	return &Error{Code: code, Message: message}
}

// WrapError wraps an existing error with a domain classification.
func WrapError(code ErrorCode, message string, err error) *Error {
	return &Error{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Common domain errors.
var (
	ErrUserAnalyticsNotFound    = NewError(ErrCodeNotFound, "user analytics record not found")
	ErrProductAnalyticsNotFound = NewError(ErrCodeNotFound, "product analytics record not found")
	ErrInvalidEvent             = NewError(ErrCodeInvalid, "invalid event")
	ErrMissingAction            = NewError(ErrCodeInvalid, "event action missing")
	ErrUnknownAction            = NewError(ErrCodeInvalid, "event action not recognized")
	ErrQueueClosed              = NewError(ErrCodeInternal, "ingestion queue closed")
)

// IsDomainError helps checking error codes.
func IsDomainError(err error, code ErrorCode) bool {
	var dErr *Error
	if errors.As(err, &dErr) {
		return dErr.Code == code
	}
	return false
}

// AggregationError reports a failed aggregation of one event. The batch
// dispatcher owns the policy for it (log and continue, or dead-letter);
// aggregators only describe what failed.
type AggregationError struct {
	Stage string // "user" or "product"
	Err   error
}

func (e *AggregationError) Error() string {
	if e == nil {
		return ""
	}
	return fmt.Sprintf("%s aggregation failed: %v", e.Stage, e.Err)
}

func (e *AggregationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// NewAggregationError tags a failure with the aggregator stage it came from.
func NewAggregationError(stage string, err error) *AggregationError {
	return &AggregationError{Stage: stage, Err: err}
}
