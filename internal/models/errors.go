package models

import (
	"errors"
	"fmt"
)

// ValidationError is the reason a raw request was rejected. Each reason is a
// distinct value so callers can match it with errors.Is.
type ValidationError string

func (e ValidationError) Error() string {
	return string(e)
}

const (
	ErrMissingField  ValidationError = "missing field"
	ErrBadIATACode   ValidationError = "bad IATA code"
	ErrBadSeatCount  ValidationError = "bad seat count"
	ErrBadDate       ValidationError = "bad date"
	ErrBadReturnDate ValidationError = "bad return date"
)

var (
	ErrDirectoryUnavailable = errors.New("iata directory unavailable")
	ErrNoResults            = errors.New("no flights found")
	ErrMalformedRow         = errors.New("malformed flight row")
)

// InvalidRequestReason returns the validation reason carried by err, if any.
func InvalidRequestReason(err error) (ValidationError, bool) {
	var ve ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return "", false
}

type NetworkFailureKind string

const (
	NetworkConnect    NetworkFailureKind = "connect"
	NetworkTimeout    NetworkFailureKind = "timeout"
	NetworkHTTPStatus NetworkFailureKind = "http-status"
)

type NetworkError struct {
	Kind       NetworkFailureKind
	URL        string
	StatusCode int
	Err        error
}

func (e *NetworkError) Error() string {
	if e.Kind == NetworkHTTPStatus {
		return fmt.Sprintf("%s %s: status %d", e.Kind, e.URL, e.StatusCode)
	}
	return fmt.Sprintf("%s %s: %v", e.Kind, e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// Leg names one half of a round trip.
type Leg string

const (
	LegOutbound Leg = "outbound"
	LegInbound  Leg = "inbound"
)

// NoResultsError means the backend legitimately found nothing for a leg.
type NoResultsError struct {
	Leg Leg
}

func (e *NoResultsError) Error() string {
	if e.Leg == "" {
		return "No available flights found."
	}
	return fmt.Sprintf("No %s flights found.", e.Leg)
}

func (e *NoResultsError) Is(target error) bool {
	return target == ErrNoResults
}

// MalformedRowError reports markup that no longer matches the expected shape.
// Row is the zero-based index of the offending row inside its group.
type MalformedRowError struct {
	Group Leg
	Row   int
	Field string
	Err   error
}

func (e *MalformedRowError) Error() string {
	msg := fmt.Sprintf("malformed %s row %d: %s", e.Group, e.Row, e.Field)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *MalformedRowError) Unwrap() error {
	return e.Err
}

func (e *MalformedRowError) Is(target error) bool {
	return target == ErrMalformedRow
}
