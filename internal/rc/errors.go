package rc

import (
	"errors"
	"fmt"
)

// ErrZeroProbability is matched by errors.Is when the evidence has zero
// probability under the model, so the posterior is undefined.
var ErrZeroProbability = errors.New("evidence has zero probability")

// QueryErrorCode categorizes query failures.
type QueryErrorCode string

const (
	// ErrCodeUnknownVariable indicates a query or evidence variable outside the model.
	ErrCodeUnknownVariable QueryErrorCode = "UNKNOWN_VARIABLE"

	// ErrCodeInvalidEvidence indicates an evidence value outside its variable's domain.
	ErrCodeInvalidEvidence QueryErrorCode = "INVALID_EVIDENCE"

	// ErrCodeInvalidElimOrder indicates a missing, extra, or duplicated variable
	// in an explicit elimination order.
	ErrCodeInvalidElimOrder QueryErrorCode = "INVALID_ELIM_ORDER"

	// ErrCodeZeroProbability indicates the evidence has probability zero.
	ErrCodeZeroProbability QueryErrorCode = "ZERO_PROBABILITY"
)

// QueryError is returned by Query and Enumerate.
//
// Precondition failures (unknown variable, invalid evidence, malformed
// elimination order) are detected before any summation starts. A zero
// probability failure is detected at normalization.
type QueryError struct {
	// Code identifies the error category.
	Code QueryErrorCode

	// Message is a human-readable description.
	Message string

	// Variable names the offending variable, if any.
	Variable string
}

// Error implements the error interface.
func (e *QueryError) Error() string {
	if e.Variable != "" {
		return fmt.Sprintf("%s: %s (variable=%s)", e.Code, e.Message, e.Variable)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Is lets errors.Is(err, ErrZeroProbability) match zero probability errors.
func (e *QueryError) Is(target error) bool {
	return target == ErrZeroProbability && e.Code == ErrCodeZeroProbability
}

// IsPreconditionError returns true for errors caused by invalid query input.
// Uses errors.As to handle wrapped errors.
func IsPreconditionError(err error) bool {
	var qe *QueryError
	if errors.As(err, &qe) {
		return qe.Code != ErrCodeZeroProbability
	}
	return false
}

// IsZeroProbability returns true if the evidence had zero probability.
func IsZeroProbability(err error) bool {
	return errors.Is(err, ErrZeroProbability)
}

// ErrorCode extracts the QueryErrorCode from err, or "" if err is not a QueryError.
func ErrorCode(err error) QueryErrorCode {
	var qe *QueryError
	if errors.As(err, &qe) {
		return qe.Code
	}
	return ""
}

func newQueryError(code QueryErrorCode, variable, format string, args ...any) *QueryError {
	return &QueryError{
		Code:     code,
		Message:  fmt.Sprintf(format, args...),
		Variable: variable,
	}
}
