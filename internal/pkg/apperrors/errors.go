// Package apperrors declares the stable error kinds the service layer
// returns. Handlers map these onto HTTP statuses; nothing below the
// handler layer knows about HTTP.
package apperrors

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrTradeNotFound is returned when no active version exists for a trade id.
	ErrTradeNotFound = errors.New("trade not found")
	// ErrNotAuthorized is returned when the privilege check fails. It is
	// raised before any validation or mutation work.
	ErrNotAuthorized = errors.New("user does not have the required privilege")
	// ErrReferenceDataMissing is returned when mandatory reference data
	// (book, counterparty, status) cannot be resolved at save time.
	ErrReferenceDataMissing = errors.New("mandatory reference data missing")
	// ErrInvalidScheduleFormat is returned for unparseable period strings.
	ErrInvalidScheduleFormat = errors.New("invalid schedule format")
	// ErrInvalidQueryArgument is returned when a query value cannot be
	// coerced to the field's declared type.
	ErrInvalidQueryArgument = errors.New("invalid query argument")
	// ErrUnknownQueryField is returned for unrecognized field/operator
	// combinations in the query language. Unknown clauses are rejected,
	// not silently ignored.
	ErrUnknownQueryField = errors.New("unknown query field or operator")
)

// ValidationError aggregates business-rule violations. All rules are
// evaluated before the error is returned so the caller gets the complete
// list in one round trip.
type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string {
	return "trade validation failed: " + strings.Join(e.Violations, ", ")
}

// Validation wraps a violation list into a ValidationError.
func Validation(violations []string) *ValidationError {
	return &ValidationError{Violations: violations}
}

// NotFoundf returns an ErrTradeNotFound annotated with context.
func NotFoundf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrTradeNotFound, fmt.Sprintf(format, args...))
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
