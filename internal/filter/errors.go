package filter

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// CoercionError reports a query value that could not be converted to its
// declared type.
type CoercionError struct {
	Field string
	Value string
	Err   error
}

func (e *CoercionError) Error() string {
	return fmt.Sprintf("%s: %s %q", e.Field, e.Issue(), e.Value)
}

// Unwrap returns the strconv cause (strconv.ErrSyntax or strconv.ErrRange).
func (e *CoercionError) Unwrap() error {
	return e.Err
}

// Issue describes the failure without the field name or value.
func (e *CoercionError) Issue() string {
	if errors.Is(e.Err, strconv.ErrRange) {
		return "integer out of range"
	}
	return "invalid integer"
}

// ValidationError aggregates every coercion failure of a single Bind call.
type ValidationError struct {
	Errors []*CoercionError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Errors))
	for _, ce := range e.Errors {
		msgs = append(msgs, ce.Error())
	}
	return "invalid query parameters: " + strings.Join(msgs, "; ")
}

func (e *ValidationError) Unwrap() []error {
	errs := make([]error, 0, len(e.Errors))
	for _, ce := range e.Errors {
		errs = append(errs, ce)
	}
	return errs
}

// Fields lists the names of the fields that failed, in binding order.
func (e *ValidationError) Fields() []string {
	fields := make([]string, 0, len(e.Errors))
	for _, ce := range e.Errors {
		fields = append(fields, ce.Field)
	}
	return fields
}
