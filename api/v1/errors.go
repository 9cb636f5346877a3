package v1

import (
	"errors"
	"fmt"
)

// ValidationError: caller supplied an inconsistent or incomplete parameter set
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func NewValidationError(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

func IsValidationError(err error) (*ValidationError, bool) {
	var e *ValidationError
	ok := errors.As(err, &e)
	return e, ok
}

// ResourceCreatingDataError: a resource cannot be created from the data supplied
type ResourceCreatingDataError struct {
	Message string
}

func (e *ResourceCreatingDataError) Error() string {
	return e.Message
}

func NewResourceCreatingDataError(format string, args ...interface{}) *ResourceCreatingDataError {
	return &ResourceCreatingDataError{Message: fmt.Sprintf(format, args...)}
}

func IsResourceCreatingDataError(err error) (*ResourceCreatingDataError, bool) {
	var e *ResourceCreatingDataError
	ok := errors.As(err, &e)
	return e, ok
}

// InvalidExperimentTypeError: value does not name a known multi-node strategy
type InvalidExperimentTypeError struct {
	Value string
}

func (e *InvalidExperimentTypeError) Error() string {
	return fmt.Sprintf("invalid experiment type: %q", e.Value)
}

func NewInvalidExperimentTypeError(value string) *InvalidExperimentTypeError {
	return &InvalidExperimentTypeError{Value: value}
}

func IsInvalidExperimentTypeError(err error) (*InvalidExperimentTypeError, bool) {
	var e *InvalidExperimentTypeError
	ok := errors.As(err, &e)
	return e, ok
}
