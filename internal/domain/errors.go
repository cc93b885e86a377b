package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrDataSource means the flight table could not be loaded. Fatal.
	ErrDataSource = errors.New("data source error")

	// ErrInvalidRequest means a prediction request is out of domain.
	ErrInvalidRequest = errors.New("invalid prediction request")

	// ErrModelInference means the classifier failed to produce an outcome.
	ErrModelInference = errors.New("model inference failed")

	// ErrInternal flags a broken invariant between loader and analytics.
	ErrInternal = errors.New("internal invariant violated")
)

// FieldError is a single out-of-domain request field.
type FieldError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *FieldError) Is(target error) bool {
	return target == ErrInvalidRequest
}

// FieldErrors extracts every FieldError from a possibly joined error tree.
func FieldErrors(err error) []*FieldError {
	var out []*FieldError
	var walk func(error)
	walk = func(e error) {
		if e == nil {
			return
		}
		if fe, ok := e.(*FieldError); ok {
			out = append(out, fe)
			return
		}
		switch u := e.(type) {
		case interface{ Unwrap() []error }:
			for _, inner := range u.Unwrap() {
				walk(inner)
			}
		case interface{ Unwrap() error }:
			walk(u.Unwrap())
		}
	}
	walk(err)
	return out
}
