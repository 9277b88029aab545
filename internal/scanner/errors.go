// internal/scanner/errors.go
package scanner

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// Validation error classes. Match with errors.Is.
var (
	ErrInvalidType  = errors.New("invalid type")
	ErrInvalidValue = errors.New("invalid value")
)

// MaxTimeoutSeconds is the largest accepted scan timeout.
const MaxTimeoutSeconds = 600

// MaxTimeout is MaxTimeoutSeconds as a duration.
const MaxTimeout = MaxTimeoutSeconds * time.Second

// DefaultRevisitSeconds is the scan cycle length used when none is configured.
const DefaultRevisitSeconds = 1

// MaxRevisitSeconds is the largest revisit that fits in a time.Duration.
const MaxRevisitSeconds = math.MaxInt64 / int64(time.Second)

// FieldError reports a rejected configuration value.
// Kind is ErrInvalidType or ErrInvalidValue.
type FieldError struct {
	Field string
	Kind  error
	Msg   string
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s: %v: %s", e.Field, e.Kind, e.Msg)
}

func (e *FieldError) Unwrap() error { return e.Kind }

// ValidateTimeout checks a timeout given in seconds.
func ValidateTimeout(seconds float64) error {
	switch {
	case math.IsNaN(seconds) || math.IsInf(seconds, 0):
		return &FieldError{Field: "timeout", Kind: ErrInvalidValue, Msg: "must be a finite number"}
	case seconds <= 0:
		return &FieldError{Field: "timeout", Kind: ErrInvalidValue, Msg: "must be strictly positive"}
	case seconds > MaxTimeoutSeconds:
		return &FieldError{
			Field: "timeout",
			Kind:  ErrInvalidValue,
			Msg:   fmt.Sprintf("must not exceed %d seconds", MaxTimeoutSeconds),
		}
	}
	return nil
}

// ValidateRevisit checks a revisit interval given in whole seconds.
func ValidateRevisit(seconds int) error {
	switch {
	case seconds <= 0:
		return &FieldError{Field: "revisit", Kind: ErrInvalidValue, Msg: "must be strictly positive"}
	case int64(seconds) > MaxRevisitSeconds:
		return &FieldError{
			Field: "revisit",
			Kind:  ErrInvalidValue,
			Msg:   fmt.Sprintf("must not exceed %d seconds", MaxRevisitSeconds),
		}
	}
	return nil
}
