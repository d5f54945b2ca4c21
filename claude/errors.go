package claude

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

// Sentinel errors returned by New. Callers should use errors.Is/errors.As.
var (
	ErrUnsupportedModel    = errors.New("claude: unsupported model")
	ErrHyperparameterRange = errors.New("claude: hyperparameter out of range")
)

// UnsupportedModelError names a model id missing from a family's allow-list.
type UnsupportedModelError struct {
	Family  string
	Model   string
	Allowed []string
}

func (e *UnsupportedModelError) Error() string {
	return fmt.Sprintf("claude: unsupported %s model %q: choose one of [%s]", e.Family, e.Model, strings.Join(e.Allowed, ", "))
}

// Unwrap returns ErrUnsupportedModel.
func (e *UnsupportedModelError) Unwrap() error { return ErrUnsupportedModel }

// RangeError reports a generation parameter outside its closed range.
type RangeError struct {
	Field string
	Min   float64
	Max   float64
	Value float64
}

func (e *RangeError) Error() string {
	if math.IsInf(e.Max, 1) {
		return fmt.Sprintf("claude: %s must be at least %g, got %g", e.Field, e.Min, e.Value)
	}
	return fmt.Sprintf("claude: %s must be between %g and %g, got %g", e.Field, e.Min, e.Max, e.Value)
}

// Unwrap returns ErrHyperparameterRange.
func (e *RangeError) Unwrap() error { return ErrHyperparameterRange }

var (
	_ error = (*UnsupportedModelError)(nil)
	_ error = (*RangeError)(nil)
)
