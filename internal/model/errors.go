package model

import (
	"errors"
	"fmt"
)

// ErrNotCompiled is returned when Fit or Evaluate is called on a model
// that has not been compiled.
var ErrNotCompiled = errors.New("model is not compiled: call Compile first")

// ConfigError reports an invalid hyperparameter value.
type ConfigError struct {
	Field  string // configuration field name
	Value  string // offending value
	Reason string
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}
