package engine

import (
	"errors"
	"fmt"
)

// ErrSetLimitReached is returned when a session already ran model.MaxSets sets.
var ErrSetLimitReached = errors.New("set limit reached")

// ConfigurationError reports invalid game settings.
type ConfigurationError struct {
	Field string
	Value string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Value)
}

func configErr(field string, value any) error {
	return &ConfigurationError{Field: field, Value: fmt.Sprint(value)}
}
