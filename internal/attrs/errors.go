package attrs

import (
	"strings"

	"github.com/cockroachdb/errors"
)

// ConfigError reports a malformed or conflicting annotation. It aborts
// generation for the type it names.
type ConfigError struct {
	Type  string
	Field string
	Key   string
	Rule  string
}

func (e *ConfigError) Error() string {
	var b strings.Builder
	b.WriteString("type ")
	b.WriteString(e.Type)
	if e.Field != "" {
		b.WriteString(": field ")
		b.WriteString(e.Field)
	}
	if e.Key != "" {
		b.WriteString(": ")
		b.WriteString(e.Key)
	}
	b.WriteString(": ")
	b.WriteString(e.Rule)
	return b.String()
}

// NewConfigError builds a ConfigError. A non-empty hint is attached as a
// user-facing hint.
func NewConfigError(typ, field, key, rule, hint string) error {
	var err error = &ConfigError{Type: typ, Field: field, Key: key, Rule: rule}
	if hint != "" {
		err = errors.WithHint(err, hint)
	}
	return err
}

// IsConfigError reports whether err carries a ConfigError.
func IsConfigError(err error) bool {
	var ce *ConfigError
	return errors.As(err, &ce)
}
