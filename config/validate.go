package config

import (
	"fmt"
	"io"
	"strings"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("config: %s: %s", e.Field, e.Message)
}

// ValidationWarning represents a non-fatal configuration issue.
type ValidationWarning struct {
	Field   string
	Message string
}

func (w ValidationWarning) String() string {
	return fmt.Sprintf("config warning: %s: %s", w.Field, w.Message)
}

// ValidationResults holds the results of configuration validation.
type ValidationResults struct {
	Errors   []ValidationError
	Warnings []ValidationWarning
}

// HasErrors returns true if there are validation errors.
func (r ValidationResults) HasErrors() bool {
	return len(r.Errors) > 0
}

// HasWarnings returns true if there are validation warnings.
func (r ValidationResults) HasWarnings() bool {
	return len(r.Warnings) > 0
}

// ErrorMessage returns a combined error message for all validation errors.
func (r ValidationResults) ErrorMessage() string {
	if !r.HasErrors() {
		return ""
	}
	msgs := make([]string, 0, len(r.Errors))
	for _, e := range r.Errors {
		msgs = append(msgs, e.Error())
	}
	return strings.Join(msgs, "; ")
}

// WriteWarnings writes all warnings to the given writer.
func (r ValidationResults) WriteWarnings(w io.Writer) {
	for _, warn := range r.Warnings {
		_, _ = fmt.Fprintln(w, warn.String())
	}
}

// Validate checks the configuration for errors and warnings.
func (c *Config) Validate() ValidationResults {
	var result ValidationResults

	switch strings.ToLower(c.ViolationMode) {
	case ViolationModePanic, ViolationModeLog:
	default:
		result.Errors = append(result.Errors, ValidationError{
			Field: "violation_mode",
			Message: fmt.Sprintf("invalid mode %q, must be one of: %s, %s",
				c.ViolationMode, ViolationModePanic, ViolationModeLog),
		})
	}

	if c.LockAfterInit && !c.ThreadSafe {
		result.Warnings = append(result.Warnings, ValidationWarning{
			Field:   "lock_after_init",
			Message: "locking is a checkpoint, not synchronization; thread_safe is off",
		})
	}

	return result
}
