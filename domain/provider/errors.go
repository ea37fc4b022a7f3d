package provider

import (
	"fmt"
	"strings"
	"time"
)

// Config-layer error taxonomy. Every failure mode of the configuration
// service surfaces as one of these typed errors so callers can branch with
// errors.As instead of string matching.

// ConfigNotFoundError reports that an organization has no stored override
// and no environment default exists to fall back to.
type ConfigNotFoundError struct {
	OrgID string
}

func (e *ConfigNotFoundError) Error() string {
	if e.OrgID == "" {
		return "no default provider configuration available"
	}
	return fmt.Sprintf("no provider configuration for organization %q and no default available", e.OrgID)
}

// FieldViolation describes a single failed validation rule.
type FieldViolation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ConfigValidationError carries every violation found in a candidate
// configuration, not just the first one.
type ConfigValidationError struct {
	Violations []FieldViolation
}

func (e *ConfigValidationError) Error() string {
	if len(e.Violations) == 0 {
		return "provider configuration is invalid"
	}
	parts := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		parts[i] = v.Field + ": " + v.Message
	}
	return "provider configuration is invalid: " + strings.Join(parts, "; ")
}

// ConfigSaveError reports a failure to persist a validated configuration.
type ConfigSaveError struct {
	OrgID string
	Cause error
}

func (e *ConfigSaveError) Error() string {
	return fmt.Sprintf("saving provider configuration for organization %q failed: %v", e.OrgID, e.Cause)
}

func (e *ConfigSaveError) Unwrap() error { return e.Cause }

// ConfigUnauthorizedError reports a mutating call without an authenticated
// actor.
type ConfigUnauthorizedError struct {
	Operation string
}

func (e *ConfigUnauthorizedError) Error() string {
	return fmt.Sprintf("operation %q requires an authenticated actor", e.Operation)
}

// ConnectionTestError reports a failed connectivity probe against a
// candidate backend. StatusCode is zero when the failure had no HTTP
// status (timeouts, refused connections).
type ConnectionTestError struct {
	Kind       Kind
	Reason     string
	StatusCode int
	Elapsed    time.Duration
	Cause      error
}

func (e *ConnectionTestError) Error() string {
	msg := fmt.Sprintf("connection test against %s backend failed: %s", e.Kind, e.Reason)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (status %d)", e.StatusCode)
	}
	return msg
}

func (e *ConnectionTestError) Unwrap() error { return e.Cause }

// ProviderInitError reports that a provider instance could not be
// constructed for a configuration, either because the kind has no
// implementation yet or because a required runtime dependency is missing.
type ProviderInitError struct {
	Kind   Kind
	Reason string
}

func (e *ProviderInitError) Error() string {
	return fmt.Sprintf("cannot initialize %s provider: %s", e.Kind, e.Reason)
}
