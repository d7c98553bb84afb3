package auth

import (
	"fmt"
	"strings"
)

// ConfigurationError means the deployment is broken (missing or short
// signing secret, missing media service credentials). Not client-correctable.
type ConfigurationError struct {
	Message string
}

func (e *ConfigurationError) Error() string { return e.Message }

// FieldIssue points at one invalid request field.
type FieldIssue struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}

// ValidationError reports every invalid field of a request at once.
type ValidationError struct {
	Issues []FieldIssue
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Issues))
	for _, i := range e.Issues {
		parts = append(parts, fmt.Sprintf("%s: %s", i.Path, i.Message))
	}
	return "invalid request: " + strings.Join(parts, "; ")
}

// AuthError means the bearer credential is missing, invalid or expired.
// The client must re-issue a guest credential.
type AuthError struct {
	Message string
	Err     error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AuthError) Unwrap() error { return e.Err }
