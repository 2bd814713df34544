// Package domain contains the core business entities and value objects.
package domain

import (
	"errors"
	"fmt"
)

// ValidationError reports a missing or empty required field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s %s", e.Field, e.Reason)
}

// NewValidationError builds a ValidationError for a required field.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// NotFoundError reports a resource that is absent or not owned by the
// requesting user. The two cases are deliberately indistinguishable so
// that existence is never leaked to non-owners.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found", e.Resource)
}

// NewNotFoundError builds a NotFoundError for the given resource kind.
func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// InsufficientCreditsError reports a balance of zero (or less) at the
// start of a chat turn. Credits echoes the current balance.
type InsufficientCreditsError struct {
	Credits int
}

func (e *InsufficientCreditsError) Error() string {
	return fmt.Sprintf("insufficient credits: balance is %d", e.Credits)
}

// ProviderConfigError reports an AI provider selected without a
// configured credential.
type ProviderConfigError struct {
	Provider string
}

func (e *ProviderConfigError) Error() string {
	return fmt.Sprintf("%s API key not configured", e.Provider)
}

// ProviderCallError wraps a transport, HTTP, or decode failure from an
// AI provider call.
type ProviderCallError struct {
	Provider string
	Err      error
}

func (e *ProviderCallError) Error() string {
	return fmt.Sprintf("%s API error: %v", e.Provider, e.Err)
}

func (e *ProviderCallError) Unwrap() error {
	return e.Err
}

// IsValidationError checks if an error is a ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsNotFoundError checks if an error is a NotFoundError.
func IsNotFoundError(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// IsInsufficientCreditsError checks if an error is an InsufficientCreditsError.
func IsInsufficientCreditsError(err error) bool {
	var ic *InsufficientCreditsError
	return errors.As(err, &ic)
}

// IsProviderError checks if an error came from the provider layer,
// either a missing credential or a failed call.
func IsProviderError(err error) bool {
	var pc *ProviderConfigError
	var pe *ProviderCallError
	return errors.As(err, &pc) || errors.As(err, &pe)
}
