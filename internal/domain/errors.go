package domain

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound        = errors.New("profile not found")
	ErrUnknownLanguage = errors.New("unknown language")
	ErrEmptyInterval   = errors.New("empty interval")
	ErrInvalidInterval = errors.New("interval must be a whole number of hours")
	ErrIntervalRange   = errors.New("interval out of range")

	ErrQuotaExceeded      = errors.New("quota exceeded")
	ErrInvalidCredentials = errors.New("invalid API key")
	ErrEmptyResponse      = errors.New("empty response from generator")
)

// InputError is returned when a dialog step receives unusable input.
// It is recovered locally by re-prompting.
type InputError struct {
	Field string
	Input string
	Err   error
}

func (e *InputError) Error() string {
	return fmt.Sprintf("invalid %s %q: %v", e.Field, e.Input, e.Err)
}

func (e *InputError) Unwrap() error { return e.Err }

// GenerationError wraps a content backend failure. Cause is shown to the user.
type GenerationError struct {
	Variant Variant
	Err     error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generate %s content: %v", e.Variant, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// Cause returns the human readable reason.
func (e *GenerationError) Cause() string {
	if e.Err == nil {
		return "unknown error"
	}
	return e.Err.Error()
}

// DeliveryError wraps a chat transport failure.
type DeliveryError struct {
	ChatID int64
	Op     string
	Err    error
}

func (e *DeliveryError) Error() string {
	return fmt.Sprintf("%s to chat %d: %v", e.Op, e.ChatID, e.Err)
}

func (e *DeliveryError) Unwrap() error { return e.Err }

// StoreError wraps a persistence failure. Callers log it and carry on.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("store %s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }
