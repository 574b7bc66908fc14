package domain

import (
	"errors"
	"fmt"
)

// FailureKind classifies a provider send failure.
type FailureKind string

const (
	FailureNotConfigured FailureKind = "not_configured"
	FailureTransient     FailureKind = "transient"
	FailurePermanent     FailureKind = "permanent"
)

// Sentinel errors adapters use when classifying provider failures.
var (
	// ErrNotConfigured means the adapter has no usable credentials. The
	// orchestrator skips such providers without recording an attempt.
	ErrNotConfigured = errors.New("provider not configured")
	// ErrTransient covers network failures, timeouts and provider 5xx.
	ErrTransient = errors.New("transient send error")
	// ErrPermanent covers provider 4xx validation rejections; retrying the
	// same adapter cannot help.
	ErrPermanent = errors.New("permanent send error")
)

// WrapTransient annotates an error so callers can detect transient failures.
func WrapTransient(err error) error {
	if err == nil {
		return ErrTransient
	}
	return fmt.Errorf("%w: %v", ErrTransient, err)
}

// WrapPermanent annotates an error as permanent.
func WrapPermanent(err error) error {
	if err == nil {
		return ErrPermanent
	}
	return fmt.Errorf("%w: %v", ErrPermanent, err)
}

// Classify maps a send error onto its FailureKind. Unrecognized errors are
// treated as transient so the fallback chain keeps moving.
func Classify(err error) FailureKind {
	switch {
	case errors.Is(err, ErrNotConfigured):
		return FailureNotConfigured
	case errors.Is(err, ErrPermanent):
		return FailurePermanent
	default:
		return FailureTransient
	}
}
