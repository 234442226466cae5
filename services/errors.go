package services

import (
	"errors"
	"fmt"
)

// Store error kinds. Match them with errors.Is.
var (
	ErrNotInitialized   = errors.New("backend not initialized")
	ErrNotFound         = errors.New("submission not found")
	ErrUnavailable      = errors.New("backend unreachable")
	ErrPermissionDenied = errors.New("permission denied")
	ErrBackend          = errors.New("backend error")
)

// StoreError is returned by every SubmissionRepository operation that fails.
type StoreError struct {
	Op   string
	Kind error
	Err  error
}

func (e *StoreError) Error() string {
	if e.Err != nil && e.Err != e.Kind {
		return fmt.Sprintf("%s submission: %v: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s submission: %v", e.Op, e.Kind)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// Is matches the error kind, so errors.Is(err, ErrNotFound) works
func (e *StoreError) Is(target error) bool {
	return e.Kind == target
}

func newStoreError(op string, kind, err error) *StoreError {
	return &StoreError{Op: op, Kind: kind, Err: err}
}

// Auth error causes
var (
	ErrInvalidCredentials  = errors.New("invalid email or password")
	ErrProviderUnavailable = errors.New("identity provider not initialized")
	ErrAccountLocked       = errors.New("account is locked")
	ErrSessionInvalid      = errors.New("session invalid or expired")
)

// AuthError is returned by the identity provider and the session store.
type AuthError struct {
	Op  string
	Err error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("auth %s: %v", e.Op, e.Err)
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// Validation reasons for a contact submission
const (
	ReasonMissingFields = "missing_fields"
	ReasonInvalidEmail  = "invalid_email"
)

// ValidationError is a local contact-form failure. It never reaches the backend.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	switch e.Reason {
	case ReasonMissingFields:
		return "validation failed: name, email and message are required"
	case ReasonInvalidEmail:
		return "validation failed: invalid email format"
	}
	return "validation failed: " + e.Reason
}
