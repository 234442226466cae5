package services

import (
	"agency_site_go/models"
	"context"
	"errors"
	"regexp"
	"strings"
	"sync"
	"time"
)

// FormStatus is the contact form's state
type FormStatus string

const (
	FormIdle    FormStatus = "idle"
	FormSending FormStatus = "sending"
	FormSuccess FormStatus = "success"
	FormError   FormStatus = "error"
)

// ErrorCategory is the user-facing class of a failed submission
type ErrorCategory string

const (
	CategoryNone           ErrorCategory = ""
	CategoryMissingFields  ErrorCategory = ReasonMissingFields
	CategoryInvalidEmail   ErrorCategory = ReasonInvalidEmail
	CategoryConnectivity   ErrorCategory = "connectivity"
	CategoryNotInitialized ErrorCategory = "not_initialized"
	CategoryGeneric        ErrorCategory = "generic"
)

// DefaultResetDelay is how long success and error stay visible
const DefaultResetDelay = 5 * time.Second

// ErrSubmitInProgress rejects a second submit while one is sending
var ErrSubmitInProgress = errors.New("submission already in progress")

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// IsValidEmail checks the local@domain.tld shape
func IsValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// NormalizeContactFields trims every field and lowercases the email.
// Unknown service values become empty.
func NormalizeContactFields(fields models.ContactFields) models.ContactFields {
	normalized := models.ContactFields{
		Name:    strings.TrimSpace(fields.Name),
		Email:   strings.ToLower(strings.TrimSpace(fields.Email)),
		Company: strings.TrimSpace(fields.Company),
		Phone:   strings.TrimSpace(fields.Phone),
		Service: strings.TrimSpace(fields.Service),
		Message: strings.TrimSpace(fields.Message),
	}
	if !models.IsValidService(normalized.Service) {
		normalized.Service = ""
	}
	return normalized
}

// ValidateContactFields checks required fields and the email shape
func ValidateContactFields(fields models.ContactFields) error {
	if fields.Name == "" || fields.Email == "" || fields.Message == "" {
		return &ValidationError{Reason: ReasonMissingFields}
	}
	if !IsValidEmail(fields.Email) {
		return &ValidationError{Reason: ReasonInvalidEmail}
	}
	return nil
}

// CategorizeSubmitError maps a submit failure to what the visitor is told
func CategorizeSubmitError(err error) ErrorCategory {
	if err == nil {
		return CategoryNone
	}

	var validationErr *ValidationError
	if errors.As(err, &validationErr) {
		switch validationErr.Reason {
		case ReasonMissingFields:
			return CategoryMissingFields
		case ReasonInvalidEmail:
			return CategoryInvalidEmail
		}
	}

	switch {
	case errors.Is(err, ErrNotInitialized):
		return CategoryNotInitialized
	case errors.Is(err, ErrUnavailable), errors.Is(err, ErrPermissionDenied):
		return CategoryConnectivity
	}
	return CategoryGeneric
}

// ContactFormState is a snapshot of the form
type ContactFormState struct {
	Status       FormStatus
	Fields       models.ContactFields
	Category     ErrorCategory
	SubmissionID string
}

// ContactForm drives one contact form: idle, sending, then success or error,
// and back to idle after the reset delay.
type ContactForm struct {
	mu         sync.Mutex
	repo       SubmissionRepository
	resetDelay time.Duration

	state ContactFormState
	gen   uint64
	timer *time.Timer
}

// NewContactForm creates an idle form. A zero resetDelay uses DefaultResetDelay.
func NewContactForm(repo SubmissionRepository, resetDelay time.Duration) *ContactForm {
	if resetDelay <= 0 {
		resetDelay = DefaultResetDelay
	}
	return &ContactForm{
		repo:       repo,
		resetDelay: resetDelay,
		state:      ContactFormState{Status: FormIdle},
	}
}

// ResetDelay returns how long a result stays before the form goes idle
func (f *ContactForm) ResetDelay() time.Duration {
	return f.resetDelay
}

// State returns the current snapshot
func (f *ContactForm) State() ContactFormState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Submit validates, normalizes and stores fields. It calls the repository at
// most once and never retries.
func (f *ContactForm) Submit(ctx context.Context, fields models.ContactFields) (ContactFormState, error) {
	f.mu.Lock()
	if f.state.Status == FormSending {
		state := f.state
		f.mu.Unlock()
		return state, ErrSubmitInProgress
	}
	f.stopTimerLocked()
	f.gen++
	gen := f.gen
	f.state = ContactFormState{Status: FormSending, Fields: fields}
	f.mu.Unlock()

	normalized := NormalizeContactFields(fields)
	if err := ValidateContactFields(normalized); err != nil {
		return f.finish(gen, FormError, fields, CategorizeSubmitError(err), ""), err
	}

	id, err := f.repo.Create(ctx, normalized)
	if err != nil {
		return f.finish(gen, FormError, fields, CategorizeSubmitError(err), ""), err
	}

	return f.finish(gen, FormSuccess, models.ContactFields{}, CategoryNone, id), nil
}

func (f *ContactForm) finish(gen uint64, status FormStatus, fields models.ContactFields, category ErrorCategory, id string) ContactFormState {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.state = ContactFormState{
		Status:       status,
		Fields:       fields,
		Category:     category,
		SubmissionID: id,
	}
	f.timer = time.AfterFunc(f.resetDelay, func() {
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.gen != gen {
			return
		}
		if f.state.Status == FormSuccess || f.state.Status == FormError {
			f.state.Status = FormIdle
			f.state.Category = CategoryNone
		}
	})
	return f.state
}

func (f *ContactForm) stopTimerLocked() {
	if f.timer != nil {
		f.timer.Stop()
		f.timer = nil
	}
}

// Close stops a pending reset
func (f *ContactForm) Close() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopTimerLocked()
}
