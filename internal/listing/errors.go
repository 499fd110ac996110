package listing

import (
	"errors"
	"fmt"
)

// ErrMissingField indicates the submission lacked a required input.
var ErrMissingField = errors.New("missing required field")

// ErrMailerNotConfigured indicates the outbound mail channel has no
// credentials. The whole submission fails before anything is persisted.
var ErrMailerNotConfigured = errors.New("mailer is not configured")

// ErrNotFound indicates a listing row does not exist.
var ErrNotFound = errors.New("listing not found")

// ScoutError wraps an extractor failure. It is never surfaced to callers;
// the pipeline absorbs it into placeholder metadata and logs it.
type ScoutError struct {
	Strategy Strategy
	URL      string
	Err      error
}

func (e *ScoutError) Error() string {
	return fmt.Sprintf("%s scout failed for %s: %v", e.Strategy, e.URL, e.Err)
}

func (e *ScoutError) Unwrap() error { return e.Err }

// PersistenceError wraps a store failure. Fatal for the submission; no
// notification is sent and nothing was durably saved.
type PersistenceError struct {
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persist listing: %v", e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// NotificationError wraps a mail-provider failure. Logged and swallowed;
// the persisted listing stands and the caller still sees success.
type NotificationError struct {
	Err error
}

func (e *NotificationError) Error() string {
	return fmt.Sprintf("send notification: %v", e.Err)
}

func (e *NotificationError) Unwrap() error { return e.Err }
