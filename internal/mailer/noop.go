package mailer

import "context"

// NoOp is a mailer that records nothing and always succeeds. Useful for
// local development without Resend credentials.
type NoOp struct{}

// Configured always reports true so submissions are not rejected.
func (NoOp) Configured() bool { return true }

// Send discards the message.
func (NoOp) Send(_ context.Context, _ []string, _, _ string) error { return nil }
