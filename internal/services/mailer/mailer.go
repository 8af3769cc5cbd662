// Package mailer defines the outbound email seam used for template test sends.
package mailer

import (
	"context"
	"strings"
)

// Message is one outbound email. HTML is the primary part; Text is the
// plain-text alternative.
type Message struct {
	To      string
	ReplyTo string
	Subject string
	HTML    string
	Text    string
}

// Mailer defines the interface for email sending functionality
type Mailer interface {
	// Send delivers a single message
	Send(ctx context.Context, msg Message) error

	// IsEnabled returns whether email functionality is enabled
	IsEnabled() bool
}

// TestSubject marks the subject of an operator preview so it is never
// mistaken for a customer send.
func TestSubject(subject string) string {
	const prefix = "[Test] "
	if strings.HasPrefix(subject, prefix) {
		return subject
	}
	return prefix + subject
}
