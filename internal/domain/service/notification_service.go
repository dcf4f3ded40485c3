package service

import (
	"context"

	"github.com/pkg/errors"
)

var (
	// ErrInvalidRecipient is returned before any network I/O when the destination is malformed.
	ErrInvalidRecipient = errors.New("invalid recipient")
	// ErrTransportNotConfigured is returned before any network I/O when credentials or endpoint are missing.
	ErrTransportNotConfigured = errors.New("transport is not configured")
	// ErrRequestRejected means the provider refused the request itself; resending it cannot succeed.
	ErrRequestRejected = errors.New("request rejected by provider")
)

// Document is a binary attachment sent through a messaging transport.
type Document struct {
	Filename string
	Caption  string
	Content  []byte
}

// MessagingService delivers documents to a phone number (WhatsApp-style transport).
type MessagingService interface {
	// SendDocument returns the provider message id on success.
	SendDocument(ctx context.Context, to string, doc Document) (string, error)
}

// MailTransport delivers plain emails.
type MailTransport interface {
	Send(ctx context.Context, to, subject, body string) error
}

// SMSTransport delivers text messages.
type SMSTransport interface {
	// Configured reports whether the transport is enabled and has credentials.
	Configured() bool

	Send(ctx context.Context, to, text string) error
}
