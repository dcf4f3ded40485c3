package mail

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"storehub/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gomail "github.com/wneessen/go-mail"
)

type fakeSender struct {
	messages []*gomail.Msg
	err      error
}

func (f *fakeSender) DialAndSendWithContext(_ context.Context, messages ...*gomail.Msg) error {
	f.messages = append(f.messages, messages...)

	return f.err
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSMTPTransport_Send(t *testing.T) {
	fake := &fakeSender{}
	transport := newSMTPTransport(fake, "no-reply@storehub.local", discardLogger())

	require.NoError(t, transport.Send(context.Background(), "owner@example.com", "Your code", "123456"))
	require.Len(t, fake.messages, 1)

	recipients, err := fake.messages[0].GetRecipients()
	require.NoError(t, err)
	assert.Equal(t, []string{"owner@example.com"}, recipients)
	assert.Equal(t, []string{"Your code"}, fake.messages[0].GetGenHeader(gomail.HeaderSubject))
}

func TestSMTPTransport_InvalidRecipient(t *testing.T) {
	fake := &fakeSender{}
	transport := newSMTPTransport(fake, "no-reply@storehub.local", discardLogger())

	err := transport.Send(context.Background(), "not an address", "Your code", "123456")
	assert.Error(t, err)
	assert.Empty(t, fake.messages)
}

func TestSMTPTransport_PropagatesSendError(t *testing.T) {
	fake := &fakeSender{err: assert.AnError}
	transport := newSMTPTransport(fake, "no-reply@storehub.local", discardLogger())

	err := transport.Send(context.Background(), "owner@example.com", "Your code", "123456")
	assert.ErrorIs(t, err, assert.AnError)
}

func TestNewSMTPTransport_RequiresConfig(t *testing.T) {
	_, err := NewSMTPTransport(&config.Config{}, discardLogger())
	assert.Error(t, err)

	_, err = NewSMTPTransport(&config.Config{Mail: &config.MailConfig{Host: "localhost"}}, discardLogger())
	assert.Error(t, err)

	transport, err := NewSMTPTransport(&config.Config{Mail: &config.MailConfig{
		Host:        "localhost",
		Port:        1025,
		FromAddress: "no-reply@storehub.local",
	}}, discardLogger())
	require.NoError(t, err)
	assert.NotNil(t, transport)
}
