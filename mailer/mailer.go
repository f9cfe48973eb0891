// Package mailer delivers rendered notifications through a transactional
// email provider.
package mailer

import (
	"context"
	"fmt"

	"villas-backend/config"
)

// Message is one outgoing email with an HTML body and a plain text alternative.
type Message struct {
	From    string
	To      []string
	ReplyTo string
	Subject string
	HTML    string
	Text    string
}

// Mailer sends a message and returns the provider's message id.
type Mailer interface {
	Send(ctx context.Context, msg Message) (string, error)
}

// ProviderError is a failure reported by the provider itself, as opposed to
// a transport failure on the way to it.
type ProviderError struct {
	Provider string
	Message  string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("%s: %s", e.Provider, e.Message)
}

// New selects the mailer named by cfg.Provider.
func New(cfg config.EmailConfig) (Mailer, error) {
	switch cfg.Provider {
	case "resend":
		if cfg.ResendAPIKey == "" {
			return nil, fmt.Errorf("resend mailer requires an API key")
		}
		return NewResendMailer(cfg.ResendAPIKey), nil
	case "smtp":
		return NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUsername, cfg.SMTPPassword), nil
	case "console", "":
		return NewConsoleMailer(), nil
	default:
		return nil, fmt.Errorf("unsupported email provider %q", cfg.Provider)
	}
}
