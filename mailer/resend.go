package mailer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/resend/resend-go/v2"
)

const resendProvider = "resend"

// ResendMailer sends through the Resend HTTP API.
type ResendMailer struct {
	client *resend.Client
}

func NewResendMailer(apiKey string) *ResendMailer {
	return &ResendMailer{client: resend.NewClient(apiKey)}
}

func (m *ResendMailer) Send(ctx context.Context, msg Message) (string, error) {
	params := &resend.SendEmailRequest{
		From:    msg.From,
		To:      msg.To,
		Subject: msg.Subject,
		Html:    msg.HTML,
		Text:    msg.Text,
		ReplyTo: msg.ReplyTo,
	}

	sent, err := m.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		return "", classifyResendError(err)
	}
	return sent.Id, nil
}

// classifyResendError keeps transport failures as wrapped errors and turns
// everything the API answered with into a ProviderError. A body that is not
// the API's JSON (a gateway error page, a cut-off response) is a transport
// failure too.
func classifyResendError(err error) error {
	var urlErr *url.Error
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &urlErr) ||
		errors.As(err, &syntaxErr) ||
		errors.As(err, &typeErr) ||
		errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, io.EOF) ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("resend request failed: %w", err)
	}
	msg := strings.TrimSpace(strings.TrimPrefix(err.Error(), "[ERROR]:"))
	return &ProviderError{Provider: resendProvider, Message: msg}
}
