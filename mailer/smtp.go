package mailer

import (
	"context"
	"errors"
	"fmt"
	"log"
	"mime"
	"net/mail"
	"net/smtp"
	"net/textproto"
	"strings"

	"github.com/google/uuid"
)

const smtpBoundary = "----=_INQUIRY_EMAIL_BOUNDARY"

// SMTPMailer sends multipart/alternative mail with PLAIN auth.
type SMTPMailer struct {
	host     string
	port     string
	username string
	password string

	sendMail func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewSMTPMailer(host, port, username, password string) *SMTPMailer {
	return &SMTPMailer{
		host:     host,
		port:     port,
		username: username,
		password: password,
		sendMail: smtp.SendMail,
	}
}

func (m *SMTPMailer) Send(ctx context.Context, msg Message) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if len(msg.To) == 0 {
		return "", errors.New("smtp: message has no recipients")
	}

	id := uuid.NewString()
	raw := buildMIME(msg, fmt.Sprintf("<%s@%s>", id, m.host))
	auth := smtp.PlainAuth("", m.username, m.password, m.host)
	addr := fmt.Sprintf("%s:%s", m.host, m.port)

	if err := m.sendMail(addr, auth, m.username, msg.To, raw); err != nil {
		var tpErr *textproto.Error
		if errors.As(err, &tpErr) {
			return "", &ProviderError{Provider: "smtp", Message: tpErr.Msg}
		}
		log.Printf("[EMAIL] smtp send to %s failed: %v", strings.Join(msg.To, ","), err)
		return "", fmt.Errorf("smtp send: %w", err)
	}
	return id, nil
}

var headerLineBreaks = strings.NewReplacer("\r\n", " ", "\r", " ", "\n", " ")

// headerValue flattens s onto a single header line.
func headerValue(s string) string {
	return headerLineBreaks.Replace(strings.TrimSpace(s))
}

// addressHeader renders an address with an RFC 2047 display name when the
// name is not plain ASCII.
func addressHeader(s string) string {
	s = headerValue(s)
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Name == "" {
		return s
	}
	return addr.String()
}

func buildMIME(msg Message, messageID string) []byte {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("From: %s\r\n", addressHeader(msg.From)))
	sb.WriteString(fmt.Sprintf("To: %s\r\n", headerValue(strings.Join(msg.To, ", "))))
	if msg.ReplyTo != "" {
		sb.WriteString(fmt.Sprintf("Reply-To: %s\r\n", addressHeader(msg.ReplyTo)))
	}
	sb.WriteString(fmt.Sprintf("Subject: %s\r\n", mime.QEncoding.Encode("utf-8", headerValue(msg.Subject))))
	sb.WriteString(fmt.Sprintf("Message-ID: %s\r\n", messageID))
	sb.WriteString("MIME-Version: 1.0\r\n")
	sb.WriteString(fmt.Sprintf("Content-Type: multipart/alternative; boundary=\"%s\"\r\n\r\n", smtpBoundary))

	sb.WriteString(fmt.Sprintf("--%s\r\n", smtpBoundary))
	sb.WriteString("Content-Type: text/plain; charset=utf-8\r\n\r\n")
	sb.WriteString(msg.Text + "\r\n")

	sb.WriteString(fmt.Sprintf("--%s\r\n", smtpBoundary))
	sb.WriteString("Content-Type: text/html; charset=utf-8\r\n\r\n")
	sb.WriteString(msg.HTML + "\r\n")

	sb.WriteString(fmt.Sprintf("--%s--\r\n", smtpBoundary))
	return []byte(sb.String())
}
