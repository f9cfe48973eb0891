package mailer

import (
	"context"
	"log"
	"strings"

	"github.com/google/uuid"
)

// ConsoleMailer only logs what would have been sent.
type ConsoleMailer struct{}

func NewConsoleMailer() *ConsoleMailer { return &ConsoleMailer{} }

func (ConsoleMailer) Send(_ context.Context, msg Message) (string, error) {
	log.Printf("[MOCK EMAIL] to:%s subject:%q", strings.Join(msg.To, ","), msg.Subject)
	return "mock-" + uuid.NewString(), nil
}
