package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"villas-backend/mailer"
	"villas-backend/metrics"
	"villas-backend/models"
)

const (
	BookingSuccessMessage = "Your booking request has been sent successfully! We'll contact you shortly to confirm your reservation."
	ContactSuccessMessage = "Your message has been sent successfully! We'll get back to you soon."

	kindBooking = "booking"
	kindContact = "contact"
)

// EmailSettings are the fixed envelope values of every notification.
type EmailSettings struct {
	From            string
	OperatorAddress string
	ResortName      string

	// ConfirmationToCustomer sends the confirmation to the visitor instead of
	// a forward-me copy to the operator.
	ConfirmationToCustomer bool
}

// SubmissionResult reports what happened to one inquiry.
// A failed confirmation copy after a delivered primary notification is still
// a success, visible through ConfirmationCopySent.
type SubmissionResult struct {
	Success              bool   `json:"success"`
	Message              string `json:"message"`
	PrimarySent          bool   `json:"primarySent"`
	ConfirmationCopySent bool   `json:"confirmationCopySent"`
	Duplicate            bool   `json:"duplicate,omitempty"`
}

type InquiryService struct {
	mailer   mailer.Mailer
	settings EmailSettings
	store    IdempotencyStore
	ttl      time.Duration
}

// NewInquiryService wires the service. A nil store disables de-duplication.
func NewInquiryService(m mailer.Mailer, settings EmailSettings, store IdempotencyStore, ttl time.Duration) *InquiryService {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &InquiryService{mailer: m, settings: settings, store: store, ttl: ttl}
}

// SubmitBooking forwards a booking inquiry to the operator. The total is
// taken as submitted.
func (s *InquiryService) SubmitBooking(ctx context.Context, inq models.BookingInquiry, idempotencyKey string) (SubmissionResult, error) {
	log.Printf("[INQUIRY] booking from %s <%s>, total %.2f", inq.Name, inq.Email, inq.TotalPrice)
	primary, confirmation := s.renderBooking(inq)
	return s.deliver(ctx, kindBooking, idempotencyKey, primary, confirmation, BookingSuccessMessage)
}

// SubmitContact forwards a general contact message to the operator.
func (s *InquiryService) SubmitContact(ctx context.Context, inq models.ContactInquiry, idempotencyKey string) (SubmissionResult, error) {
	log.Printf("[INQUIRY] contact from %s <%s>: %q", inq.Name, inq.Email, inq.Subject)
	primary, confirmation := s.renderContact(inq)
	return s.deliver(ctx, kindContact, idempotencyKey, primary, confirmation, ContactSuccessMessage)
}

// deliver sends the primary notification, then the confirmation, strictly in
// that order. The only error it returns is ErrSubmissionInProgress; delivery
// failures are reported in the result.
func (s *InquiryService) deliver(ctx context.Context, kind, key string, primary, confirmation mailer.Message, successMsg string) (SubmissionResult, error) {
	if key != "" && s.store != nil {
		key = kind + ":" + key
		state, err := s.store.Reserve(ctx, key, s.ttl)
		switch {
		case err != nil:
			log.Printf("⚠️  [INQUIRY] idempotency store unavailable, sending without de-duplication: %v", err)
			key = ""
		case state == ReservationSent:
			log.Printf("[INQUIRY] duplicate %s submission %s ignored", kind, key)
			metrics.RecordInquiry(kind, "duplicate")
			return SubmissionResult{Success: true, Message: successMsg, Duplicate: true}, nil
		case state == ReservationPending:
			return SubmissionResult{}, ErrSubmissionInProgress
		}
	} else {
		key = ""
	}

	if err := s.send(ctx, primary); err != nil {
		log.Printf("❌ [EMAIL] %s notification failed: %v", kind, err)
		if key != "" {
			if rerr := s.store.Release(context.WithoutCancel(ctx), key); rerr != nil {
				log.Printf("⚠️  [INQUIRY] release %s: %v", key, rerr)
			}
		}
		metrics.RecordInquiry(kind, "failed")
		return SubmissionResult{Success: false, Message: failureMessage(err)}, nil
	}

	if key != "" {
		if err := s.store.MarkSent(context.WithoutCancel(ctx), key, s.ttl); err != nil {
			log.Printf("⚠️  [INQUIRY] mark %s sent: %v", key, err)
		}
	}
	metrics.RecordInquiry(kind, "sent")

	result := SubmissionResult{Success: true, Message: successMsg, PrimarySent: true}

	// the primary notification is out; a client disconnect must not cut the copy
	if err := s.send(context.WithoutCancel(ctx), confirmation); err != nil {
		log.Printf("⚠️  [EMAIL] %s confirmation copy failed: %v", kind, err)
		metrics.RecordConfirmationCopyFailure(kind)
		return result, nil
	}
	result.ConfirmationCopySent = true
	log.Printf("✅ [EMAIL] %s notification and confirmation sent", kind)
	return result, nil
}

func (s *InquiryService) send(ctx context.Context, msg mailer.Message) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("mailer panic: %v", r)
		}
	}()
	_, err = s.mailer.Send(ctx, msg)
	return err
}

func failureMessage(err error) string {
	var pErr *mailer.ProviderError
	if errors.As(err, &pErr) {
		return "Error sending email: " + pErr.Message
	}
	return "Exception sending email: " + err.Error()
}
