package services

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"villas-backend/mailer"
	"villas-backend/models"
)

const operator = "ops@resort.test"

// fakeMailer records every message; results[i] decides the outcome of call i.
type fakeMailer struct {
	mu      sync.Mutex
	sent    []mailer.Message
	results []func() error
}

func (f *fakeMailer) Send(_ context.Context, msg mailer.Message) (string, error) {
	f.mu.Lock()
	idx := len(f.sent)
	f.sent = append(f.sent, msg)
	var result func() error
	if idx < len(f.results) {
		result = f.results[idx]
	}
	f.mu.Unlock()

	if result != nil {
		if err := result(); err != nil {
			return "", err
		}
	}
	return "id", nil
}

func (f *fakeMailer) calls() []mailer.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]mailer.Message(nil), f.sent...)
}

func fail(err error) func() error { return func() error { return err } }

func newTestService(m mailer.Mailer, store IdempotencyStore) *InquiryService {
	return NewInquiryService(m, EmailSettings{
		From:            "The Villas Bedouin Resort <onboarding@resend.dev>",
		OperatorAddress: operator,
		ResortName:      "The Villas Bedouin Resort",
	}, store, time.Minute)
}

func anaBooking() models.BookingInquiry {
	return models.BookingInquiry{
		Name:        "Ana",
		Email:       "ana@example.com",
		Country:     "Spain",
		ArrivalDate: "2026-11-02",
		Guests:      1,
		Villas:      models.Villas{DoubleRoom: 1},
		Experiences: []models.SelectedExperience{{Name: "Horse Riding", Price: 100}},
		Message:     "Late arrival",
		TotalPrice:  350,
	}
}

func TestSubmitBookingSendsPrimaryThenCopy(t *testing.T) {
	fm := &fakeMailer{}
	svc := newTestService(fm, nil)

	res, err := svc.SubmitBooking(context.Background(), anaBooking(), "")
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.True(t, res.PrimarySent)
	assert.True(t, res.ConfirmationCopySent)
	assert.Equal(t, BookingSuccessMessage, res.Message)

	sent := fm.calls()
	require.Len(t, sent, 2)

	primary := sent[0]
	assert.Equal(t, []string{operator}, primary.To)
	assert.Equal(t, "ana@example.com", primary.ReplyTo)
	assert.Equal(t, "New Booking Request from Ana", primary.Subject)
	assert.Contains(t, primary.HTML, "<p><strong>Accommodation:</strong> 1 Double Room(s)</p>")
	assert.Contains(t, primary.HTML, "Horse Riding (100 JOD per person)")
	assert.Contains(t, primary.HTML, "<p><strong>Total Price:</strong> 350 JOD</p>")
	assert.NotContains(t, primary.HTML, "Phone")
	assert.Contains(t, primary.Text, "Total Price: 350 JOD")

	confirmation := sent[1]
	assert.Equal(t, []string{operator}, confirmation.To)
	assert.Equal(t, "COPY - Confirmation for Ana (ana@example.com)", confirmation.Subject)
	assert.Contains(t, confirmation.HTML, "COPY OF CUSTOMER CONFIRMATION - PLEASE FORWARD TO: ana@example.com")
	assert.Contains(t, confirmation.HTML, "Thank You for Your Booking Request")
	assert.Contains(t, confirmation.HTML, "1 Double Room(s)")
	assert.Contains(t, confirmation.HTML, "Best regards,<br>The Villas Bedouin Resort Team")
}

func TestBookingWithoutExperiencesSaysNone(t *testing.T) {
	fm := &fakeMailer{}
	inq := anaBooking()
	inq.Experiences = nil
	inq.Phone = "+962 7 0000 0000"

	_, err := newTestService(fm, nil).SubmitBooking(context.Background(), inq, "")
	require.NoError(t, err)
	assert.Contains(t, fm.calls()[0].HTML, "<p><strong>Experiences:</strong> None</p>")
	assert.Contains(t, fm.calls()[0].HTML, "<p><strong>Phone:</strong> +962 7 0000 0000</p>")
}

func TestConfirmationFailureIsPartialSuccess(t *testing.T) {
	fm := &fakeMailer{results: []func() error{nil, fail(errors.New("socket hang up"))}}

	res, err := newTestService(fm, nil).SubmitBooking(context.Background(), anaBooking(), "")
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.True(t, res.PrimarySent)
	assert.False(t, res.ConfirmationCopySent)
	assert.Equal(t, BookingSuccessMessage, res.Message)
	assert.Len(t, fm.calls(), 2)
}

func TestConfirmationPanicIsPartialSuccess(t *testing.T) {
	fm := &fakeMailer{results: []func() error{nil, func() error { panic("boom") }}}

	res, err := newTestService(fm, nil).SubmitContact(context.Background(), models.ContactInquiry{
		Name: "Omar", Email: "omar@example.com", Subject: "Dates", Message: "Open in July?",
	}, "")
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.False(t, res.ConfirmationCopySent)
}

func TestPrimaryProviderErrorStopsDelivery(t *testing.T) {
	fm := &fakeMailer{results: []func() error{fail(&mailer.ProviderError{Provider: "resend", Message: "rate limit exceeded"})}}

	res, err := newTestService(fm, nil).SubmitBooking(context.Background(), anaBooking(), "")
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.False(t, res.PrimarySent)
	assert.Equal(t, "Error sending email: rate limit exceeded", res.Message)
	assert.Len(t, fm.calls(), 1, "no confirmation after a failed primary")
}

func TestPrimaryTransportErrorMessage(t *testing.T) {
	fm := &fakeMailer{results: []func() error{fail(errors.New("dial tcp: i/o timeout"))}}

	res, err := newTestService(fm, nil).SubmitContact(context.Background(), models.ContactInquiry{
		Name: "Omar", Email: "omar@example.com", Subject: "Dates", Message: "Hi",
	}, "")
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, "Exception sending email: dial tcp: i/o timeout", res.Message)
}

func TestSubmitContact(t *testing.T) {
	fm := &fakeMailer{}

	res, err := newTestService(fm, nil).SubmitContact(context.Background(), models.ContactInquiry{
		Name: "Omar", Email: "omar@example.com", Phone: "123", Subject: "Group stay", Message: "We are 12 people.",
	}, "")
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, ContactSuccessMessage, res.Message)

	sent := fm.calls()
	require.Len(t, sent, 2)
	assert.Equal(t, "New Contact Form Submission: Group stay", sent[0].Subject)
	assert.Contains(t, sent[0].HTML, "<p><strong>Phone:</strong> 123</p>")
	assert.Contains(t, sent[0].HTML, "<p><strong>Message:</strong> We are 12 people.</p>")
	assert.Equal(t, "COPY - Confirmation for Omar (omar@example.com)", sent[1].Subject)
	assert.Contains(t, sent[1].HTML, "Thank You for Contacting Us")
	assert.Contains(t, sent[1].HTML, "Here&#39;s a copy of your message:")
}

func TestUserTextIsEscaped(t *testing.T) {
	fm := &fakeMailer{}
	inq := anaBooking()
	inq.Name = `<script>alert("x")</script>`
	inq.Message = "Tom & Jerry"

	_, err := newTestService(fm, nil).SubmitBooking(context.Background(), inq, "")
	require.NoError(t, err)

	primary := fm.calls()[0]
	assert.NotContains(t, primary.HTML, "<script>")
	assert.Contains(t, primary.HTML, "&lt;script&gt;")
	assert.Contains(t, primary.HTML, "Tom &amp; Jerry")
	assert.Contains(t, primary.Text, "Tom & Jerry")
}

func TestConfirmationToCustomer(t *testing.T) {
	fm := &fakeMailer{}
	svc := NewInquiryService(fm, EmailSettings{
		From:                   "resort@resort.test",
		OperatorAddress:        operator,
		ResortName:             "The Villas Bedouin Resort",
		ConfirmationToCustomer: true,
	}, nil, time.Minute)

	_, err := svc.SubmitBooking(context.Background(), anaBooking(), "")
	require.NoError(t, err)

	confirmation := fm.calls()[1]
	assert.Equal(t, []string{"ana@example.com"}, confirmation.To)
	assert.False(t, strings.HasPrefix(confirmation.Subject, "COPY"))
	assert.NotContains(t, confirmation.HTML, "PLEASE FORWARD")
	assert.Contains(t, confirmation.HTML, "Thank You for Your Booking Request")
}

func TestIdempotentResubmission(t *testing.T) {
	fm := &fakeMailer{}
	svc := newTestService(fm, NewMemoryIdempotencyStore())
	ctx := context.Background()

	first, err := svc.SubmitBooking(ctx, anaBooking(), "form-1")
	require.NoError(t, err)
	assert.False(t, first.Duplicate)

	second, err := svc.SubmitBooking(ctx, anaBooking(), "form-1")
	require.NoError(t, err)
	assert.True(t, second.Success)
	assert.True(t, second.Duplicate)
	assert.Len(t, fm.calls(), 2, "duplicate must not send again")

	// keys are scoped per inquiry kind
	_, err = svc.SubmitContact(ctx, models.ContactInquiry{Name: "Ana", Email: "ana@example.com", Subject: "s", Message: "m"}, "form-1")
	require.NoError(t, err)
	assert.Len(t, fm.calls(), 4)
}

func TestSubmissionInProgress(t *testing.T) {
	store := NewMemoryIdempotencyStore()
	_, err := store.Reserve(context.Background(), "booking:form-2", time.Minute)
	require.NoError(t, err)

	fm := &fakeMailer{}
	_, err = newTestService(fm, store).SubmitBooking(context.Background(), anaBooking(), "form-2")
	assert.ErrorIs(t, err, ErrSubmissionInProgress)
	assert.Empty(t, fm.calls())
}

func TestFailedPrimaryReleasesKey(t *testing.T) {
	fm := &fakeMailer{results: []func() error{fail(errors.New("timeout"))}}
	svc := newTestService(fm, NewMemoryIdempotencyStore())

	res, err := svc.SubmitBooking(context.Background(), anaBooking(), "form-3")
	require.NoError(t, err)
	assert.False(t, res.Success)

	res, err = svc.SubmitBooking(context.Background(), anaBooking(), "form-3")
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.False(t, res.Duplicate)
	assert.Len(t, fm.calls(), 3)
}

func TestEmptyKeyDisablesDeduplication(t *testing.T) {
	fm := &fakeMailer{}
	svc := newTestService(fm, NewMemoryIdempotencyStore())

	for i := 0; i < 2; i++ {
		res, err := svc.SubmitBooking(context.Background(), anaBooking(), "")
		require.NoError(t, err)
		assert.False(t, res.Duplicate)
	}
	assert.Len(t, fm.calls(), 4)
}

func TestCancelledRequestStillSendsConfirmation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	fm := &fakeMailer{results: []func() error{func() error { cancel(); return nil }}}

	var seen []error
	m := mailerFunc(func(c context.Context, msg mailer.Message) (string, error) {
		seen = append(seen, c.Err())
		return fm.Send(c, msg)
	})

	res, err := newTestService(m, nil).SubmitBooking(ctx, anaBooking(), "")
	require.NoError(t, err)
	assert.True(t, res.ConfirmationCopySent)
	require.Len(t, seen, 2)
	assert.NoError(t, seen[1])
}

type mailerFunc func(context.Context, mailer.Message) (string, error)

func (f mailerFunc) Send(ctx context.Context, msg mailer.Message) (string, error) { return f(ctx, msg) }

// unavailableStore fails every call the way an unreachable Redis would.
type unavailableStore struct{ reserves int }

func (s *unavailableStore) Reserve(context.Context, string, time.Duration) (ReservationState, error) {
	s.reserves++
	return ReservationNew, errors.New("dial tcp 127.0.0.1:6379: connect: connection refused")
}

func (s *unavailableStore) MarkSent(context.Context, string, time.Duration) error {
	return errors.New("unexpected MarkSent without a reservation")
}

func (s *unavailableStore) Release(context.Context, string) error {
	return errors.New("unexpected Release without a reservation")
}

func TestUnavailableStoreSendsWithoutDeduplication(t *testing.T) {
	fm := &fakeMailer{}
	store := &unavailableStore{}
	svc := newTestService(fm, store)

	for i := 0; i < 2; i++ {
		res, err := svc.SubmitBooking(context.Background(), anaBooking(), "form-9")
		require.NoError(t, err)
		assert.True(t, res.Success)
		assert.False(t, res.Duplicate)
		assert.True(t, res.ConfirmationCopySent)
	}
	assert.Equal(t, 2, store.reserves)
	assert.Len(t, fm.calls(), 4)
}

func TestIdempotentResubmissionOverRedis(t *testing.T) {
	mr, _, store := newMiniRedisStore(t)
	fm := &fakeMailer{}
	svc := newTestService(fm, store)
	ctx := context.Background()

	first, err := svc.SubmitContact(ctx, models.ContactInquiry{Name: "Ana", Email: "ana@example.com", Subject: "s", Message: "m"}, "form-10")
	require.NoError(t, err)
	assert.True(t, first.Success)
	assert.Equal(t, stateSent, mustGet(t, mr, redisKeyPrefix+"contact:form-10"))

	second, err := svc.SubmitContact(ctx, models.ContactInquiry{Name: "Ana", Email: "ana@example.com", Subject: "s", Message: "m"}, "form-10")
	require.NoError(t, err)
	assert.True(t, second.Duplicate)
	assert.Len(t, fm.calls(), 2)

	fm.results = []func() error{nil, nil, fail(errors.New("timeout"))}
	res, err := svc.SubmitBooking(ctx, anaBooking(), "form-11")
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.False(t, mr.Exists(redisKeyPrefix+"booking:form-11"), "failed primary releases the key")
}
