package services

import (
	"fmt"
	"html"
	"strings"

	"villas-backend/mailer"
	"villas-backend/models"
	"villas-backend/pricing"
)

// emailBody writes the HTML body and its plain text alternative side by side.
// Every value passed in is user text and gets escaped on the HTML side.
type emailBody struct {
	html strings.Builder
	text strings.Builder
}

func (b *emailBody) heading(level int, s string) {
	fmt.Fprintf(&b.html, "<h%d>%s</h%d>\n", level, html.EscapeString(s), level)
	b.text.WriteString(s + "\n\n")
}

func (b *emailBody) para(s string) {
	fmt.Fprintf(&b.html, "<p>%s</p>\n", html.EscapeString(s))
	b.text.WriteString(s + "\n\n")
}

func (b *emailBody) field(label, value string) {
	fmt.Fprintf(&b.html, "<p><strong>%s:</strong> %s</p>\n", html.EscapeString(label), html.EscapeString(value))
	fmt.Fprintf(&b.text, "%s: %s\n", label, value)
}

func (b *emailBody) rule() {
	b.html.WriteString("<hr>\n")
	b.text.WriteString("\n----------------------------------------\n\n")
}

func (b *emailBody) signoff(resortName string) {
	team := html.EscapeString(resortName + " Team")
	fmt.Fprintf(&b.html, "<p>Best regards,<br>%s</p>\n", team)
	fmt.Fprintf(&b.text, "\nBest regards,\n%s Team\n", resortName)
}

func (b *emailBody) message(from string, to []string, replyTo, subject string) mailer.Message {
	return mailer.Message{
		From:    from,
		To:      to,
		ReplyTo: replyTo,
		Subject: subject,
		HTML:    b.html.String(),
		Text:    b.text.String(),
	}
}

func accommodationLine(v models.Villas) string {
	return strings.Join(pricing.RoomSummary(v), ", ")
}

func experiencesLine(exps []models.SelectedExperience) string {
	if len(exps) == 0 {
		return "None"
	}
	parts := make([]string, 0, len(exps))
	for _, exp := range exps {
		parts = append(parts, fmt.Sprintf("%s (%s JOD per person)", exp.Name, pricing.FormatAmount(exp.Price)))
	}
	return strings.Join(parts, ", ")
}

// copyPreamble is the header of a confirmation routed to the operator for
// manual forwarding.
func (s *InquiryService) copyPreamble(b *emailBody, customerEmail string) {
	b.heading(1, "COPY OF CUSTOMER CONFIRMATION - PLEASE FORWARD TO: "+customerEmail)
	b.para(fmt.Sprintf("This is a copy of the confirmation email that would be sent to the customer. Please forward this to %s manually.", customerEmail))
	b.rule()
}

// confirmationEnvelope decides who receives the confirmation and under which subject.
func (s *InquiryService) confirmationEnvelope(b *emailBody, name, email, customerSubject string) ([]string, string) {
	if s.settings.ConfirmationToCustomer {
		return []string{email}, customerSubject
	}
	s.copyPreamble(b, email)
	return []string{s.settings.OperatorAddress}, fmt.Sprintf("COPY - Confirmation for %s (%s)", name, email)
}

func (s *InquiryService) renderBooking(inq models.BookingInquiry) (mailer.Message, mailer.Message) {
	accommodation := accommodationLine(inq.Villas)
	experiences := experiencesLine(inq.Experiences)
	total := pricing.FormatAmount(inq.TotalPrice) + " JOD"
	guests := fmt.Sprintf("%d", inq.Guests)

	var p emailBody
	p.heading(1, "New Booking Request")
	p.field("Name", inq.Name)
	p.field("Email", inq.Email)
	if inq.Phone != "" {
		p.field("Phone", inq.Phone)
	}
	p.field("Country", inq.Country)
	p.field("Arrival Date", inq.ArrivalDate)
	p.field("Number of Guests", guests)
	p.field("Accommodation", accommodation)
	p.field("Experiences", experiences)
	p.field("Special Requests", inq.Message)
	p.field("Total Price", total)
	primary := p.message(s.settings.From, []string{s.settings.OperatorAddress}, inq.Email,
		fmt.Sprintf("New Booking Request from %s", inq.Name))

	var c emailBody
	to, subject := s.confirmationEnvelope(&c, inq.Name, inq.Email,
		fmt.Sprintf("Your booking request at %s", s.settings.ResortName))
	c.heading(1, "Thank You for Your Booking Request")
	c.para(fmt.Sprintf("Dear %s,", inq.Name))
	c.para("We have received your booking request and will get back to you shortly to confirm your reservation.")
	c.heading(2, "Booking Details:")
	c.field("Arrival Date", inq.ArrivalDate)
	c.field("Number of Guests", guests)
	c.field("Accommodation", accommodation)
	c.field("Experiences", experiences)
	c.field("Total Price", total)
	c.para("If you have any questions, please don't hesitate to contact us.")
	c.signoff(s.settings.ResortName)
	confirmation := c.message(s.settings.From, to, "", subject)

	return primary, confirmation
}

func (s *InquiryService) renderContact(inq models.ContactInquiry) (mailer.Message, mailer.Message) {
	var p emailBody
	p.heading(1, "New Contact Form Submission")
	p.field("Name", inq.Name)
	p.field("Email", inq.Email)
	if inq.Phone != "" {
		p.field("Phone", inq.Phone)
	}
	p.field("Subject", inq.Subject)
	p.field("Message", inq.Message)
	primary := p.message(s.settings.From, []string{s.settings.OperatorAddress}, inq.Email,
		fmt.Sprintf("New Contact Form Submission: %s", inq.Subject))

	var c emailBody
	to, subject := s.confirmationEnvelope(&c, inq.Name, inq.Email,
		fmt.Sprintf("We received your message - %s", s.settings.ResortName))
	c.heading(1, "Thank You for Contacting Us")
	c.para(fmt.Sprintf("Dear %s,", inq.Name))
	c.para("We have received your message and will get back to you shortly.")
	c.para("Here's a copy of your message:")
	c.field("Subject", inq.Subject)
	c.field("Message", inq.Message)
	c.signoff(s.settings.ResortName)
	confirmation := c.message(s.settings.From, to, "", subject)

	return primary, confirmation
}
