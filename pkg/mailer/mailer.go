package mailer

import (
	"fmt"
	"strings"

	"movietix/pkg/utils"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

// BookingMail is the data rendered into confirmation and cancellation
// messages.
type BookingMail struct {
	BookingID string
	Seats     []string
	ShowDate  string
	ShowTime  string
	Total     float64
}

// Mailer sends booking notifications over SMTP. Every send is
// fire-and-forget: delivery failure is logged and never fails a booking.
type Mailer struct {
	dialer *gomail.Dialer
	from   string
	log    *zap.Logger
}

func New(config utils.EmailConfig, log *zap.Logger) *Mailer {
	return &Mailer{
		dialer: gomail.NewDialer(config.Host, config.Port, config.User, config.Password),
		from:   config.From,
		log:    log.With(zap.String("component", "mailer")),
	}
}

func (m *Mailer) SendBookingConfirmation(to string, data BookingMail) {
	subject := fmt.Sprintf("Booking confirmed: %s", data.BookingID)
	body := fmt.Sprintf(
		"Your booking %s is confirmed.\n\nSeats: %s\nShow: %s %s\nTotal paid: %.2f\n\nShow the ticket QR at the venue.",
		data.BookingID, strings.Join(data.Seats, ", "), data.ShowDate, data.ShowTime, data.Total,
	)
	m.send(to, subject, body)
}

func (m *Mailer) SendBookingCancellation(to string, data BookingMail) {
	subject := fmt.Sprintf("Booking cancelled: %s", data.BookingID)
	body := fmt.Sprintf(
		"Your booking %s has been cancelled.\n\nSeats released: %s\nRefund of %.2f is being processed to your original payment method.",
		data.BookingID, strings.Join(data.Seats, ", "), data.Total,
	)
	m.send(to, subject, body)
}

func (m *Mailer) send(to, subject, body string) {
	go func() {
		msg := gomail.NewMessage()
		msg.SetHeader("From", m.from)
		msg.SetHeader("To", to)
		msg.SetHeader("Subject", subject)
		msg.SetBody("text/plain", body)

		if err := m.dialer.DialAndSend(msg); err != nil {
			m.log.Warn("Failed to send mail",
				zap.Error(err),
				zap.String("to", to),
				zap.String("subject", subject),
			)
		}
	}()
}
