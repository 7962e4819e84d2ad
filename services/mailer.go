package services

import (
	"fmt"
	"log"
	"net/smtp"
	"os"
	"strings"

	"github.com/michalprusek/marianska-sub001/models"
	"github.com/michalprusek/marianska-sub001/utils"
)

// MailService delivers guest-facing booking mail. It runs strictly after
// a mutation has committed; a lost mail is logged, never propagated back
// into the request. Every entry point honors the skip flag the caller
// passes through from the API.
type MailService struct{}

// NewMailService creates a new mail service instance
func NewMailService() *MailService {
	return &MailService{}
}

// Enabled reports whether SMTP delivery is configured. Without SMTP_HOST
// the mailer only logs, which is the expected mode in development.
func (ms *MailService) Enabled() bool {
	return os.Getenv("SMTP_HOST") != ""
}

// SendBookingCreated mails the confirmation with the self-service edit code.
func (ms *MailService) SendBookingCreated(b *models.Booking, skip bool) error {
	if skip {
		log.Printf("📧 MAIL SKIPPED: booking %d created (skip flag set)", b.ID)
		return nil
	}
	phoneLine := ""
	if b.Phone != "" {
		phoneLine = "Kontaktní telefon: " + utils.DisplayPhoneNumber(b.Phone) + "\n"
	}
	subject := "Potvrzení rezervace – Chata Mariánská"
	body := fmt.Sprintf(
		"Dobrý den %s,\n\n"+
			"vaše rezervace byla úspěšně vytvořena.\n\n"+
			"Termín: %s – %s\n"+
			"Počet nocí: %d\n"+
			"Cena celkem: %.0f Kč\n"+
			"%s\n"+
			"Rezervaci můžete upravit pomocí kódu: %s\n\n"+
			"Chata Mariánská",
		b.Name,
		b.StartDate.Format("2.1.2006"), b.EndDate.Format("2.1.2006"),
		b.Nights(), b.TotalPrice, phoneLine, b.EditToken)
	return ms.send(b.Email, subject, body, "created", b.ID)
}

// SendBookingUpdated mails the new dates and price after an edit.
func (ms *MailService) SendBookingUpdated(b *models.Booking, skip bool) error {
	if skip {
		log.Printf("📧 MAIL SKIPPED: booking %d updated (skip flag set)", b.ID)
		return nil
	}
	subject := "Změna rezervace – Chata Mariánská"
	body := fmt.Sprintf(
		"Dobrý den %s,\n\n"+
			"vaše rezervace byla upravena.\n\n"+
			"Nový termín: %s – %s\n"+
			"Cena celkem: %.0f Kč\n\n"+
			"Chata Mariánská",
		b.Name,
		b.StartDate.Format("2.1.2006"), b.EndDate.Format("2.1.2006"),
		b.TotalPrice)
	return ms.send(b.Email, subject, body, "updated", b.ID)
}

// SendBookingCancelled mails the cancellation notice.
func (ms *MailService) SendBookingCancelled(b *models.Booking, skip bool) error {
	if skip {
		log.Printf("📧 MAIL SKIPPED: booking %d cancelled (skip flag set)", b.ID)
		return nil
	}
	subject := "Zrušení rezervace – Chata Mariánská"
	body := fmt.Sprintf(
		"Dobrý den %s,\n\n"+
			"vaše rezervace na termín %s – %s byla zrušena.\n\n"+
			"Chata Mariánská",
		b.Name,
		b.StartDate.Format("2.1.2006"), b.EndDate.Format("2.1.2006"))
	return ms.send(b.Email, subject, body, "cancelled", b.ID)
}

func (ms *MailService) send(to, subject, body, event string, bookingID uint) error {
	if to == "" {
		log.Printf("❌ MAIL ERROR: booking %d has no contact email", bookingID)
		return fmt.Errorf("booking %d has no contact email", bookingID)
	}
	if !ms.Enabled() {
		log.Printf("📧 MAIL (dry run) to %s: %s", to, subject)
		return nil
	}

	host := os.Getenv("SMTP_HOST")
	port := os.Getenv("SMTP_PORT")
	if port == "" {
		port = "587"
	}
	from := os.Getenv("SMTP_FROM")
	if from == "" {
		from = os.Getenv("SMTP_USER")
	}

	var auth smtp.Auth
	if user := os.Getenv("SMTP_USER"); user != "" {
		auth = smtp.PlainAuth("", user, os.Getenv("SMTP_PASSWORD"), host)
	}

	msg := strings.Join([]string{
		"From: " + from,
		"To: " + to,
		"Subject: " + subject,
		"MIME-Version: 1.0",
		`Content-Type: text/plain; charset="utf-8"`,
		"",
		body,
	}, "\r\n")

	if err := smtp.SendMail(host+":"+port, auth, from, []string{to}, []byte(msg)); err != nil {
		log.Printf("❌ MAIL ERROR: booking %d %s mail to %s failed: %v", bookingID, event, to, err)
		return err
	}
	log.Printf("✅ MAIL SUCCESS: booking %d %s mail sent to %s", bookingID, event, to)
	return nil
}

// Global mail service instance
var MailServiceInstance = NewMailService()
