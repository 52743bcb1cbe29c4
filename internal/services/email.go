package services

import (
	"crypto/tls"
	"fmt"

	"github.com/okovalenko/coursereview-backend/internal/config"
	"github.com/okovalenko/coursereview-backend/internal/models"
	"gopkg.in/gomail.v2"
)

type EmailService struct {
	config *config.Config
}

func NewEmailService(config *config.Config) *EmailService {
	return &EmailService{config: config}
}

func (s *EmailService) SendEmail(to, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.config.FromEmail)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	d := gomail.NewDialer(s.config.SMTPHost, s.config.SMTPPort, s.config.SMTPUsername, s.config.SMTPPassword)
	d.TLSConfig = &tls.Config{InsecureSkipVerify: true}

	return d.DialAndSend(m)
}

// SendReviewDecision notifies a review author that a moderator accepted or
// returned their review.
func (s *EmailService) SendReviewDecision(to, courseName string, status int) error {
	var subject, note string
	switch status {
	case models.StatusAccepted:
		subject = "Your course review was accepted"
		note = "Your review was checked by a moderator and is now published."
	case models.StatusReturned:
		subject = "Your course review was returned"
		note = "Your review was checked by a moderator and returned. You can edit and resubmit it."
	default:
		return nil // no notification for the not-checked state
	}

	body := fmt.Sprintf(`
		<h2>%s</h2>
		<p>Course: <strong>%s</strong></p>
		<p>%s</p>
		<p><a href="%s">Open the course</a></p>
	`, subject, courseName, note, s.config.BaseURL)

	return s.SendEmail(to, subject, body)
}
