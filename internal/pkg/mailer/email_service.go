package mailer

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/gomail.v2"
)

type IEmailService interface {
	SendApprovalReminder(toEmail string, tools []string) error
	SendJobsDigest(toEmail string, count int) error
}

type emailService struct {
	dialer      *gomail.Dialer
	senderEmail string
	frontendURL string
}

func NewEmailService(host string, port int, username, password, senderEmail string) IEmailService {
	d := gomail.NewDialer(host, port, username, password)

	frontendURL := os.Getenv("FRONTEND_URL")

	return &emailService{
		dialer:      d,
		senderEmail: senderEmail,
		frontendURL: frontendURL,
	}
}

// SendApprovalReminder tells the user a search is paused waiting on
// their go-ahead.
func (s *emailService) SendApprovalReminder(toEmail string, tools []string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.senderEmail)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", "Your job search is waiting for approval")

	actions := "run its next step"
	if len(tools) > 0 {
		actions = strings.Join(tools, ", ")
	}

	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>Action needed</h2>
			<p>Your job search assistant is paused and wants to: <b>%s</b></p>
			<p>Open your chat to approve or cancel.</p>
			<a href="%s" style="background-color: #007BFF; color: white; padding: 10px 20px; text-decoration: none; border-radius: 5px; display: inline-block;">Open chat</a>
		</div>
	`, actions, s.frontendURL)

	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		fmt.Printf("[MAILER ERROR] Failed to send approval reminder to %s: %v\n", toEmail, err)
		return err
	}
	return nil
}

// SendJobsDigest summarizes a completed search run.
func (s *emailService) SendJobsDigest(toEmail string, count int) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.senderEmail)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", fmt.Sprintf("Your search found %d matching jobs", count))

	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>Search complete</h2>
			<p>Your assistant found <b>%d</b> jobs matching your profile.</p>
			<p>Open your chat to review them and pick the ones you want details for.</p>
			<a href="%s" style="background-color: #4CAF50; color: white; padding: 10px 20px; text-decoration: none; border-radius: 5px; display: inline-block;">View results</a>
		</div>
	`, count, s.frontendURL)

	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		fmt.Printf("[MAILER ERROR] Failed to send jobs digest to %s: %v\n", toEmail, err)
		return err
	}
	return nil
}
