// internal/mailer/mailer.go
package mailer

import (
	"fmt"
	"net/url"

	"gopkg.in/mail.v2"
)

// Mailer sends account verification mail over SMTP.
type Mailer struct {
	host     string
	port     int
	username string
	password string
	from     string
	baseURL  string
}

func NewMailer(host string, port int, username, password, from, baseURL string) *Mailer {
	return &Mailer{
		host:     host,
		port:     port,
		username: username,
		password: password,
		from:     from,
		baseURL:  baseURL,
	}
}

func (m *Mailer) SendVerification(name, email, token string) error {
	link := fmt.Sprintf("%s/auth/verify-email?token=%s", m.baseURL, url.QueryEscape(token))
	body := fmt.Sprintf(
		"<p>Hi %s,</p><p>Welcome to the music catalog. Please confirm your email address:</p><p><a href=%q>Verify email</a></p>",
		name, link)
	return m.send(email, "Confirm your email", body)
}

func (m *Mailer) SendPasswordReset(name, email, token string) error {
	link := fmt.Sprintf("%s/auth/reset-password?token=%s", m.baseURL, url.QueryEscape(token))
	body := fmt.Sprintf(
		"<p>Hi %s,</p><p>A password reset was requested for your account:</p><p><a href=%q>Reset password</a></p>",
		name, link)
	return m.send(email, "Password reset", body)
}

func (m *Mailer) SendEmailUpdate(name, newEmail, token string) error {
	link := fmt.Sprintf("%s/auth/verify-email-update?token=%s&email=%s",
		m.baseURL, url.QueryEscape(token), url.QueryEscape(newEmail))
	body := fmt.Sprintf(
		"<p>Hi %s,</p><p>Please confirm your new email address:</p><p><a href=%q>Confirm email change</a></p>",
		name, link)
	return m.send(newEmail, "Email update confirmation", body)
}

func (m *Mailer) send(to, subject, body string) error {
	msg := mail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body)

	d := mail.NewDialer(m.host, m.port, m.username, m.password)
	if err := d.DialAndSend(msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
