package notifier

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"
)

// SMTP sends mail over a single authenticated SMTP endpoint.
type SMTP struct {
	Addr string // host:port
	User string
	Pass string
	From string
}

func (s *SMTP) send(to, subject, body string) error {
	host := s.Addr
	if i := strings.IndexByte(host, ':'); i >= 0 {
		host = host[:i]
	}
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s\r\n", s.From, to, subject, body)
	var auth smtp.Auth
	if s.User != "" {
		auth = smtp.PlainAuth("", s.User, s.Pass, host)
	}
	return smtp.SendMail(s.Addr, auth, s.User, []string{to}, []byte(msg))
}

func (s *SMTP) SendChallenge(_ context.Context, addr, code, displayName string) error {
	body := fmt.Sprintf(
		"Welcome, %s!\n\nYour verification code is %s.\nIt expires in 10 minutes.\n\nIf you didn't create an account with us, please ignore this email.\n",
		displayName, code)
	return s.send(addr, "Email Verification - OTP Code", body)
}

func (s *SMTP) SendWelcome(_ context.Context, addr, displayName, role string) error {
	body := fmt.Sprintf(
		"Congratulations, %s!\n\nYour account has been verified. You're now a %s member of the Suitcase Marketplace.\n",
		displayName, role)
	return s.send(addr, "Welcome to the Suitcase Marketplace!", body)
}
