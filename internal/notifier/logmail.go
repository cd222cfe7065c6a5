package notifier

import (
	"context"
	"log"
)

// LogMail is the dev notifier: it logs instead of delivering. Useful when
// SMTP_ADDR is unset.
type LogMail struct{}

func (LogMail) SendChallenge(_ context.Context, addr, code, displayName string) error {
	log.Printf("mail (challenge) to=%s name=%s code=%s", addr, displayName, code)
	return nil
}

func (LogMail) SendWelcome(_ context.Context, addr, displayName, role string) error {
	log.Printf("mail (welcome) to=%s name=%s role=%s", addr, displayName, role)
	return nil
}
