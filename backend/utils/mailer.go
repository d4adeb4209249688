package utils

import "log"

// Mailer delivers account emails. Delivery itself lives outside this
// service; handlers only depend on this interface.
type Mailer interface {
	SendPasswordReset(email, token string) error
}

// LogMailer writes the reset link to the application log instead of sending
// anything. Used in development and tests.
type LogMailer struct {
	Logger *log.Logger
}

func (m *LogMailer) SendPasswordReset(email, token string) error {
	m.Logger.Printf("password reset requested for %s, token %s", email, token)
	return nil
}
