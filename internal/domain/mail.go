package domain

import "context"

type EmailTemplate string

const (
	EmailApplicationAccepted EmailTemplate = "application_accepted"
	EmailApplicationRejected EmailTemplate = "application_rejected"
)

type EmailMessage struct {
	To       string            `json:"to"`
	Template EmailTemplate     `json:"template"`
	Data     map[string]string `json:"data"`
}

// Mailer delivers templated email. Callers treat failures as non-fatal.
type Mailer interface {
	Send(ctx context.Context, msg EmailMessage) error
}
