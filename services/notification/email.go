package notification

import (
	"context"
	"errors"
	"fmt"

	"github.com/resend/resend-go/v2"
)

// Email is one outbound message.
type Email struct {
	To      []string
	Subject string
	HTML    string
}

// EmailSender delivers an Email and returns the provider's message id.
type EmailSender interface {
	Send(ctx context.Context, email Email) (string, error)
}

type resendEmails interface {
	SendWithContext(ctx context.Context, params *resend.SendEmailRequest) (*resend.SendEmailResponse, error)
}

// ResendSender sends email through the Resend API.
type ResendSender struct {
	emails resendEmails
	from   string
}

func NewResendSender(apiKey, from string) (*ResendSender, error) {
	if apiKey == "" {
		return nil, errors.New("resend api key is not configured")
	}
	return &ResendSender{emails: resend.NewClient(apiKey).Emails, from: from}, nil
}

func (s *ResendSender) Send(ctx context.Context, email Email) (string, error) {
	if len(email.To) == 0 {
		return "", errors.New("email has no recipients")
	}
	resp, err := s.emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    s.from,
		To:      email.To,
		Subject: email.Subject,
		Html:    email.HTML,
	})
	if err != nil {
		return "", fmt.Errorf("failed to send %q to %v: %w", email.Subject, email.To, err)
	}
	return resp.Id, nil
}
