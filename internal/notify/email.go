package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/yungbote/ainews-backend/internal/platform/sendgrid"
)

// Email sends notifications through SendGrid.
type Email struct {
	client sendgrid.Client
	to     []sendgrid.EmailAddress
}

func NewEmail(client sendgrid.Client, recipients []string) (*Email, error) {
	if client == nil {
		return nil, fmt.Errorf("sendgrid client required")
	}
	to := make([]sendgrid.EmailAddress, 0, len(recipients))
	for _, r := range recipients {
		if r = strings.TrimSpace(r); r != "" {
			to = append(to, sendgrid.EmailAddress{Email: r})
		}
	}
	if len(to) == 0 {
		return nil, fmt.Errorf("missing NOTIFY_EMAIL_TO")
	}
	return &Email{client: client, to: to}, nil
}

func (e *Email) Name() string { return "email" }

func (e *Email) Notify(ctx context.Context, msg Message) error {
	body := msg.Body
	if strings.TrimSpace(body) == "" {
		body = msg.Subject
	}
	_, err := e.client.Send(ctx, sendgrid.SendEmailRequest{
		To:         e.to,
		Subject:    msg.Subject,
		Text:       body,
		Categories: []string{"ainews", string(msg.Kind)},
	})
	return err
}
