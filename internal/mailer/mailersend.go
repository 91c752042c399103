package mailer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Rrens/auth-service/internal/config"
	"github.com/mailersend/mailersend-go"
)

// MailerSend delivers mail through the MailerSend API
type MailerSend struct {
	client   *mailersend.Mailersend
	defaults defaults
}

// NewMailerSend creates a MailerSend sender
func NewMailerSend(cfg config.MailConfig) (*MailerSend, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("mailersend: api key is required")
	}
	if cfg.SenderEmail == "" {
		return nil, errors.New("mailersend: sender email is required")
	}

	return &MailerSend{
		client:   mailersend.NewMailersend(cfg.APIKey),
		defaults: defaultsFrom(cfg),
	}, nil
}

func (m *MailerSend) buildMessage(msg Message) *mailersend.Message {
	msg = m.defaults.fill(msg)

	out := m.client.Email.NewMessage()
	out.SetFrom(mailersend.From{Name: msg.From.Name, Email: msg.From.Email})
	if msg.ReplyTo.Email != "" {
		out.SetReplyTo(mailersend.ReplyTo{Name: msg.ReplyTo.Name, Email: msg.ReplyTo.Email})
	}

	recipients := make([]mailersend.Recipient, 0, len(msg.To))
	for _, to := range msg.To {
		recipients = append(recipients, mailersend.Recipient{Name: to.Name, Email: to.Email})
	}
	out.SetRecipients(recipients)
	out.SetSubject(msg.Subject)

	if strings.TrimSpace(msg.Text) != "" {
		out.SetText(msg.Text)
	}
	if strings.TrimSpace(msg.HTML) != "" {
		out.SetHTML(msg.HTML)
	}
	return out
}

func (m *MailerSend) Send(ctx context.Context, msg Message) error {
	if len(msg.To) == 0 {
		return errors.New("mailersend: message has no recipients")
	}

	if _, err := m.client.Email.Send(ctx, m.buildMessage(msg)); err != nil {
		return fmt.Errorf("mailersend: failed to send email: %w", err)
	}
	return nil
}
