// Package mailer delivers transactional email.
package mailer

import (
	"context"
	"fmt"
	"sync"

	"github.com/Rrens/auth-service/internal/config"
)

// Providers
const (
	ProviderLog        = "log"
	ProviderMailerSend = "mailersend"
)

// Address is a named mailbox
type Address struct {
	Name  string
	Email string
}

// Message is a single email. Empty From and ReplyTo are filled from the
// configured defaults.
type Message struct {
	From    Address
	ReplyTo Address
	To      []Address
	Subject string
	Text    string
	HTML    string
}

// Sender delivers messages
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

type defaults struct {
	from    Address
	replyTo Address
}

func (d defaults) fill(msg Message) Message {
	if msg.From.Email == "" {
		msg.From = d.from
	}
	if msg.ReplyTo.Email == "" {
		msg.ReplyTo = d.replyTo
	}
	return msg
}

func defaultsFrom(cfg config.MailConfig) defaults {
	return defaults{
		from:    Address{Name: cfg.SenderName, Email: cfg.SenderEmail},
		replyTo: Address{Name: cfg.ReplyToName, Email: cfg.ReplyToEmail},
	}
}

// New creates the sender selected by cfg.Provider
func New(cfg config.MailConfig) (Sender, error) {
	switch cfg.Provider {
	case "", ProviderLog:
		return NewLog(cfg), nil
	case ProviderMailerSend:
		return NewMailerSend(cfg)
	default:
		return nil, fmt.Errorf("unknown mail provider: %s", cfg.Provider)
	}
}

// Recorder keeps every message in memory
type Recorder struct {
	mu       sync.Mutex
	messages []Message
	err      error
}

// NewRecorder creates a recorder. A non-nil err is returned from every Send.
func NewRecorder(err error) *Recorder {
	return &Recorder{err: err}
}

func (r *Recorder) Send(_ context.Context, msg Message) error {
	if r.err != nil {
		return r.err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, msg)
	return nil
}

// Messages returns a copy of the recorded messages
func (r *Recorder) Messages() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Message(nil), r.messages...)
}

// Last returns the most recent message
func (r *Recorder) Last() (Message, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.messages) == 0 {
		return Message{}, false
	}
	return r.messages[len(r.messages)-1], true
}
