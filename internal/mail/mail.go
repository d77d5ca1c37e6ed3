// Package mail sends the transactional messages produced by account flows.
package mail

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/router-for-me/AppSubscriptions/internal/config"
)

var (
	// ErrInvalidConfig reports a sender that cannot be built from config.
	ErrInvalidConfig = errors.New("mail: invalid config")
	// ErrInvalidMessage reports a message missing a recipient or subject.
	ErrInvalidMessage = errors.New("mail: invalid message")
	// ErrSendFailed reports a delivery failure returned by the provider.
	ErrSendFailed = errors.New("mail: send failed")
)

// Sender delivers a single message.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Message is a provider-neutral email.
type Message struct {
	To       string
	Subject  string
	TextBody string
	HTMLBody string
	Tag      string
}

// Validate checks the fields every provider needs.
func (m Message) Validate() error {
	if strings.TrimSpace(m.To) == "" {
		return fmt.Errorf("%w: missing recipient", ErrInvalidMessage)
	}
	if strings.TrimSpace(m.Subject) == "" {
		return fmt.Errorf("%w: missing subject", ErrInvalidMessage)
	}
	if m.TextBody == "" && m.HTMLBody == "" {
		return fmt.Errorf("%w: empty body", ErrInvalidMessage)
	}
	return nil
}

// DefaultConfirmURL is used when mail.confirm-url is not configured.
const DefaultConfirmURL = "/confirm-email"

// ConfirmationLink appends key to base as the "key" query parameter.
func ConfirmationLink(base, key string) string {
	base = strings.TrimSpace(base)
	if base == "" {
		base = DefaultConfirmURL
	}
	u, errParse := url.Parse(base)
	if errParse != nil {
		return base + "?key=" + url.QueryEscape(key)
	}
	q := u.Query()
	q.Set("key", key)
	u.RawQuery = q.Encode()
	return u.String()
}

// ConfirmationMessage builds the message sent after signup.
func ConfirmationMessage(to, link string) Message {
	text := "Please confirm your email address by opening the link below.\n\n" + link + "\n"
	html := `<p>Please confirm your email address.</p><p><a href="` + link + `">Confirm email</a></p>`
	return Message{
		To:       to,
		Subject:  "Please confirm your email address",
		TextBody: text,
		HTMLBody: html,
		Tag:      "email-confirmation",
	}
}

// NewSender builds the sender selected by cfg.Provider.
func NewSender(cfg config.MailConfig) (Sender, error) {
	switch cfg.Provider {
	case "", config.MailProviderLog:
		return NewLogSender(), nil
	case config.MailProviderPostmark:
		return NewPostmarkSender(cfg)
	default:
		return nil, fmt.Errorf("%w: unsupported provider %q", ErrInvalidConfig, cfg.Provider)
	}
}
