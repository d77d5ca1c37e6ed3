package mail

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mrz1836/postmark"
	"github.com/router-for-me/AppSubscriptions/internal/config"
)

type postmarkAPI interface {
	SendEmail(ctx context.Context, email postmark.Email) (postmark.EmailResponse, error)
}

// PostmarkSender delivers messages through the Postmark transactional API.
type PostmarkSender struct {
	client postmarkAPI
	from   string
}

// NewPostmarkSender builds a PostmarkSender. Server token, account token and
// from address are required.
func NewPostmarkSender(cfg config.MailConfig) (*PostmarkSender, error) {
	if strings.TrimSpace(cfg.ServerToken) == "" {
		return nil, fmt.Errorf("%w: postmark server token is required", ErrInvalidConfig)
	}
	if strings.TrimSpace(cfg.AccountToken) == "" {
		return nil, fmt.Errorf("%w: postmark account token is required", ErrInvalidConfig)
	}
	if strings.TrimSpace(cfg.From) == "" {
		return nil, fmt.Errorf("%w: from address is required", ErrInvalidConfig)
	}
	return &PostmarkSender{
		client: postmark.NewClient(cfg.ServerToken, cfg.AccountToken),
		from:   strings.TrimSpace(cfg.From),
	}, nil
}

// Send delivers msg.
func (s *PostmarkSender) Send(ctx context.Context, msg Message) error {
	if errValidate := msg.Validate(); errValidate != nil {
		return errValidate
	}
	resp, errSend := s.client.SendEmail(ctx, postmark.Email{
		From:     s.from,
		To:       msg.To,
		Subject:  msg.Subject,
		Tag:      msg.Tag,
		TextBody: msg.TextBody,
		HTMLBody: msg.HTMLBody,
	})
	if errSend != nil {
		return errors.Join(ErrSendFailed, errSend)
	}
	if resp.ErrorCode > 0 {
		return errors.Join(ErrSendFailed, fmt.Errorf("postmark error: %d - %s", resp.ErrorCode, resp.Message))
	}
	return nil
}
