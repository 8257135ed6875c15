// Package provider implements domain.Sender on top of real email services.
package provider

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/chilisites/postsapi/notification/domain"
	"github.com/resend/resend-go/v2"
)

var _ domain.Sender = (*ResendSender)(nil)

// ResendSender delivers messages through the Resend HTTP API.
type ResendSender struct {
	client *resend.Client
}

type ResendOption func(*resend.Client) error

// WithBaseURL points the client at a different API root.
func WithBaseURL(raw string) ResendOption {
	return func(c *resend.Client) error {
		u, err := url.Parse(raw)
		if err != nil {
			return fmt.Errorf("invalid resend base url: %w", err)
		}
		c.BaseURL = u
		return nil
	}
}

func NewResendSender(apiKey string, opts ...ResendOption) (*ResendSender, error) {
	client := resend.NewCustomClient(&http.Client{}, apiKey)
	for _, opt := range opts {
		if err := opt(client); err != nil {
			return nil, err
		}
	}
	return &ResendSender{client: client}, nil
}

func (s *ResendSender) Send(ctx context.Context, msg domain.Message) (*domain.SendResult, error) {
	sent, err := s.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    msg.From,
		To:      msg.To,
		Subject: msg.Subject,
		Html:    msg.HTML,
	})
	if err != nil {
		return nil, fmt.Errorf("resend: %w", err)
	}

	return &domain.SendResult{ID: sent.Id}, nil
}
