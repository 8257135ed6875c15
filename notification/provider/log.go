package provider

import (
	"context"

	"github.com/chilisites/postsapi/notification/domain"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

var _ domain.Sender = LogSender{}

// LogSender writes messages to the log instead of sending them. For local
// development only.
type LogSender struct{}

func (LogSender) Send(_ context.Context, msg domain.Message) (*domain.SendResult, error) {
	id := uuid.NewString()
	log.Info().
		Str("id", id).
		Str("from", msg.From).
		Strs("to", msg.To).
		Str("subject", msg.Subject).
		Int("html_bytes", len(msg.HTML)).
		Msg("Email not sent, log provider active")
	return &domain.SendResult{ID: id}, nil
}
