package provider

import (
	"context"
	"fmt"
	"net"
	"net/mail"
	"net/smtp"
	"strings"

	"github.com/chilisites/postsapi/notification/domain"
	"github.com/google/uuid"
	"github.com/jordan-wright/email"
)

var _ domain.Sender = (*SMTPSender)(nil)

type sendFunc func(e *email.Email, addr string, a smtp.Auth) error

// SMTPSender delivers messages over SMTP with PLAIN auth.
type SMTPSender struct {
	addr string
	auth smtp.Auth
	send sendFunc
}

// NewSMTPSender builds a sender for addr (host:port). Credentials are optional.
func NewSMTPSender(addr, username, password string) (*SMTPSender, error) {
	host, _, err := net.SplitHostPort(addr)
	if err != nil {
		return nil, fmt.Errorf("invalid smtp address %q: %w", addr, err)
	}

	var auth smtp.Auth
	if username != "" {
		auth = smtp.PlainAuth("", username, password, host)
	}

	return &SMTPSender{
		addr: addr,
		auth: auth,
		send: (*email.Email).Send,
	}, nil
}

// Send returns when the server accepts the message or ctx is done. A send that
// has already started is not aborted.
func (s *SMTPSender) Send(ctx context.Context, msg domain.Message) (*domain.SendResult, error) {
	id := uuid.NewString()

	em := email.NewEmail()
	em.From = msg.From
	em.To = msg.To
	em.Subject = msg.Subject
	em.HTML = []byte(msg.HTML)
	em.Headers.Set("Message-Id", fmt.Sprintf("<%s@%s>", id, senderDomain(msg.From)))

	done := make(chan error, 1)
	go func() {
		done <- s.send(em, s.addr, s.auth)
	}()

	select {
	case err := <-done:
		if err != nil {
			return nil, fmt.Errorf("smtp: %w", err)
		}
		return &domain.SendResult{ID: id}, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func senderDomain(from string) string {
	addr, err := mail.ParseAddress(from)
	if err != nil {
		return "localhost"
	}
	if i := strings.LastIndexByte(addr.Address, '@'); i >= 0 {
		return addr.Address[i+1:]
	}
	return "localhost"
}
