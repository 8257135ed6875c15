package application

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/chilisites/postsapi/notification/domain"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/rs/zerolog/log"
)

const DefaultSendTimeout = 10 * time.Second

// Config holds the fixed sending policy shared by every kind.
type Config struct {
	From               string
	InternalRecipients []string
	SendTimeout        time.Duration
}

type Dispatcher struct {
	store  domain.TemplateStore
	sender domain.Sender
	cfg    Config
	now    func() time.Time
}

type Option func(*Dispatcher)

// WithClock replaces the time source used for injected dates.
func WithClock(now func() time.Time) Option {
	return func(d *Dispatcher) {
		d.now = now
	}
}

func NewDispatcher(store domain.TemplateStore, sender domain.Sender, cfg Config, opts ...Option) *Dispatcher {
	if cfg.SendTimeout <= 0 {
		cfg.SendTimeout = DefaultSendTimeout
	}

	d := &Dispatcher{
		store:  store,
		sender: sender,
		cfg:    cfg,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch renders the template for kind with fields and sends it. Field
// values are HTML-escaped, never stripped. Every failure is returned as a
// *domain.DispatchError carrying the last stage reached, and nothing is
// retried.
func (d *Dispatcher) Dispatch(ctx context.Context, kind domain.Kind, fields domain.Fields) (*domain.SendResult, error) {
	stage := domain.StageIdle
	fail := func(reason string, err error) (*domain.SendResult, error) {
		log.Error().
			Err(err).
			Str("kind", string(kind)).
			Str("stage", string(stage)).
			Str("state", string(domain.StageFailed)).
			Str("reason", reason).
			Msg("Email dispatch failed")
		return nil, &domain.DispatchError{Kind: kind, Stage: stage, Reason: reason, Err: err}
	}

	schema, ok := schemas[kind]
	if !ok {
		return fail("unknown notification kind", fmt.Errorf("%w: %q", domain.ErrUnknownKind, kind))
	}

	tpl, err := d.store.Load(schema.template)
	if err != nil {
		return fail("template unavailable", err)
	}
	stage = domain.StageTemplateLoaded

	pairs := make([]string, 0, 2*(len(schema.placeholders)+1))
	for _, p := range schema.placeholders {
		value := strings.TrimSpace(fields[p.field])
		if value == "" {
			if p.required {
				return fail(fmt.Sprintf("missing required field %q", p.field), validation.ErrRequired)
			}
			value = p.fallback
		}
		pairs = append(pairs, p.token, html.EscapeString(value))
	}
	if schema.dateToken != "" {
		pairs = append(pairs, schema.dateToken, d.now().UTC().Format(dateLayout))
	}

	to, err := d.recipients(schema, fields)
	if err != nil {
		return fail(err.Error(), err)
	}

	msg := domain.Message{
		From:    d.cfg.From,
		To:      to,
		Subject: schema.subject,
		HTML:    strings.NewReplacer(pairs...).Replace(tpl),
	}
	stage = domain.StageSubstituted

	sendCtx, cancel := context.WithTimeout(ctx, d.cfg.SendTimeout)
	defer cancel()

	stage = domain.StageSendAttempted
	res, err := d.sender.Send(sendCtx, msg)
	switch {
	case err != nil && errors.Is(sendCtx.Err(), context.DeadlineExceeded):
		return fail("email provider timed out", errors.Join(err, sendCtx.Err()))
	case err != nil:
		return fail("email provider rejected the message", err)
	case res == nil:
		return fail("email provider returned no result", errors.New("nil send result"))
	}

	log.Info().
		Str("kind", string(kind)).
		Str("state", string(domain.StageSucceeded)).
		Str("id", res.ID).
		Int("recipients", len(to)).
		Msg("Email sent")
	return res, nil
}

func (d *Dispatcher) recipients(schema kindSchema, fields domain.Fields) ([]string, error) {
	switch schema.recipients {
	case recipientFromFields:
		addr := strings.TrimSpace(fields["email"])
		if err := validation.Validate(addr, validation.Required, is.EmailFormat); err != nil {
			return nil, fmt.Errorf("invalid recipient address: %w", err)
		}
		return []string{addr}, nil
	case recipientInternal:
		if len(d.cfg.InternalRecipients) == 0 {
			return nil, errors.New("no internal recipients configured")
		}
		return append([]string(nil), d.cfg.InternalRecipients...), nil
	default:
		return nil, fmt.Errorf("unsupported recipient policy %d", schema.recipients)
	}
}
