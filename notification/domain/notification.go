package domain

import "context"

// Kind names a notification with a fixed template and recipient policy.
type Kind string

const (
	KindThanks   Kind = "thanks"
	KindInternal Kind = "internal"
)

// Fields is the caller-supplied form data for a dispatch.
type Fields map[string]string

// Message is a rendered email ready for a Sender.
type Message struct {
	From    string
	To      []string
	Subject string
	HTML    string
}

// SendResult is the provider's response to an accepted message.
type SendResult struct {
	ID string `json:"id"`
}

// Sender delivers a rendered message through an email provider.
type Sender interface {
	Send(ctx context.Context, msg Message) (*SendResult, error)
}

// TemplateStore loads template sources by name. Implementations are
// read-only and may be called once per dispatch.
type TemplateStore interface {
	Load(name string) (string, error)
}
