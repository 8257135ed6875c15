package application

import "github.com/chilisites/postsapi/notification/domain"

const dateLayout = "2006-01-02 15:04:05"

// placeholder binds a template token to a caller field.
type placeholder struct {
	token    string
	field    string
	fallback string
	required bool
}

type recipientPolicy int

const (
	// recipientFromFields sends to the address in the "email" field.
	recipientFromFields recipientPolicy = iota
	// recipientInternal sends to the configured internal addresses.
	recipientInternal
)

type kindSchema struct {
	template     string
	subject      string
	recipients   recipientPolicy
	placeholders []placeholder
	// dateToken, when set, receives the dispatch time.
	dateToken string
}

var schemas = map[domain.Kind]kindSchema{
	domain.KindThanks: {
		template:   "thanks_for_contact.html",
		subject:    "¡Gracias por contactarnos!",
		recipients: recipientFromFields,
		placeholders: []placeholder{
			{token: "{{name}}", field: "name"},
			{token: "{{email}}", field: "email", required: true},
			{token: "{{category}}", field: "category", fallback: "—"},
		},
	},
	domain.KindInternal: {
		template:   "new_contact.html",
		subject:    "Nuevo contacto desde chilisites.com",
		recipients: recipientInternal,
		placeholders: []placeholder{
			{token: "{{name}}", field: "name", required: true},
			{token: "{{email}}", field: "email", required: true},
			{token: "{{phone}}", field: "phone", required: true},
			{token: "{{category}}", field: "category", required: true},
			{token: "{{message}}", field: "message", required: true},
		},
		dateToken: "{{date}}",
	},
}
