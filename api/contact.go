package api

import "github.com/chilisites/postsapi/notification/domain"

// ContactForm is the body posted by the site's contact form.
type ContactForm struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Category string `json:"category"`
	Message  string `json:"message"`
}

func (f ContactForm) Fields() domain.Fields {
	fields := domain.Fields{}
	for k, v := range map[string]string{
		"name":     f.Name,
		"email":    f.Email,
		"phone":    f.Phone,
		"category": f.Category,
		"message":  f.Message,
	} {
		if v != "" {
			fields[k] = v
		}
	}
	return fields
}

type EmailSent struct {
	Email domain.SendResult `json:"email"`
}
