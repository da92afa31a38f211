package domain

// Mailer defines the contract for sending emails (infrastructure port).
type Mailer interface {
	Send(to, subject, html, text string) error
}

// EmailTemplateRenderer renders email content from a named template with the given data.
type EmailTemplateRenderer interface {
	Render(templateName string, data any) (subject, htmlBody, textBody string, err error)
}

// InviteEmailData holds data for the invitation email.
type InviteEmailData struct {
	Email       string
	InviterName string
	ListName    string
	ListID      string
}

// InviteAcceptedEmailData holds data for the email sent to the list owner
// when an invitee accepts.
type InviteAcceptedEmailData struct {
	Email        string
	AccepterName string
	ListName     string
	ListID       string
}
