package domain

// Mailer sends a single email message.
type Mailer interface {
	Send(to, subject, html, text string) error
}

// EmailTemplateRenderer renders a named email template with data and
// returns the subject, html, and text bodies.
type EmailTemplateRenderer interface {
	Render(templateName string, data interface{}) (subject, htmlBody, textBody string, err error)
}

// CancellationEmailData feeds the event_canceled email template.
type CancellationEmailData struct {
	EventTitle string
	EventTime  string
	Location   string
	ActorName  string
	Reason     string
}
