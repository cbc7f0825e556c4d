package email

// Email delivers one message to every recipient.
type Email interface {
	Send(subject, text, html string, recipients []string) error
}
