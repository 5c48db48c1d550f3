package email

import (
	"context"
)

// Message is one outgoing email. Text is the plain body; HTML carries the
// same content plus the tracking pixel.
type Message struct {
	From    string
	To      string
	Subject string
	Text    string
	HTML    string
}

// Service is the external mail collaborator. Send returns the provider
// message id; implementations must treat a "success" without an id as a
// failure rather than reporting an ambiguous outcome.
type Service interface {
	Send(ctx context.Context, msg *Message) (string, error)
}
