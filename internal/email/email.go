// Package email sends the transactional mails of the auth flows. All
// sends go through Dispatcher, which fires them in the background so a
// slow SMTP server never blocks a request.
package email

import "errors"

var ErrSendFailed = errors.New("email: send failed")

// Sender delivers a single plain-text message.
type Sender interface {
	Send(to, subject, body string) error
}
