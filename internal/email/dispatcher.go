package email

import (
	"context"

	"github.com/sillygoals/sillygoals/internal/observability/logger"
)

// Dispatcher sends mail in the background. Auth responses never wait
// for SMTP, and a delivery failure is logged but not surfaced to the
// user, so the response gives no hint whether a mail went out.
type Dispatcher struct {
	sender Sender
}

func NewDispatcher(sender Sender) *Dispatcher {
	return &Dispatcher{sender: sender}
}

// Dispatch fires the send on its own goroutine and returns immediately.
func (d *Dispatcher) Dispatch(ctx context.Context, to, subject, body string) {
	log := logger.From(ctx).With(
		logger.Component("email.Dispatcher"),
		logger.String("to", to),
		logger.String("subject", subject),
	)
	go func() {
		if err := d.sender.Send(to, subject, body); err != nil {
			log.Error("failed to send message", logger.Err(err))
		}
	}()
}
