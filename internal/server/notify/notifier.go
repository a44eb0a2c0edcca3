// Package notify sends best-effort WhatsApp messages. Delivery is never part
// of any transaction's success criteria: services fire notifications after
// commit and log failures.
package notify

import "context"

// Notifier sends one text message to a phone number.
type Notifier interface {
	Send(ctx context.Context, phone, message string) error
}

// NoOp is selected when messaging credentials are absent.
type NoOp struct{}

func (NoOp) Send(ctx context.Context, phone, message string) error {
	return nil
}
