package sms

import "context"

// Gateway sends a text message to a phone number.
// This decouples the application logic from the concrete messaging provider.
type Gateway interface {
	Send(ctx context.Context, to, body string) error
}

// MaskPhone keeps the first and last four characters of a number and hides the rest.
func MaskPhone(phone string) string {
	if len(phone) <= 8 {
		if len(phone) <= 4 {
			return "****"
		}
		return phone[:4] + "****"
	}
	return phone[:4] + "****" + phone[len(phone)-4:]
}
