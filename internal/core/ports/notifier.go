package ports

import (
	"context"
)

// Notifier delivers a text message to a customer phone.
type Notifier interface {
	Send(ctx context.Context, phone, text string) error
}
