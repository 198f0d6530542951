// Package lognotify is the ports.Notifier used when no messaging transport
// is configured. Messages are written to the log and never fail.
package lognotify

import (
	"context"
	"log/slog"
	"strings"
)

type Notifier struct {
	logger *slog.Logger
}

func NewNotifier(logger *slog.Logger) *Notifier {
	return &Notifier{logger: logger.With("component", "lognotify")}
}

func (n *Notifier) Send(ctx context.Context, phone, text string) error {
	n.logger.InfoContext(ctx, "Notification", "phone", maskPhone(phone), "text", text)
	return nil
}

// maskPhone keeps the last four digits.
func maskPhone(phone string) string {
	const visible = 4
	if len(phone) <= visible {
		return phone
	}
	return strings.Repeat("*", len(phone)-visible) + phone[len(phone)-visible:]
}
