package notifications

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"dispatch/internal/core/domain/model/audit"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/task"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/metrics"
)

const (
	eventPickup     = "pickup"
	eventCompletion = "completion"
)

// ErrNoCustomerPhone is the cause recorded when a task has no phone to message.
var ErrNoCustomerPhone = errors.New("customer has no phone number")

// Dispatcher renders customer messages and hands them to a ports.Notifier.
// Sends run in the background; Wait blocks until the pending ones finish.
type Dispatcher struct {
	notifier  ports.Notifier
	auditLog  ports.AuditRepository
	templates compiled
	timeout   time.Duration
	logger    *slog.Logger
	now       func() time.Time
	pending   sync.WaitGroup
}

// NewDispatcher fails only when a template does not parse. Every send is
// bounded by timeout.
func NewDispatcher(
	notifier ports.Notifier,
	auditLog ports.AuditRepository,
	templates Templates,
	timeout time.Duration,
	logger *slog.Logger,
) (*Dispatcher, error) {
	if notifier == nil {
		return nil, errs.NewValueIsRequiredError("notifier")
	}
	if auditLog == nil {
		return nil, errs.NewValueIsRequiredError("audit log")
	}
	if timeout <= 0 {
		return nil, errs.NewValueIsOutOfRangeError("notification timeout", timeout, time.Millisecond, "unbounded")
	}
	c, err := templates.compile()
	if err != nil {
		return nil, err
	}

	return &Dispatcher{
		notifier:  notifier,
		auditLog:  auditLog,
		templates: c,
		timeout:   timeout,
		logger:    logger.With("component", "notifications"),
		now:       time.Now,
	}, nil
}

// NotifyPickup tells the customer the goods are on the way.
func (d *Dispatcher) NotifyPickup(ctx context.Context, t *task.Task, actor kernel.Actor) {
	d.dispatch(ctx, eventPickup, t, "", actor)
}

// NotifyCompletion sends the delivery confirmation with the proof photo URL.
func (d *Dispatcher) NotifyCompletion(ctx context.Context, t *task.Task, photoURL string, actor kernel.Actor) {
	d.dispatch(ctx, eventCompletion, t, photoURL, actor)
}

// Wait returns once every notification started so far has been sent and audited.
func (d *Dispatcher) Wait() {
	d.pending.Wait()
}

// notice is the part of a task a message needs, copied so the send does not
// share the aggregate with the caller.
type notice struct {
	event    string
	taskID   kernel.UUID
	orderRef string
	phone    string
	actor    kernel.Actor
	message  message
}

func (d *Dispatcher) dispatch(ctx context.Context, event string, t *task.Task, photoURL string, actor kernel.Actor) {
	n := notice{
		event:    event,
		taskID:   t.ID(),
		orderRef: t.OrderReference(),
		phone:    t.Recipient().Phone,
		actor:    actor,
		message: message{
			CustomerName:   t.Recipient().Name,
			OrderReference: t.OrderReference(),
			Category:       t.Category(),
			Items:          t.ItemSummary(),
			PhotoURL:       photoURL,
		},
	}

	// The status change is already committed; the caller's cancellation must
	// not cut the message short.
	ctx = context.WithoutCancel(ctx)
	d.pending.Add(1)
	go func() {
		defer d.pending.Done()
		d.send(ctx, n)
	}()
}

func (d *Dispatcher) send(ctx context.Context, n notice) {
	err := d.deliver(ctx, n)
	outcome, kind, note := "sent", audit.KindNotificationSent, fmt.Sprintf("%s to %s", n.event, n.phone)
	if err != nil {
		err = errs.NewNotificationErrorWithCause(n.phone, err)
		outcome, kind, note = "failed", audit.KindNotificationFailed, fmt.Sprintf("%s: %s", n.event, err)
		d.logger.WarnContext(ctx, "notification failed",
			"event", n.event, "task_id", n.taskID.String(), "order_reference", n.orderRef, "error", err)
	} else {
		d.logger.InfoContext(ctx, "notification sent",
			"event", n.event, "task_id", n.taskID.String(), "order_reference", n.orderRef)
	}
	metrics.NotificationsTotal.WithLabelValues(n.event, outcome).Inc()

	entry, auditErr := audit.NewEntry(audit.Record{
		TaskID:         n.taskID,
		OrderReference: n.orderRef,
		Kind:           kind,
		Actor:          n.actor,
		Note:           note,
		At:             d.now(),
	})
	if auditErr == nil {
		auditErr = d.auditLog.Append(ctx, entry)
	}
	if auditErr != nil {
		d.logger.ErrorContext(ctx, "notification audit entry not written",
			"event", n.event, "task_id", n.taskID.String(), "error", auditErr)
	}
}

func (d *Dispatcher) deliver(ctx context.Context, n notice) error {
	if n.phone == "" {
		return ErrNoCustomerPhone
	}

	tpl := d.templates.pickup
	if n.event == eventCompletion {
		tpl = d.templates.completion
	}
	text, err := render(tpl, n.message)
	if err != nil {
		return fmt.Errorf("render %s message: %w", n.event, err)
	}

	sendCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()
	return d.notifier.Send(sendCtx, n.phone, text)
}
