package audit

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/task"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

// Kind classifies an audit entry.
type Kind string

const (
	KindSyncCreated        Kind = "sync_created"
	KindSyncCanceled       Kind = "sync_canceled"
	KindAssigned           Kind = "assigned"
	KindAssignmentCanceled Kind = "assignment_canceled"
	KindStatusChanged      Kind = "status_changed"
	KindHeld               Kind = "held"
	KindDeleted            Kind = "deleted"
	KindCompleted          Kind = "completed"
	KindNotificationSent   Kind = "notification_sent"
	KindNotificationFailed Kind = "notification_failed"
)

var kinds = []Kind{
	KindSyncCreated, KindSyncCanceled, KindAssigned, KindAssignmentCanceled, KindStatusChanged,
	KindHeld, KindDeleted, KindCompleted, KindNotificationSent, KindNotificationFailed,
}

func (k Kind) Validate() error {
	for _, known := range kinds {
		if k == known {
			return nil
		}
	}
	return errs.NewValueIsInvalidErrorWithCause("audit kind", fmt.Errorf("%q is not a known kind", string(k)))
}

func (k Kind) String() string {
	return string(k)
}

var ErrEntryIsNotConstructed = errors.New("Entry must be created via NewEntry or RestoreEntry")

// Record is the content of an audit entry. From and To may be task.Unknown
// for events that do not move the task, such as notifications.
type Record struct {
	TaskID         kernel.UUID
	OrderReference string
	Kind           Kind
	From           task.Status
	To             task.Status
	Actor          kernel.Actor
	Note           string
	At             time.Time
}

// Entry is an immutable audit log line keyed to a task. Entries outlive
// the tasks they describe, so the task id is a plain reference.
type Entry struct {
	id     kernel.UUID
	record Record
	guard  guard.ConstructorGuard
}

// NewEntry validates rec and assigns a fresh id.
func NewEntry(rec Record) (*Entry, error) {
	return RestoreEntry(kernel.NewUUID(), rec)
}

// StatusChange is a shorthand for entries produced by a task transition.
func StatusChange(t *task.Task, kind Kind, from task.Status, actor kernel.Actor, note string, at time.Time) (*Entry, error) {
	return NewEntry(Record{
		TaskID:         t.ID(),
		OrderReference: t.OrderReference(),
		Kind:           kind,
		From:           from,
		To:             t.Status(),
		Actor:          actor,
		Note:           note,
		At:             at,
	})
}

func RestoreEntry(id kernel.UUID, rec Record) (*Entry, error) {
	rec.OrderReference = strings.TrimSpace(rec.OrderReference)

	var errList []error
	errList = append(errList, id.Validate(), rec.TaskID.Validate(), rec.Kind.Validate(), rec.Actor.Validate())
	if rec.OrderReference == "" {
		errList = append(errList, errs.NewValueIsRequiredError("order reference"))
	}
	for _, s := range []task.Status{rec.From, rec.To} {
		if s != task.Unknown {
			errList = append(errList, s.Validate())
		}
	}
	if rec.At.IsZero() {
		errList = append(errList, errs.NewValueIsRequiredError("timestamp"))
	}
	if err := errors.Join(errList...); err != nil {
		return nil, err
	}

	rec.At = rec.At.UTC()
	return &Entry{id: id, record: rec, guard: guard.NewConstructorGuard()}, nil
}

func (e *Entry) Validate() error {
	if e == nil {
		return ErrEntryIsNotConstructed
	}
	return e.guard.Validate(ErrEntryIsNotConstructed)
}

func (e *Entry) ID() kernel.UUID {
	return e.id
}

// Record returns a copy of the entry content.
func (e *Entry) Record() Record {
	return e.record
}

func (e *Entry) TaskID() kernel.UUID {
	return e.record.TaskID
}

func (e *Entry) Kind() Kind {
	return e.record.Kind
}
