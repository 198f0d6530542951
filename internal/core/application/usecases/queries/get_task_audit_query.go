package queries

import (
	"errors"
	"time"

	"dispatch/internal/core/domain/model/audit"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/task"
	"dispatch/internal/pkg/guard"
)

var ErrGetTaskAuditQueryIsNotConstructed = errors.New(
	"GetTaskAuditQuery must be created via NewGetTaskAuditQuery constructor",
)

// GetTaskAuditQuery returns the audit trail of one task, oldest first.
// The trail remains readable after the task has been purged.
type GetTaskAuditQuery struct {
	taskID kernel.UUID
	guard  guard.ConstructorGuard
}

func NewGetTaskAuditQuery(taskID kernel.UUID) (GetTaskAuditQuery, error) {
	if err := taskID.Validate(); err != nil {
		return GetTaskAuditQuery{}, err
	}
	return GetTaskAuditQuery{taskID: taskID, guard: guard.NewConstructorGuard()}, nil
}

func (q GetTaskAuditQuery) Validate() error {
	return q.guard.Validate(ErrGetTaskAuditQueryIsNotConstructed)
}

func (q GetTaskAuditQuery) TaskID() kernel.UUID {
	return q.taskID
}

// AuditEntryView is one line of a task's audit trail. From and To are
// task.Unknown for entries that did not move the task.
type AuditEntryView struct {
	ID             kernel.UUID
	TaskID         kernel.UUID
	OrderReference string
	Kind           audit.Kind
	From           task.Status
	To             task.Status
	Actor          kernel.Actor
	Note           string
	At             time.Time
}
