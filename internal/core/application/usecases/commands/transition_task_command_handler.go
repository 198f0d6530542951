package commands

import (
	"context"
	"time"

	"dispatch/internal/core/domain/model/audit"
	"dispatch/internal/core/domain/model/task"
	"dispatch/internal/pkg/errs"
)

// TransitionTaskCommandHandler drives the state machine for a single task
// and notifies the customer after the change is committed.
type TransitionTaskCommandHandler struct {
	uowFactory    TaskUoWFactory
	notifications Notifications
}

func NewTransitionTaskCommandHandler(uowFactory TaskUoWFactory, notifications Notifications) TransitionTaskCommandHandler {
	return TransitionTaskCommandHandler{uowFactory: uowFactory, notifications: notifications}
}

func (h TransitionTaskCommandHandler) Handle(ctx context.Context, command TransitionTaskCommand) error {
	if err := command.Validate(); err != nil {
		return err
	}

	t, changed, err := h.transition(ctx, command)
	if err != nil || !changed {
		return err
	}

	switch t.Status() {
	case task.PickedUp:
		h.notifications.NotifyPickup(ctx, t, command.Actor())
	case task.Completed:
		h.notifications.NotifyCompletion(ctx, t, t.ProofRef(), command.Actor())
	}

	return nil
}

func (h TransitionTaskCommandHandler) transition(ctx context.Context, command TransitionTaskCommand) (*task.Task, bool, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, false, err
	}
	defer func() {
		_ = uow.Rollback(ctx)
	}()

	taskRepo := uow.TaskRepository()
	t, err := taskRepo.GetForUpdate(ctx, command.TaskID())
	if err != nil {
		return nil, false, err
	}
	if driverID := command.DriverID(); driverID != nil && !t.IsBoundTo(*driverID) {
		return nil, false, errs.NewObjectNotFoundError("task", command.TaskID())
	}

	now := time.Now()
	from := t.Status()
	if err = t.Transition(command.Target(), now); err != nil {
		return nil, false, err
	}
	if t.Status() == from {
		return t, false, nil
	}
	if err = taskRepo.Update(ctx, t); err != nil {
		return nil, false, err
	}

	entry, err := audit.StatusChange(t, transitionKind(t.Status()), from, command.Actor(), command.Note(), now)
	if err != nil {
		return nil, false, err
	}
	if err = uow.AuditRepository().Append(ctx, entry); err != nil {
		return nil, false, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, false, err
	}

	return t, true, nil
}

func transitionKind(to task.Status) audit.Kind {
	switch to {
	case task.Pending:
		return audit.KindAssignmentCanceled
	case task.OnHold:
		return audit.KindHeld
	case task.Completed:
		return audit.KindCompleted
	default:
		return audit.KindStatusChanged
	}
}
