package commands

import (
	"context"
	"time"

	"dispatch/internal/core/domain/model/audit"
)

// AssignTaskCommandHandler is the single assignment path. It is stricter
// than bulk assignment: an already assigned task must be released first.
type AssignTaskCommandHandler struct {
	uowFactory DispatchUoWFactory
}

func NewAssignTaskCommandHandler(uowFactory DispatchUoWFactory) AssignTaskCommandHandler {
	return AssignTaskCommandHandler{uowFactory: uowFactory}
}

func (h AssignTaskCommandHandler) Handle(ctx context.Context, command AssignTaskCommand) error {
	if err := command.Validate(); err != nil {
		return err
	}

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}
	defer func() {
		_ = uow.Rollback(ctx)
	}()

	d, err := uow.DriverRepository().Get(ctx, command.DriverID())
	if err != nil {
		return err
	}

	taskRepo := uow.TaskRepository()
	t, err := taskRepo.GetForUpdate(ctx, command.TaskID())
	if err != nil {
		return err
	}

	from := t.Status()
	if err = t.Assign(d.ID(), d.Name()); err != nil {
		return err
	}
	if err = taskRepo.Update(ctx, t); err != nil {
		return err
	}

	entry, err := audit.StatusChange(t, audit.KindAssigned, from, command.Actor(), "driver "+d.Name(), time.Now())
	if err != nil {
		return err
	}
	if err = uow.AuditRepository().Append(ctx, entry); err != nil {
		return err
	}

	return uow.Commit(ctx)
}
