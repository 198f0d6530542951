package commands

import (
	"context"
	"strings"
	"time"

	"dispatch/internal/core/domain/model/audit"
)

type CancelAssignmentCommandHandler struct {
	uowFactory TaskUoWFactory
}

func NewCancelAssignmentCommandHandler(uowFactory TaskUoWFactory) CancelAssignmentCommandHandler {
	return CancelAssignmentCommandHandler{uowFactory: uowFactory}
}

// Handle clears the driver and pickup state of any non-terminal task.
func (h CancelAssignmentCommandHandler) Handle(ctx context.Context, command CancelAssignmentCommand) error {
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

	taskRepo := uow.TaskRepository()
	t, err := taskRepo.GetForUpdate(ctx, command.TaskID())
	if err != nil {
		return err
	}

	from := t.Status()
	released := t.DriverName()
	if err = t.CancelAssignment(); err != nil {
		return err
	}
	if err = taskRepo.Update(ctx, t); err != nil {
		return err
	}

	entry, err := audit.StatusChange(t, audit.KindAssignmentCanceled, from, command.Actor(),
		releaseNote(released, command.Note()), time.Now())
	if err != nil {
		return err
	}
	if err = uow.AuditRepository().Append(ctx, entry); err != nil {
		return err
	}

	return uow.Commit(ctx)
}

func releaseNote(driverName, note string) string {
	parts := make([]string, 0, 2)
	if driverName != "" {
		parts = append(parts, "released from "+driverName)
	}
	if note = strings.TrimSpace(note); note != "" {
		parts = append(parts, note)
	}
	return strings.Join(parts, "; ")
}
