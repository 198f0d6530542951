package commands

import (
	"context"
	"time"

	"dispatch/internal/core/domain/model/audit"
	"dispatch/internal/core/domain/model/driver"
	"dispatch/internal/core/domain/model/task"
	"dispatch/internal/core/ports"
)

// BulkExecuteCommandHandler runs a bulk command in one serializable
// transaction: every task is locked first, and any failure rolls the whole
// set back. Bulk assign and hold override the single-task rules for any
// non-terminal task; a terminal task in the set fails the batch.
type BulkExecuteCommandHandler struct {
	uowFactory DispatchUoWFactory
}

func NewBulkExecuteCommandHandler(uowFactory DispatchUoWFactory) BulkExecuteCommandHandler {
	return BulkExecuteCommandHandler{uowFactory: uowFactory}
}

// Handle returns the number of affected tasks.
func (h BulkExecuteCommandHandler) Handle(ctx context.Context, command BulkExecuteCommand) (int, error) {
	if err := command.Validate(); err != nil {
		return 0, err
	}

	uow := h.uowFactory.CreateSerializable()
	if err := uow.Begin(ctx); err != nil {
		return 0, err
	}
	defer func() {
		_ = uow.Rollback(ctx)
	}()

	var (
		d   *driver.Driver
		err error
	)
	if command.Action() == BulkAssign {
		d, err = uow.DriverRepository().Get(ctx, *command.DriverID())
		if err != nil {
			return 0, err
		}
	}

	taskRepo := uow.TaskRepository()
	tasks, err := taskRepo.GetManyForUpdate(ctx, command.TaskIDs())
	if err != nil {
		return 0, err
	}

	now := time.Now()
	entries := make([]*audit.Entry, 0, len(tasks))
	for _, t := range tasks {
		entry, err := h.apply(ctx, taskRepo, t, command, d, now)
		if err != nil {
			return 0, err
		}
		entries = append(entries, entry)
	}

	if err = uow.AuditRepository().Append(ctx, entries...); err != nil {
		return 0, err
	}
	if err = uow.Commit(ctx); err != nil {
		return 0, err
	}

	return len(tasks), nil
}

func (h BulkExecuteCommandHandler) apply(
	ctx context.Context,
	taskRepo ports.TaskRepository,
	t *task.Task,
	command BulkExecuteCommand,
	d *driver.Driver,
	now time.Time,
) (*audit.Entry, error) {
	from := t.Status()

	switch command.Action() {
	case BulkAssign:
		if err := t.ForceAssign(d.ID(), d.Name()); err != nil {
			return nil, err
		}
		if err := taskRepo.Update(ctx, t); err != nil {
			return nil, err
		}
		return audit.StatusChange(t, audit.KindAssigned, from, command.Actor(), "bulk assign to "+d.Name(), now)

	case BulkHold:
		if err := t.ForceHold(); err != nil {
			return nil, err
		}
		if err := taskRepo.Update(ctx, t); err != nil {
			return nil, err
		}
		return audit.StatusChange(t, audit.KindHeld, from, command.Actor(), "bulk hold", now)

	default:
		if err := taskRepo.Delete(ctx, t.ID()); err != nil {
			return nil, err
		}
		return audit.NewEntry(audit.Record{
			TaskID:         t.ID(),
			OrderReference: t.OrderReference(),
			Kind:           audit.KindDeleted,
			From:           from,
			Actor:          command.Actor(),
			Note:           "bulk delete " + t.Category(),
			At:             now,
		})
	}
}
