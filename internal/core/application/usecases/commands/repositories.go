// Package commands contains the write use cases of the dispatch engine.
// Every command is built by a validating constructor; every handler opens
// its own unit of work, and external I/O (proof upload, notifications)
// happens outside the transaction.
package commands

import (
	"context"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/task"
	"dispatch/internal/core/ports"
)

// Unit of Work interfaces narrowed to what each handler touches.
type (
	TxManager interface {
		Begin(ctx context.Context) error
		Commit(ctx context.Context) error
		Rollback(ctx context.Context) error
	}

	TaskRepoFactory interface {
		TaskRepository() ports.TaskRepository
	}

	DriverRepoFactory interface {
		DriverRepository() ports.DriverRepository
	}

	AuditRepoFactory interface {
		AuditRepository() ports.AuditRepository
	}

	// TaskUoW covers operations on tasks and their audit trail.
	TaskUoW interface {
		TxManager
		TaskRepoFactory
		AuditRepoFactory
	}

	TaskUoWFactory interface {
		Create() TaskUoW
	}

	// DispatchUoW adds driver lookups for assignment.
	//
	// Example:
	//   uow := factory.Create()
	//   err := uow.Begin(ctx)
	//   defer uow.Rollback(ctx)
	//
	//   d, err := uow.DriverRepository().Get(ctx, driverID)
	//   t, err := uow.TaskRepository().GetForUpdate(ctx, taskID)
	//   // ... mutate, update, append audit
	//
	//   err = uow.Commit(ctx)
	DispatchUoW interface {
		TxManager
		TaskRepoFactory
		DriverRepoFactory
		AuditRepoFactory
	}

	DispatchUoWFactory interface {
		Create() DispatchUoW
		CreateSerializable() DispatchUoW
	}

	DriverUoW interface {
		TxManager
		DriverRepoFactory
	}

	DriverUoWFactory interface {
		Create() DriverUoW
	}
)

// Notifications is the customer messaging façade. Calls are best-effort:
// failures are logged and audited by the implementation, never returned.
type Notifications interface {
	NotifyPickup(ctx context.Context, t *task.Task, actor kernel.Actor)
	NotifyCompletion(ctx context.Context, t *task.Task, photoURL string, actor kernel.Actor)
}
