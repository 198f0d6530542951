package ports

import (
	"context"
)

// UnitOfWorkFactory creates a fresh UnitOfWork for each use case run.
type UnitOfWorkFactory interface {
	Create() UnitOfWork

	// CreateSerializable returns a UnitOfWork whose transaction runs at
	// SERIALIZABLE isolation, for operations that must be all-or-nothing
	// over a set of tasks.
	CreateSerializable() UnitOfWork
}

// UnitOfWork is a business transaction boundary. Repositories obtained
// after Begin run inside the transaction; before Begin they use the pool.
type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error

	TaskRepository() TaskRepository
	DriverRepository() DriverRepository
	AuditRepository() AuditRepository
}
