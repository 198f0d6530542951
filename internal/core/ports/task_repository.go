// Package ports defines the contracts between the dispatch core and its
// infrastructure: persistence, upstream order feeds, proof storage,
// notification transport and the sync lease.
package ports

import (
	"context"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/task"
)

// TaskRepository persists Task aggregates. The store enforces uniqueness of
// (order reference, category); application code never relies on a prior read
// to prevent duplicates.
type TaskRepository interface {
	// Add inserts a new task and returns errs.DuplicateTaskError when the
	// (order reference, category) pair already exists.
	Add(ctx context.Context, t *task.Task) error

	// AddIfAbsent inserts the task unless its key exists and reports whether a row was created.
	AddIfAbsent(ctx context.Context, t *task.Task) (bool, error)

	// Update writes the current state of an existing task.
	Update(ctx context.Context, t *task.Task) error

	// Delete physically removes a task.
	Delete(ctx context.Context, id kernel.UUID) error

	// Get returns errs.ObjectNotFoundError for an unknown id.
	Get(ctx context.Context, id kernel.UUID) (*task.Task, error)

	// GetForUpdate is Get with a row lock held until the transaction ends.
	GetForUpdate(ctx context.Context, id kernel.UUID) (*task.Task, error)

	// GetManyForUpdate locks every listed task and fails with
	// errs.ObjectNotFoundError if any of them is missing.
	GetManyForUpdate(ctx context.Context, ids []kernel.UUID) ([]*task.Task, error)

	// GetByOrderForUpdate locks and returns all tasks of an upstream order.
	GetByOrderForUpdate(ctx context.Context, orderReference string) ([]*task.Task, error)
}
