package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/task"
	"dispatch/internal/pkg/guard"
)

var ErrSynchronizeCommandIsNotConstructed = errors.New(
	"SynchronizeCommand must be created via NewSynchronizeCommand constructor",
)

// SynchronizeCommand pulls ready and canceled orders from the upstream
// feeds into the task store. An empty source runs every configured feed.
//
// Example:
//
//	cmd, _ := NewSynchronizeCommand(task.SourceVendor)
//	result, err := handler.Handle(ctx, cmd)
type SynchronizeCommand struct {
	source task.Source

	guard guard.ConstructorGuard
}

func NewSynchronizeCommand(source task.Source) (SynchronizeCommand, error) {
	if source != "" {
		if err := source.Validate(); err != nil {
			return SynchronizeCommand{}, err
		}
	}
	return SynchronizeCommand{source: source, guard: guard.NewConstructorGuard()}, nil
}

func (c SynchronizeCommand) Validate() error {
	return c.guard.Validate(ErrSynchronizeCommandIsNotConstructed)
}

// Source is empty when every feed should run.
func (c SynchronizeCommand) Source() task.Source {
	return c.source
}

// SynchronizeResult reports one run. Errors holds the per-order failures
// that were skipped; they never abort the run.
type SynchronizeResult struct {
	Created  int
	Canceled int
	Errors   []error
}

func (r *SynchronizeResult) merge(other SynchronizeResult) {
	r.Created += other.Created
	r.Canceled += other.Canceled
	r.Errors = append(r.Errors, other.Errors...)
}
