package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var ErrCancelAssignmentCommandIsNotConstructed = errors.New(
	"CancelAssignmentCommand must be created via NewCancelAssignmentCommand constructor",
)

// CancelAssignmentCommand returns a task to the unassigned pool so it can be re-dispatched.
type CancelAssignmentCommand struct {
	taskID kernel.UUID
	actor  kernel.Actor
	note   string

	guard guard.ConstructorGuard
}

func NewCancelAssignmentCommand(taskID kernel.UUID, actor kernel.Actor, note string) (CancelAssignmentCommand, error) {
	if err := errors.Join(taskID.Validate(), actor.Validate()); err != nil {
		return CancelAssignmentCommand{}, err
	}
	return CancelAssignmentCommand{
		taskID: taskID,
		actor:  actor,
		note:   note,
		guard:  guard.NewConstructorGuard(),
	}, nil
}

func (c CancelAssignmentCommand) Validate() error {
	return c.guard.Validate(ErrCancelAssignmentCommandIsNotConstructed)
}

func (c CancelAssignmentCommand) TaskID() kernel.UUID {
	return c.taskID
}

func (c CancelAssignmentCommand) Actor() kernel.Actor {
	return c.actor
}

func (c CancelAssignmentCommand) Note() string {
	return c.note
}
