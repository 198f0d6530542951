package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/task"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

var ErrTransitionTaskCommandIsNotConstructed = errors.New(
	"TransitionTaskCommand must be created via NewTransitionTaskCommand constructor",
)

// TransitionTaskCommand moves a task to a target status on behalf of an
// admin or the driver the task is bound to.
type TransitionTaskCommand struct {
	taskID kernel.UUID
	target task.Status
	actor  kernel.Actor
	note   string

	// driverID scopes the command to one driver's tasks when the actor is a driver.
	driverID *kernel.UUID

	guard guard.ConstructorGuard
}

func NewTransitionTaskCommand(
	taskID kernel.UUID,
	target task.Status,
	actor kernel.Actor,
	note string,
) (TransitionTaskCommand, error) {
	if err := errors.Join(taskID.Validate(), target.Validate(), actor.Validate()); err != nil {
		return TransitionTaskCommand{}, err
	}
	if actor == kernel.ActorDriver {
		return TransitionTaskCommand{}, errs.NewValueIsRequiredError("driver")
	}
	return TransitionTaskCommand{
		taskID: taskID,
		target: target,
		actor:  actor,
		note:   note,
		guard:  guard.NewConstructorGuard(),
	}, nil
}

// NewDriverTransitionTaskCommand is the driver-facing variant; the task must be bound to driverID.
func NewDriverTransitionTaskCommand(taskID, driverID kernel.UUID, target task.Status) (TransitionTaskCommand, error) {
	if err := errors.Join(taskID.Validate(), driverID.Validate(), target.Validate()); err != nil {
		return TransitionTaskCommand{}, err
	}
	return TransitionTaskCommand{
		taskID:   taskID,
		target:   target,
		actor:    kernel.ActorDriver,
		driverID: &driverID,
		guard:    guard.NewConstructorGuard(),
	}, nil
}

func (c TransitionTaskCommand) Validate() error {
	return c.guard.Validate(ErrTransitionTaskCommandIsNotConstructed)
}

func (c TransitionTaskCommand) TaskID() kernel.UUID {
	return c.taskID
}

func (c TransitionTaskCommand) Target() task.Status {
	return c.target
}

func (c TransitionTaskCommand) Actor() kernel.Actor {
	return c.actor
}

func (c TransitionTaskCommand) Note() string {
	return c.note
}

// DriverID is nil for admin and system transitions.
func (c TransitionTaskCommand) DriverID() *kernel.UUID {
	return c.driverID
}
