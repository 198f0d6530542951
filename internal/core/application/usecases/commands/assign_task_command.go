package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/guard"
)

var ErrAssignTaskCommandIsNotConstructed = errors.New(
	"AssignTaskCommand must be created via NewAssignTaskCommand constructor",
)

// AssignTaskCommand binds one Pending or OnHold task to a driver.
type AssignTaskCommand struct {
	taskID   kernel.UUID
	driverID kernel.UUID
	actor    kernel.Actor

	guard guard.ConstructorGuard
}

func NewAssignTaskCommand(taskID, driverID kernel.UUID, actor kernel.Actor) (AssignTaskCommand, error) {
	if err := errors.Join(taskID.Validate(), driverID.Validate(), actor.Validate()); err != nil {
		return AssignTaskCommand{}, err
	}
	return AssignTaskCommand{
		taskID:   taskID,
		driverID: driverID,
		actor:    actor,
		guard:    guard.NewConstructorGuard(),
	}, nil
}

func (c AssignTaskCommand) Validate() error {
	return c.guard.Validate(ErrAssignTaskCommandIsNotConstructed)
}

func (c AssignTaskCommand) TaskID() kernel.UUID {
	return c.taskID
}

func (c AssignTaskCommand) DriverID() kernel.UUID {
	return c.driverID
}

func (c AssignTaskCommand) Actor() kernel.Actor {
	return c.actor
}
