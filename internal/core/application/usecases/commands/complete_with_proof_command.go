package commands

import (
	"errors"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

var ErrCompleteWithProofCommandIsNotConstructed = errors.New(
	"CompleteWithProofCommand must be created via NewCompleteWithProofCommand constructor",
)

// CompleteWithProofCommand stores a completion photo and completes a picked up task.
type CompleteWithProofCommand struct {
	taskID   kernel.UUID
	photo    []byte
	actor    kernel.Actor
	driverID *kernel.UUID

	guard guard.ConstructorGuard
}

func NewCompleteWithProofCommand(taskID kernel.UUID, photo []byte, actor kernel.Actor) (CompleteWithProofCommand, error) {
	var errList []error
	errList = append(errList, taskID.Validate(), actor.Validate())
	if len(photo) == 0 {
		errList = append(errList, errs.NewValueIsRequiredError("photo"))
	}
	if actor == kernel.ActorDriver {
		errList = append(errList, errs.NewValueIsRequiredError("driver"))
	}
	if err := errors.Join(errList...); err != nil {
		return CompleteWithProofCommand{}, err
	}

	return CompleteWithProofCommand{
		taskID: taskID,
		photo:  photo,
		actor:  actor,
		guard:  guard.NewConstructorGuard(),
	}, nil
}

// NewDriverCompleteWithProofCommand scopes completion to a task bound to driverID.
func NewDriverCompleteWithProofCommand(taskID, driverID kernel.UUID, photo []byte) (CompleteWithProofCommand, error) {
	cmd, err := NewCompleteWithProofCommand(taskID, photo, kernel.ActorSystem)
	if err != nil {
		return CompleteWithProofCommand{}, err
	}
	if err = driverID.Validate(); err != nil {
		return CompleteWithProofCommand{}, err
	}
	cmd.actor = kernel.ActorDriver
	cmd.driverID = &driverID
	return cmd, nil
}

func (c CompleteWithProofCommand) Validate() error {
	return c.guard.Validate(ErrCompleteWithProofCommandIsNotConstructed)
}

func (c CompleteWithProofCommand) TaskID() kernel.UUID {
	return c.taskID
}

func (c CompleteWithProofCommand) Photo() []byte {
	return c.photo
}

func (c CompleteWithProofCommand) Actor() kernel.Actor {
	return c.actor
}

func (c CompleteWithProofCommand) DriverID() *kernel.UUID {
	return c.driverID
}

// CompleteWithProofResult carries what the caller needs to contact the customer.
type CompleteWithProofResult struct {
	CustomerName  string
	CustomerPhone string
	PhotoRef      string
}
