package commands

import (
	"errors"
	"fmt"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

var ErrBulkExecuteCommandIsNotConstructed = errors.New(
	"BulkExecuteCommand must be created via NewBulkExecuteCommand constructor",
)

// BulkAction is the operation applied to every task of a bulk command.
type BulkAction string

const (
	BulkAssign BulkAction = "assign"
	BulkHold   BulkAction = "hold"
	BulkDelete BulkAction = "delete"
)

func (a BulkAction) Validate() error {
	switch a {
	case BulkAssign, BulkHold, BulkDelete:
		return nil
	default:
		return errs.NewValueIsInvalidErrorWithCause("action", fmt.Errorf("%q is not a bulk action", string(a)))
	}
}

// BulkExecuteCommand applies one action to a set of tasks atomically.
// Duplicate ids are collapsed.
type BulkExecuteCommand struct {
	taskIDs  []kernel.UUID
	action   BulkAction
	driverID *kernel.UUID
	actor    kernel.Actor

	guard guard.ConstructorGuard
}

// NewBulkExecuteCommand requires driverID for BulkAssign and ignores it otherwise.
func NewBulkExecuteCommand(
	taskIDs []kernel.UUID,
	action BulkAction,
	driverID *kernel.UUID,
	actor kernel.Actor,
) (BulkExecuteCommand, error) {
	errList := []error{action.Validate(), actor.Validate()}
	if len(taskIDs) == 0 {
		errList = append(errList, errs.NewValueIsRequiredError("task ids"))
	}

	seen := make(map[kernel.UUID]struct{}, len(taskIDs))
	ids := make([]kernel.UUID, 0, len(taskIDs))
	for _, id := range taskIDs {
		if err := id.Validate(); err != nil {
			errList = append(errList, err)
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}

	if action == BulkAssign {
		if driverID == nil {
			errList = append(errList, errs.NewValueIsRequiredError("driver id"))
		} else {
			errList = append(errList, driverID.Validate())
		}
	} else {
		driverID = nil
	}

	if err := errors.Join(errList...); err != nil {
		return BulkExecuteCommand{}, err
	}

	return BulkExecuteCommand{
		taskIDs:  ids,
		action:   action,
		driverID: driverID,
		actor:    actor,
		guard:    guard.NewConstructorGuard(),
	}, nil
}

func (c BulkExecuteCommand) Validate() error {
	return c.guard.Validate(ErrBulkExecuteCommandIsNotConstructed)
}

func (c BulkExecuteCommand) TaskIDs() []kernel.UUID {
	return c.taskIDs
}

func (c BulkExecuteCommand) Action() BulkAction {
	return c.action
}

func (c BulkExecuteCommand) DriverID() *kernel.UUID {
	return c.driverID
}

func (c BulkExecuteCommand) Actor() kernel.Actor {
	return c.actor
}
