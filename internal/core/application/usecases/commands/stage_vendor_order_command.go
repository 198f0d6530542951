package commands

import (
	"errors"
	"strings"

	"dispatch/internal/core/domain/model/feed"
	"dispatch/internal/core/domain/model/task"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

var ErrStageVendorOrderCommandIsNotConstructed = errors.New(
	"StageVendorOrderCommand must be created via NewStageVendorOrderCommand constructor",
)

// StageVendorOrderCommand records a vendor order for the next vendor sync run.
// Blocks may be empty for a canceled order.
type StageVendorOrderCommand struct {
	order feed.Order

	guard guard.ConstructorGuard
}

func NewStageVendorOrderCommand(order feed.Order) (StageVendorOrderCommand, error) {
	order.Reference = strings.TrimSpace(order.Reference)
	order.Source = task.SourceVendor

	if order.Reference == "" {
		return StageVendorOrderCommand{}, errs.NewValueIsRequiredError("order reference")
	}
	if order.Status == feed.StatusReadyForDispatch && len(order.Blocks) == 0 {
		return StageVendorOrderCommand{}, errs.NewValueIsRequiredError("blocks")
	}

	return StageVendorOrderCommand{order: order, guard: guard.NewConstructorGuard()}, nil
}

func (c StageVendorOrderCommand) Validate() error {
	return c.guard.Validate(ErrStageVendorOrderCommandIsNotConstructed)
}

func (c StageVendorOrderCommand) Order() feed.Order {
	return c.order
}
