package commands

import (
	"context"

	"dispatch/internal/core/ports"
)

// StageVendorOrderCommandHandler writes vendor orders to the staging ledger
// read by the vendor order feed. It never touches tasks directly.
type StageVendorOrderCommandHandler struct {
	ledger ports.VendorLedger
}

func NewStageVendorOrderCommandHandler(ledger ports.VendorLedger) StageVendorOrderCommandHandler {
	return StageVendorOrderCommandHandler{ledger: ledger}
}

func (h StageVendorOrderCommandHandler) Handle(ctx context.Context, command StageVendorOrderCommand) error {
	if err := command.Validate(); err != nil {
		return err
	}
	return h.ledger.Stage(ctx, command.Order())
}
