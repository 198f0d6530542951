package ports

import (
	"context"

	"dispatch/internal/core/domain/model/feed"
	"dispatch/internal/core/domain/model/task"
)

// OrderFeed is a read-only view over one upstream order ledger.
type OrderFeed interface {
	// Source names the intake path the feed serves.
	Source() task.Source

	// ReadyOrders returns the orders flagged ready for dispatch.
	ReadyOrders(ctx context.Context) ([]feed.Order, error)

	// CanceledOrders returns the orders flagged canceled upstream.
	CanceledOrders(ctx context.Context) ([]feed.Order, error)
}

// VendorLedger stages orders received from external vendors so the vendor
// OrderFeed can serve them. Staging the same reference again replaces it.
type VendorLedger interface {
	Stage(ctx context.Context, order feed.Order) error
}
