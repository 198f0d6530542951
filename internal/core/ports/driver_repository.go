package ports

import (
	"context"

	"dispatch/internal/core/domain/model/driver"
	"dispatch/internal/core/domain/model/kernel"
)

// DriverRepository persists registered drivers.
type DriverRepository interface {
	Add(ctx context.Context, d *driver.Driver) error

	// Get returns errs.ObjectNotFoundError for an unknown id.
	Get(ctx context.Context, id kernel.UUID) (*driver.Driver, error)
}
