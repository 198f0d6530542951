package ports

import (
	"context"
	"time"
)

// Lease provides a best-effort mutual exclusion between replicas running
// the same scheduled work. Correctness never depends on it.
type Lease interface {
	// Acquire takes name for ttl. When another holder owns it, acquired is
	// false. release gives the lease back only if it is still ours.
	Acquire(ctx context.Context, name string, ttl time.Duration) (release func(context.Context) error, acquired bool, err error)
}
