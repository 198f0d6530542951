package ports

import (
	"context"
)

// ProofStorage keeps completion photos.
type ProofStorage interface {
	// Put stores data under name and returns a publicly resolvable reference.
	// Failures are reported as errs.StorageUnavailableError.
	Put(ctx context.Context, name string, data []byte) (string, error)
}
