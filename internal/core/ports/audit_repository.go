package ports

import (
	"context"

	"dispatch/internal/core/domain/model/audit"
)

// AuditRepository appends entries to the audit log. There is no update or delete.
type AuditRepository interface {
	Append(ctx context.Context, entries ...*audit.Entry) error
}
