package postgres

import (
	"dispatch/internal/adapters/out/postgres/auditrepo"
	"dispatch/internal/adapters/out/postgres/driverrepo"
	"dispatch/internal/adapters/out/postgres/taskrepo"
	"dispatch/internal/adapters/out/postgres/vendorfeed"

	"gorm.io/gorm"
)

// Models lists every table owned by the dispatch engine.
func Models() []any {
	return []any{
		&taskrepo.TaskDTO{},
		&driverrepo.DriverDTO{},
		&auditrepo.EntryDTO{},
		&vendorfeed.VendorOrderDTO{},
	}
}

// Migrate creates or updates the schema, including the unique
// (order_reference, category) index on tasks.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(Models()...)
}
