// Package postgres provides the GORM-based Unit of Work for the dispatch
// engine. A Unit of Work groups task, driver and audit writes of one use case
// into a single transaction.
//
// Usage:
//
//	factory := NewGormUnitOfWorkFactory(db)
//	uow := factory.Create()
//	if err := uow.Begin(ctx); err != nil {
//	    return err
//	}
//	defer func() { _ = uow.Rollback(ctx) }()
//
//	t, err := uow.TaskRepository().GetForUpdate(ctx, id)
//	if err != nil {
//	    return err
//	}
//	// mutate t, then
//	if err := uow.TaskRepository().Update(ctx, t); err != nil {
//	    return err
//	}
//	return uow.Commit(ctx)
//
// Concurrency considerations:
//   - Each UnitOfWork instance owns its transaction; never share one across goroutines
//   - Row locks taken with GetForUpdate are held until Commit or Rollback
//   - CreateSerializable transactions may fail with a serialization error under
//     contention; the caller reports it and nothing is written
package postgres

import (
	"context"
	"database/sql"

	"dispatch/internal/adapters/out/postgres/auditrepo"
	"dispatch/internal/adapters/out/postgres/driverrepo"
	"dispatch/internal/adapters/out/postgres/taskrepo"
	"dispatch/internal/core/ports"

	"gorm.io/gorm"
)

// GormUnitOfWorkFactory creates UnitOfWork instances sharing one connection pool.
type GormUnitOfWorkFactory struct {
	db *gorm.DB
}

// NewGormUnitOfWorkFactory creates a factory for GORM-based unit of work instances.
//
// Example:
//
//	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
//	if err != nil {
//	    log.Fatal("failed to connect database")
//	}
//	factory := NewGormUnitOfWorkFactory(db)
func NewGormUnitOfWorkFactory(db *gorm.DB) *GormUnitOfWorkFactory {
	return &GormUnitOfWorkFactory{db: db}
}

// Create produces a UnitOfWork running at the database default isolation level.
func (f *GormUnitOfWorkFactory) Create() ports.UnitOfWork {
	return &GormUnitOfWork{db: f.db}
}

// CreateSerializable produces a UnitOfWork whose transaction is SERIALIZABLE.
func (f *GormUnitOfWorkFactory) CreateSerializable() ports.UnitOfWork {
	return &GormUnitOfWork{
		db:   f.db,
		opts: &sql.TxOptions{Isolation: sql.LevelSerializable},
	}
}

// GormUnitOfWork coordinates one database transaction. Repositories obtained
// after Begin run inside it; before Begin they use the pool directly.
type GormUnitOfWork struct {
	db   *gorm.DB
	tx   *gorm.DB
	opts *sql.TxOptions
}

// Begin starts the transaction. Calling it twice does not nest.
func (uow *GormUnitOfWork) Begin(ctx context.Context) error {
	if uow.tx != nil {
		return nil
	}

	var tx *gorm.DB
	if uow.opts != nil {
		tx = uow.db.WithContext(ctx).Begin(uow.opts)
	} else {
		tx = uow.db.WithContext(ctx).Begin()
	}
	if tx.Error != nil {
		return tx.Error
	}

	uow.tx = tx
	return nil
}

// Commit finalizes the transaction. Afterwards the instance cannot be reused
// for the same transaction.
func (uow *GormUnitOfWork) Commit(_ context.Context) error {
	if uow.tx == nil {
		return gorm.ErrInvalidTransaction
	}

	err := uow.tx.Commit().Error
	uow.tx = nil
	return err
}

// Rollback discards the transaction. It returns gorm.ErrInvalidTransaction
// when none is open, which is the normal outcome of a deferred Rollback after
// a successful Commit.
func (uow *GormUnitOfWork) Rollback(_ context.Context) error {
	if uow.tx == nil {
		return gorm.ErrInvalidTransaction
	}

	err := uow.tx.Rollback().Error
	uow.tx = nil
	return err
}

func (uow *GormUnitOfWork) TaskRepository() ports.TaskRepository {
	return taskrepo.NewGormTaskRepository(uow.conn())
}

func (uow *GormUnitOfWork) DriverRepository() ports.DriverRepository {
	return driverrepo.NewGormDriverRepository(uow.conn())
}

func (uow *GormUnitOfWork) AuditRepository() ports.AuditRepository {
	return auditrepo.NewGormAuditRepository(uow.conn())
}

func (uow *GormUnitOfWork) conn() *gorm.DB {
	if uow.tx != nil {
		return uow.tx
	}
	return uow.db
}
