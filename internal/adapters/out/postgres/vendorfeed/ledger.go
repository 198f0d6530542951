package vendorfeed

import (
	"context"
	"time"

	"dispatch/internal/core/domain/model/feed"
	"dispatch/internal/core/domain/model/task"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormVendorLedger implements both ports.VendorLedger and the vendor
// ports.OrderFeed over the vendor_orders table.
type GormVendorLedger struct {
	db  *gorm.DB
	now func() time.Time
}

func NewGormVendorLedger(db *gorm.DB) *GormVendorLedger {
	return &GormVendorLedger{db: db, now: time.Now}
}

// Stage upserts the order by reference.
func (l *GormVendorLedger) Stage(ctx context.Context, order feed.Order) error {
	dto := fromDomain(order, l.now())
	return l.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "reference"}},
			UpdateAll: true,
		}).
		Create(&dto).Error
}

func (l *GormVendorLedger) Source() task.Source {
	return task.SourceVendor
}

func (l *GormVendorLedger) ReadyOrders(ctx context.Context) ([]feed.Order, error) {
	return l.ordersWithStatus(ctx, feed.StatusReadyForDispatch)
}

func (l *GormVendorLedger) CanceledOrders(ctx context.Context) ([]feed.Order, error) {
	return l.ordersWithStatus(ctx, feed.StatusCanceled)
}

func (l *GormVendorLedger) ordersWithStatus(ctx context.Context, status feed.Status) ([]feed.Order, error) {
	var dtos []VendorOrderDTO
	if err := l.db.WithContext(ctx).
		Where("status = ?", status.String()).
		Order("staged_at, reference").
		Find(&dtos).Error; err != nil {
		return nil, err
	}

	orders := make([]feed.Order, 0, len(dtos))
	for _, dto := range dtos {
		orders = append(orders, toDomain(dto))
	}
	return orders, nil
}
