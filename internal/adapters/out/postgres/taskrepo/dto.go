// Package taskrepo persists Task aggregates in the tasks table. The unique
// index on (order_reference, category) is what keeps concurrent syncs from
// creating the same task twice.
package taskrepo

import (
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/task"

	"github.com/google/uuid"
)

// TaskDTO is the row layout of the tasks table.
type TaskDTO struct {
	ID             uuid.UUID    `gorm:"type:uuid;primaryKey"`
	OrderReference string       `gorm:"type:varchar(64);not null;uniqueIndex:ux_tasks_order_category,priority:1"`
	Category       string       `gorm:"type:varchar(128);not null;uniqueIndex:ux_tasks_order_category,priority:2"`
	Source         string       `gorm:"type:varchar(16);not null;index"`
	Recipient      RecipientDTO `gorm:"embedded;embeddedPrefix:customer_"`
	Items          []ItemDTO    `gorm:"type:jsonb;serializer:json;not null"`
	ItemSummary    string       `gorm:"type:text;not null"`
	TotalQuantity  int          `gorm:"not null"`
	DriverID       *uuid.UUID   `gorm:"type:uuid;index"`
	DriverName     string       `gorm:"type:varchar(255)"`
	Status         string       `gorm:"type:varchar(16);not null;index"`
	PickedUpAt     *time.Time
	CompletedAt    *time.Time `gorm:"index"`
	ProofRef       string     `gorm:"type:text"`
	CreatedAt      time.Time  `gorm:"not null;index"`
}

func (TaskDTO) TableName() string {
	return "tasks"
}

// RecipientDTO is embedded with the customer_ prefix.
type RecipientDTO struct {
	Name    string `gorm:"type:varchar(255);not null"`
	Phone   string `gorm:"type:varchar(32)"`
	Address string `gorm:"type:text;not null"`
	Memo    string `gorm:"type:text"`
}

// ItemDTO is one element of the items JSON column.
type ItemDTO struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

// fromDomain flattens the aggregate. item_summary and total_quantity are
// denormalized for the list and work-queue queries.
func fromDomain(t *task.Task) TaskDTO {
	s := t.Snapshot()

	var driverID *uuid.UUID
	if s.DriverID != nil {
		raw := s.DriverID.Bytes()
		driverID = &raw
	}

	items := make([]ItemDTO, 0, len(s.Items))
	for _, line := range s.Items {
		items = append(items, ItemDTO{Name: line.Name(), Quantity: line.Quantity()})
	}

	return TaskDTO{
		ID:             s.ID.Bytes(),
		OrderReference: s.OrderReference,
		Category:       s.Category,
		Source:         s.Source.String(),
		Recipient: RecipientDTO{
			Name:    s.Recipient.Name,
			Phone:   s.Recipient.Phone,
			Address: s.Recipient.Address,
			Memo:    s.Recipient.Memo,
		},
		Items:         items,
		ItemSummary:   s.Items.Render(),
		TotalQuantity: s.Items.TotalQuantity(),
		DriverID:      driverID,
		DriverName:    s.DriverName,
		Status:        s.Status.String(),
		PickedUpAt:    s.PickedUpAt,
		CompletedAt:   s.CompletedAt,
		ProofRef:      s.ProofRef,
		CreatedAt:     s.CreatedAt,
	}
}

// toDomain rebuilds the aggregate through task.RestoreTask.
func toDomain(dto TaskDTO) (*task.Task, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	var driverID *kernel.UUID
	if dto.DriverID != nil {
		dID, driverErr := kernel.UUIDFromBytes((*dto.DriverID)[:])
		if driverErr != nil {
			return nil, driverErr
		}
		driverID = &dID
	}

	status, err := task.ParseStatus(dto.Status)
	if err != nil {
		return nil, err
	}

	lines := make([]task.LineItem, 0, len(dto.Items))
	for _, item := range dto.Items {
		line, lineErr := task.NewLineItem(item.Name, item.Quantity)
		if lineErr != nil {
			return nil, lineErr
		}
		lines = append(lines, line)
	}
	items, err := task.NewItems(lines...)
	if err != nil {
		return nil, err
	}

	return task.RestoreTask(task.Snapshot{
		ID:             id,
		OrderReference: dto.OrderReference,
		Category:       dto.Category,
		Source:         task.Source(dto.Source),
		Recipient: task.Recipient{
			Name:    dto.Recipient.Name,
			Phone:   dto.Recipient.Phone,
			Address: dto.Recipient.Address,
			Memo:    dto.Recipient.Memo,
		},
		Items:       items,
		DriverID:    driverID,
		DriverName:  dto.DriverName,
		Status:      status,
		PickedUpAt:  utc(dto.PickedUpAt),
		CompletedAt: utc(dto.CompletedAt),
		ProofRef:    dto.ProofRef,
		CreatedAt:   dto.CreatedAt.UTC(),
	})
}

func utc(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := t.UTC()
	return &v
}
