// Package vendorfeed is the staging ledger for orders received from external
// vendors. The intake consumer writes it through Stage and the sync engine
// reads it as the vendor OrderFeed.
package vendorfeed

import (
	"errors"
	"time"

	"dispatch/internal/core/domain/model/feed"
	"dispatch/internal/core/domain/model/task"
)

// VendorOrderDTO is the row layout of the vendor_orders table. One row per
// order reference; staging the same reference again overwrites it.
type VendorOrderDTO struct {
	Reference string       `gorm:"type:varchar(64);primaryKey"`
	Recipient RecipientDTO `gorm:"embedded;embeddedPrefix:customer_"`
	Status    string       `gorm:"type:varchar(32);not null;index"`
	Blocks    []BlockDTO   `gorm:"type:jsonb;serializer:json;not null"`
	Issues    []string     `gorm:"type:jsonb;serializer:json"`
	StagedAt  time.Time    `gorm:"not null"`
}

func (VendorOrderDTO) TableName() string {
	return "vendor_orders"
}

type RecipientDTO struct {
	Name    string `gorm:"type:varchar(255)"`
	Phone   string `gorm:"type:varchar(32)"`
	Address string `gorm:"type:text"`
	Memo    string `gorm:"type:text"`
}

type BlockDTO struct {
	Category string    `json:"category"`
	Items    []ItemDTO `json:"items"`
}

type ItemDTO struct {
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

func fromDomain(o feed.Order, stagedAt time.Time) VendorOrderDTO {
	blocks := make([]BlockDTO, 0, len(o.Blocks))
	for _, b := range o.Blocks {
		items := make([]ItemDTO, 0, len(b.Items))
		for _, line := range b.Items {
			items = append(items, ItemDTO{Name: line.Name(), Quantity: line.Quantity()})
		}
		blocks = append(blocks, BlockDTO{Category: b.Category, Items: items})
	}

	issues := make([]string, 0, len(o.Issues))
	for _, issue := range o.Issues {
		issues = append(issues, issue.Error())
	}

	return VendorOrderDTO{
		Reference: o.Reference,
		Recipient: RecipientDTO{
			Name:    o.Recipient.Name,
			Phone:   o.Recipient.Phone,
			Address: o.Recipient.Address,
			Memo:    o.Recipient.Memo,
		},
		Status:   o.Status.String(),
		Blocks:   blocks,
		Issues:   issues,
		StagedAt: stagedAt.UTC(),
	}
}

// toDomain never fails the whole order: a staged line that no longer
// validates becomes an issue and its block is dropped, the same way the
// intake parser treats a malformed block.
func toDomain(dto VendorOrderDTO) feed.Order {
	o := feed.Order{
		Reference: dto.Reference,
		Recipient: task.Recipient{
			Name:    dto.Recipient.Name,
			Phone:   dto.Recipient.Phone,
			Address: dto.Recipient.Address,
			Memo:    dto.Recipient.Memo,
		},
		Status: parseStatus(dto.Status),
		Source: task.SourceVendor,
	}

	for _, issue := range dto.Issues {
		o.Issues = append(o.Issues, errors.New(issue))
	}

	for _, b := range dto.Blocks {
		lines := make([]task.LineItem, 0, len(b.Items))
		var lineErr error
		for _, item := range b.Items {
			line, err := task.NewLineItem(item.Name, item.Quantity)
			if err != nil {
				lineErr = err
				break
			}
			lines = append(lines, line)
		}
		if lineErr == nil {
			items, err := task.NewItems(lines...)
			if err == nil {
				o.Blocks = append(o.Blocks, feed.Block{Category: b.Category, Items: items})
				continue
			}
			lineErr = err
		}
		o.Issues = append(o.Issues, lineErr)
	}
	return o
}

func parseStatus(s string) feed.Status {
	switch s {
	case feed.StatusReadyForDispatch.String():
		return feed.StatusReadyForDispatch
	case feed.StatusCanceled.String():
		return feed.StatusCanceled
	default:
		return feed.StatusOther
	}
}
