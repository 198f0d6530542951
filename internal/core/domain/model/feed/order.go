package feed

import (
	"dispatch/internal/core/domain/model/task"
)

// Status is the upstream fulfillment status as far as dispatch cares.
type Status int

const (
	StatusOther Status = iota
	StatusReadyForDispatch
	StatusCanceled
)

func (s Status) String() string {
	switch s {
	case StatusReadyForDispatch:
		return "ready_for_dispatch"
	case StatusCanceled:
		return "canceled"
	default:
		return "other"
	}
}

// Block is one fulfillment category of an order with its product lines.
type Block struct {
	Category string
	Items    task.Items
}

// Order is the read-only view of an upstream order. Adapters parse the
// composite item summary into Blocks at the edge; fragments they had to
// skip are reported in Issues so the sync run can surface them.
type Order struct {
	Reference string
	Recipient task.Recipient
	Status    Status
	Source    task.Source
	Blocks    []Block
	Issues    []error
}
