package queries

import (
	"errors"
	"fmt"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/task"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

const (
	DefaultListLimit = 200
	MaxListLimit     = 1000
)

var ErrListTasksQueryIsNotConstructed = errors.New(
	"ListTasksQuery must be created via NewListTasksQuery constructor",
)

// TaskFilter narrows ListTasks. Zero fields do not filter.
type TaskFilter struct {
	Statuses       []task.Status
	DriverID       *kernel.UUID
	OrderReference string
	Source         task.Source

	// From and To bound created_at; From is inclusive, To exclusive.
	From *time.Time
	To   *time.Time

	Limit int
}

// ListTasksQuery is the operator's task list, newest first.
//
// Example:
//
//	query, err := NewListTasksQuery(TaskFilter{Statuses: []task.Status{task.Pending}})
//	if err != nil {
//	    return err
//	}
//	tasks, err := handler.Handle(ctx, query)
type ListTasksQuery struct {
	filter TaskFilter
	guard  guard.ConstructorGuard
}

func NewListTasksQuery(filter TaskFilter) (ListTasksQuery, error) {
	var errList []error
	for _, s := range filter.Statuses {
		errList = append(errList, s.Validate())
	}
	if filter.DriverID != nil {
		errList = append(errList, filter.DriverID.Validate())
	}
	if filter.Source != "" {
		errList = append(errList, filter.Source.Validate())
	}
	if filter.From != nil && filter.To != nil && !filter.From.Before(*filter.To) {
		errList = append(errList, errs.NewValueIsInvalidErrorWithCause("created_at window",
			fmt.Errorf("from %s is not before to %s", filter.From.Format(time.RFC3339), filter.To.Format(time.RFC3339))))
	}
	switch {
	case filter.Limit == 0:
		filter.Limit = DefaultListLimit
	case filter.Limit < 0 || filter.Limit > MaxListLimit:
		errList = append(errList, errs.NewValueIsOutOfRangeError("limit", filter.Limit, 1, MaxListLimit))
	}
	if err := errors.Join(errList...); err != nil {
		return ListTasksQuery{}, err
	}

	return ListTasksQuery{filter: filter, guard: guard.NewConstructorGuard()}, nil
}

func (q ListTasksQuery) Validate() error {
	return q.guard.Validate(ErrListTasksQueryIsNotConstructed)
}

func (q ListTasksQuery) Filter() TaskFilter {
	return q.filter
}
