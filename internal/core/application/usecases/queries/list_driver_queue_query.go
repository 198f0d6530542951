package queries

import (
	"errors"
	"fmt"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

// MaxCompletedRangeDays bounds the completed view so a driver screen cannot
// request the whole history.
const MaxCompletedRangeDays = 31

var ErrListDriverQueueQueryIsNotConstructed = errors.New(
	"ListDriverQueueQuery must be created via NewListDriverQueueQuery constructor",
)

// QueueView selects the lifecycle phase of a driver's work queue.
type QueueView string

const (
	// ViewAssigned lists pending and assigned tasks already bound to the driver.
	ViewAssigned QueueView = "assigned"
	// ViewInTransit lists picked-up tasks.
	ViewInTransit QueueView = "in_transit"
	// ViewCompleted lists completed tasks within a date range.
	ViewCompleted QueueView = "completed"
)

func ParseQueueView(s string) (QueueView, error) {
	v := QueueView(s)
	if s == "" {
		v = ViewAssigned
	}
	if err := v.Validate(); err != nil {
		return "", err
	}
	return v, nil
}

func (v QueueView) Validate() error {
	switch v {
	case ViewAssigned, ViewInTransit, ViewCompleted:
		return nil
	default:
		return errs.NewValueIsInvalidErrorWithCause("view", fmt.Errorf("%q is not one of assigned, in_transit, completed", string(v)))
	}
}

// DateRange is a span of whole UTC days, both ends inclusive. The zero value
// means today.
type DateRange struct {
	From time.Time
	To   time.Time
}

// IsZero reports whether no range was given.
func (r DateRange) IsZero() bool {
	return r.From.IsZero() && r.To.IsZero()
}

// ListDriverQueueQuery is one driver's work queue for a lifecycle phase.
//
// Example:
//
//	query, err := NewListDriverQueueQuery(driverID, ViewCompleted, DateRange{From: monday, To: friday})
type ListDriverQueueQuery struct {
	driverID kernel.UUID
	view     QueueView
	dates    DateRange
	guard    guard.ConstructorGuard
}

// NewListDriverQueueQuery validates the view and, for the completed view,
// the date range. A range with only one end set covers that single day.
func NewListDriverQueueQuery(driverID kernel.UUID, view QueueView, dates DateRange) (ListDriverQueueQuery, error) {
	if err := errors.Join(driverID.Validate(), view.Validate()); err != nil {
		return ListDriverQueueQuery{}, err
	}

	if !dates.IsZero() {
		if dates.From.IsZero() {
			dates.From = dates.To
		}
		if dates.To.IsZero() {
			dates.To = dates.From
		}
		dates.From = startOfDay(dates.From)
		dates.To = startOfDay(dates.To)
		if dates.To.Before(dates.From) {
			return ListDriverQueueQuery{}, errs.NewValueIsInvalidErrorWithCause("date range",
				fmt.Errorf("%s is before %s", dates.To.Format(time.DateOnly), dates.From.Format(time.DateOnly)))
		}
		if days := rangeDays(dates); days > MaxCompletedRangeDays {
			return ListDriverQueueQuery{}, errs.NewValueIsOutOfRangeError("date range days", days, 1, MaxCompletedRangeDays)
		}
	}

	return ListDriverQueueQuery{
		driverID: driverID,
		view:     view,
		dates:    dates,
		guard:    guard.NewConstructorGuard(),
	}, nil
}

func (q ListDriverQueueQuery) Validate() error {
	return q.guard.Validate(ErrListDriverQueueQueryIsNotConstructed)
}

func (q ListDriverQueueQuery) DriverID() kernel.UUID {
	return q.driverID
}

func (q ListDriverQueueQuery) View() QueueView {
	return q.view
}

func (q ListDriverQueueQuery) Dates() DateRange {
	return q.dates
}

// DailyCount is the number of tasks a driver completed on one UTC day.
type DailyCount struct {
	Date  string
	Count int
}

// DriverQueue is the result of ListDriverQueue. Dates and DailyCounts are
// only set for the completed view.
type DriverQueue struct {
	View        QueueView
	Dates       DateRange
	Tasks       []TaskView
	DailyCounts []DailyCount
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func rangeDays(r DateRange) int {
	return int(r.To.Sub(r.From).Hours()/24) + 1
}
