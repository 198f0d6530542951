package queries

import (
	"context"
	"time"

	"dispatch/internal/core/domain/model/task"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/pkg/errs"

	"gorm.io/gorm"
)

// ListDriverQueueQueryHandler builds a driver's work queue. Stops are grouped
// by address with bulkier loads first; callers must not rely on the order
// beyond that grouping.
type ListDriverQueueQueryHandler struct {
	db       *gorm.DB
	ordering services.WorkQueueOrdering[TaskView]
	now      func() time.Time
}

func NewListDriverQueueQueryHandler(db *gorm.DB) ListDriverQueueQueryHandler {
	return ListDriverQueueQueryHandler{
		db: db,
		ordering: services.WorkQueueOrdering[TaskView]{
			Address:  func(v TaskView) string { return v.Address },
			Quantity: func(v TaskView) int { return v.TotalQuantity },
			Key:      func(v TaskView) string { return v.OrderReference + "/" + v.Category },
		},
		now: time.Now,
	}
}

func (h ListDriverQueueQueryHandler) Handle(ctx context.Context, query ListDriverQueueQuery) (DriverQueue, error) {
	if err := query.Validate(); err != nil {
		return DriverQueue{}, err
	}

	var drivers int64
	if err := h.db.WithContext(ctx).Table("drivers").
		Where("id = ?", query.DriverID().Bytes()).
		Count(&drivers).Error; err != nil {
		return DriverQueue{}, err
	}
	if drivers == 0 {
		return DriverQueue{}, errs.NewObjectNotFoundError("driver", query.DriverID().String())
	}

	queue := DriverQueue{View: query.View()}
	stmt := h.db.WithContext(ctx).Table("tasks").
		Select(taskViewColumns).
		Where("driver_id = ?", query.DriverID().Bytes())

	switch query.View() {
	case ViewAssigned:
		stmt = stmt.Where("status IN ?", []string{task.Pending.String(), task.Assigned.String()})
	case ViewInTransit:
		stmt = stmt.Where("status = ?", task.PickedUp.String())
	case ViewCompleted:
		queue.Dates = query.Dates()
		if queue.Dates.IsZero() {
			today := startOfDay(h.now())
			queue.Dates = DateRange{From: today, To: today}
		}
		from, until := queue.Dates.From, queue.Dates.To.AddDate(0, 0, 1)
		stmt = stmt.Where("status = ? AND completed_at >= ? AND completed_at < ?", task.Completed.String(), from, until)

		counts, err := h.dailyCounts(ctx, query, from, until)
		if err != nil {
			return DriverQueue{}, err
		}
		queue.DailyCounts = counts
	}

	rows, err := stmt.Rows()
	if err != nil {
		return DriverQueue{}, err
	}
	defer rows.Close()

	queue.Tasks = make([]TaskView, 0)
	for rows.Next() {
		view, scanErr := scanTaskView(rows)
		if scanErr != nil {
			return DriverQueue{}, scanErr
		}
		queue.Tasks = append(queue.Tasks, view)
	}
	if err = rows.Err(); err != nil {
		return DriverQueue{}, err
	}

	h.ordering.Sort(queue.Tasks)
	return queue, nil
}

// dailyCounts rolls completions up per UTC day.
func (h ListDriverQueueQueryHandler) dailyCounts(
	ctx context.Context,
	query ListDriverQueueQuery,
	from, until time.Time,
) ([]DailyCount, error) {
	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			to_char(completed_at AT TIME ZONE 'UTC', 'YYYY-MM-DD') AS day,
			count(*)
		FROM tasks
		WHERE driver_id = ?
			AND status = ?
			AND completed_at >= ?
			AND completed_at < ?
		GROUP BY day
		ORDER BY day
	`, query.DriverID().Bytes(), task.Completed.String(), from, until).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make([]DailyCount, 0)
	for rows.Next() {
		var c DailyCount
		if err = rows.Scan(&c.Date, &c.Count); err != nil {
			return nil, err
		}
		counts = append(counts, c)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return counts, nil
}
