package queries

import (
	"context"

	"gorm.io/gorm"
)

// ListTasksQueryHandler reads the tasks table for the operator list.
type ListTasksQueryHandler struct {
	db *gorm.DB
}

func NewListTasksQueryHandler(db *gorm.DB) ListTasksQueryHandler {
	return ListTasksQueryHandler{db: db}
}

// Handle applies every set filter and returns at most Limit tasks, newest first.
func (h ListTasksQueryHandler) Handle(ctx context.Context, query ListTasksQuery) ([]TaskView, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}
	f := query.Filter()

	stmt := h.db.WithContext(ctx).Table("tasks").Select(taskViewColumns)
	if len(f.Statuses) > 0 {
		names := make([]string, 0, len(f.Statuses))
		for _, s := range f.Statuses {
			names = append(names, s.String())
		}
		stmt = stmt.Where("status IN ?", names)
	}
	if f.DriverID != nil {
		stmt = stmt.Where("driver_id = ?", f.DriverID.Bytes())
	}
	if f.OrderReference != "" {
		stmt = stmt.Where("order_reference = ?", f.OrderReference)
	}
	if f.Source != "" {
		stmt = stmt.Where("source = ?", f.Source.String())
	}
	if f.From != nil {
		stmt = stmt.Where("created_at >= ?", f.From.UTC())
	}
	if f.To != nil {
		stmt = stmt.Where("created_at < ?", f.To.UTC())
	}

	rows, err := stmt.Order("created_at DESC, order_reference, category").Limit(f.Limit).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := make([]TaskView, 0)
	for rows.Next() {
		view, scanErr := scanTaskView(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		tasks = append(tasks, view)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	return tasks, nil
}
