package queries

import (
	"context"
	"database/sql"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/task"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type GetAllDriversQueryHandler struct {
	db *gorm.DB
}

func NewGetAllDriversQueryHandler(db *gorm.DB) GetAllDriversQueryHandler {
	return GetAllDriversQueryHandler{db: db}
}

// Handle returns drivers sorted by name.
func (h GetAllDriversQueryHandler) Handle(ctx context.Context, query GetAllDriversQuery) ([]DriverView, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			d.id,
			d.name,
			d.phone,
			d.created_at,
			count(t.id)
		FROM drivers d
		LEFT JOIN tasks t
			ON t.driver_id = d.id AND t.status IN (?, ?)
		GROUP BY d.id, d.name, d.phone, d.created_at
		ORDER BY d.name, d.id
	`, task.Assigned.String(), task.PickedUp.String()).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	drivers := make([]DriverView, 0)
	for rows.Next() {
		var (
			view  DriverView
			id    uuid.UUID
			phone sql.NullString
		)
		if err = rows.Scan(&id, &view.Name, &phone, &view.CreatedAt, &view.OpenTasks); err != nil {
			return nil, err
		}

		driverID, idErr := kernel.UUIDFromBytes(id[:])
		if idErr != nil {
			return nil, idErr
		}
		view.ID = driverID
		view.Phone = phone.String
		view.CreatedAt = view.CreatedAt.UTC()
		drivers = append(drivers, view)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	return drivers, nil
}
