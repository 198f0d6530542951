// Package queries holds the read side of the dispatch engine. Handlers read
// the tables directly with SQL and return flat views; they never load aggregates.
package queries

import (
	"database/sql"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/task"

	"github.com/google/uuid"
)

// TaskView is the read model of one task as operators and drivers see it.
type TaskView struct {
	ID             kernel.UUID
	OrderReference string
	Category       string
	Source         task.Source
	CustomerName   string
	CustomerPhone  string
	Address        string
	Memo           string
	ItemSummary    string
	TotalQuantity  int
	DriverID       *kernel.UUID
	DriverName     string
	Status         task.Status
	PickedUpAt     *time.Time
	CompletedAt    *time.Time
	ProofRef       string
	CreatedAt      time.Time
}

const taskViewColumns = `
	id,
	order_reference,
	category,
	source,
	customer_name,
	customer_phone,
	customer_address,
	customer_memo,
	item_summary,
	total_quantity,
	driver_id,
	driver_name,
	status,
	picked_up_at,
	completed_at,
	proof_ref,
	created_at`

// scanTaskView reads one row selected with taskViewColumns.
func scanTaskView(rows *sql.Rows) (TaskView, error) {
	var (
		view        TaskView
		id          uuid.UUID
		driverID    *uuid.UUID
		source      string
		status      string
		driverName  sql.NullString
		phone       sql.NullString
		memo        sql.NullString
		proofRef    sql.NullString
		pickedUpAt  sql.NullTime
		completedAt sql.NullTime
	)

	if err := rows.Scan(
		&id,
		&view.OrderReference,
		&view.Category,
		&source,
		&view.CustomerName,
		&phone,
		&view.Address,
		&memo,
		&view.ItemSummary,
		&view.TotalQuantity,
		&driverID,
		&driverName,
		&status,
		&pickedUpAt,
		&completedAt,
		&proofRef,
		&view.CreatedAt,
	); err != nil {
		return TaskView{}, err
	}

	taskID, err := kernel.UUIDFromBytes(id[:])
	if err != nil {
		return TaskView{}, err
	}
	view.ID = taskID

	if driverID != nil {
		dID, idErr := kernel.UUIDFromBytes(driverID[:])
		if idErr != nil {
			return TaskView{}, idErr
		}
		view.DriverID = &dID
	}

	view.Status, err = task.ParseStatus(status)
	if err != nil {
		return TaskView{}, err
	}

	view.Source = task.Source(source)
	view.CustomerPhone = phone.String
	view.Memo = memo.String
	view.DriverName = driverName.String
	view.ProofRef = proofRef.String
	view.PickedUpAt = nullTime(pickedUpAt)
	view.CompletedAt = nullTime(completedAt)
	view.CreatedAt = view.CreatedAt.UTC()

	return view, nil
}

func nullTime(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time.UTC()
	return &v
}
