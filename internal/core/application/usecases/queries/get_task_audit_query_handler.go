package queries

import (
	"context"
	"database/sql"

	"dispatch/internal/core/domain/model/audit"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/task"
	"dispatch/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type GetTaskAuditQueryHandler struct {
	db *gorm.DB
}

func NewGetTaskAuditQueryHandler(db *gorm.DB) GetTaskAuditQueryHandler {
	return GetTaskAuditQueryHandler{db: db}
}

// Handle returns errs.ObjectNotFoundError only when the task neither exists
// nor left any audit entries behind.
func (h GetTaskAuditQueryHandler) Handle(ctx context.Context, query GetTaskAuditQuery) ([]AuditEntryView, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			id,
			task_id,
			order_reference,
			kind,
			from_status,
			to_status,
			actor,
			note,
			created_at
		FROM audit_entries
		WHERE task_id = ?
		ORDER BY created_at, seq
	`, query.TaskID().Bytes()).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]AuditEntryView, 0)
	for rows.Next() {
		entry, scanErr := scanAuditEntry(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		entries = append(entries, entry)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}

	if len(entries) == 0 {
		var count int64
		if err = h.db.WithContext(ctx).Table("tasks").
			Where("id = ?", query.TaskID().Bytes()).
			Count(&count).Error; err != nil {
			return nil, err
		}
		if count == 0 {
			return nil, errs.NewObjectNotFoundError("task", query.TaskID().String())
		}
	}

	return entries, nil
}

func scanAuditEntry(rows *sql.Rows) (AuditEntryView, error) {
	var (
		entry       AuditEntryView
		id, taskID  uuid.UUID
		kind, actor string
		from, to    sql.NullString
		note        sql.NullString
	)
	if err := rows.Scan(&id, &taskID, &entry.OrderReference, &kind, &from, &to, &actor, &note, &entry.At); err != nil {
		return AuditEntryView{}, err
	}

	var err error
	if entry.ID, err = kernel.UUIDFromBytes(id[:]); err != nil {
		return AuditEntryView{}, err
	}
	if entry.TaskID, err = kernel.UUIDFromBytes(taskID[:]); err != nil {
		return AuditEntryView{}, err
	}
	if entry.From, err = optionalStatus(from); err != nil {
		return AuditEntryView{}, err
	}
	if entry.To, err = optionalStatus(to); err != nil {
		return AuditEntryView{}, err
	}

	entry.Kind = audit.Kind(kind)
	entry.Actor = kernel.Actor(actor)
	entry.Note = note.String
	entry.At = entry.At.UTC()
	return entry, nil
}

func optionalStatus(s sql.NullString) (task.Status, error) {
	if !s.Valid || s.String == "" {
		return task.Unknown, nil
	}
	return task.ParseStatus(s.String)
}
