// Package auditrepo appends audit entries. Rows are never updated or
// deleted, and task_id carries no foreign key so the trail outlives a purge.
package auditrepo

import (
	"time"

	"dispatch/internal/core/domain/model/audit"
	"dispatch/internal/core/domain/model/task"

	"github.com/google/uuid"
)

// EntryDTO is the row layout of the audit_entries table. Seq is filled by
// the database and orders entries sharing a timestamp.
type EntryDTO struct {
	ID             uuid.UUID `gorm:"type:uuid;primaryKey"`
	Seq            int64     `gorm:"type:bigserial;not null;<-:false"`
	TaskID         uuid.UUID `gorm:"type:uuid;not null;index"`
	OrderReference string    `gorm:"type:varchar(64);not null;index"`
	Kind           string    `gorm:"type:varchar(32);not null"`
	FromStatus     string    `gorm:"type:varchar(16)"`
	ToStatus       string    `gorm:"type:varchar(16)"`
	Actor          string    `gorm:"type:varchar(16);not null"`
	Note           string    `gorm:"type:text"`
	CreatedAt      time.Time `gorm:"not null"`
}

func (EntryDTO) TableName() string {
	return "audit_entries"
}

func fromDomain(e *audit.Entry) EntryDTO {
	rec := e.Record()
	return EntryDTO{
		ID:             e.ID().Bytes(),
		TaskID:         rec.TaskID.Bytes(),
		OrderReference: rec.OrderReference,
		Kind:           rec.Kind.String(),
		FromStatus:     statusName(rec.From),
		ToStatus:       statusName(rec.To),
		Actor:          rec.Actor.String(),
		Note:           rec.Note,
		CreatedAt:      rec.At,
	}
}

// statusName stores Unknown as an empty string.
func statusName(s task.Status) string {
	if s == task.Unknown {
		return ""
	}
	return s.String()
}
