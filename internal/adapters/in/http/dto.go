package http

import (
	"time"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/application/usecases/queries"
	"dispatch/internal/core/domain/model/task"

	"github.com/google/uuid"
)

// Request and response bodies. Field names follow openapi/openapi.yaml.

type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type SyncRequest struct {
	Source string `json:"source"`
}

type SyncResult struct {
	Created  int      `json:"created"`
	Canceled int      `json:"canceled"`
	Errors   []string `json:"errors"`
}

type BulkRequest struct {
	TaskIDs  []string `json:"task_ids"`
	Action   string   `json:"action"`
	DriverID string   `json:"driver_id,omitempty"`
}

type BulkResult struct {
	Affected int `json:"affected"`
}

type AssignRequest struct {
	DriverID string `json:"driver_id"`
}

type TransitionRequest struct {
	Status string `json:"status"`
	Note   string `json:"note"`
}

type CompletionResult struct {
	CustomerName  string `json:"customer_name"`
	CustomerPhone string `json:"customer_phone"`
	PhotoRef      string `json:"photo_ref"`
}

type NewDriver struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

type CreatedDriver struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Phone       string    `json:"phone"`
	AccessToken string    `json:"access_token"`
}

type Driver struct {
	ID        uuid.UUID `json:"id"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone,omitempty"`
	OpenTasks int       `json:"open_tasks"`
	CreatedAt time.Time `json:"created_at"`
}

type Task struct {
	ID             uuid.UUID  `json:"id"`
	OrderReference string     `json:"order_reference"`
	Category       string     `json:"category"`
	Source         string     `json:"source"`
	CustomerName   string     `json:"customer_name"`
	CustomerPhone  string     `json:"customer_phone,omitempty"`
	Address        string     `json:"address"`
	Memo           string     `json:"memo,omitempty"`
	ItemSummary    string     `json:"item_summary"`
	TotalQuantity  int        `json:"total_quantity"`
	DriverID       *uuid.UUID `json:"driver_id,omitempty"`
	DriverName     string     `json:"driver_name,omitempty"`
	Status         string     `json:"status"`
	PickedUpAt     *time.Time `json:"picked_up_at,omitempty"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
	ProofRef       string     `json:"proof_ref,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

type AuditEntry struct {
	ID             uuid.UUID `json:"id"`
	TaskID         uuid.UUID `json:"task_id"`
	OrderReference string    `json:"order_reference"`
	Kind           string    `json:"kind"`
	FromStatus     string    `json:"from_status,omitempty"`
	ToStatus       string    `json:"to_status,omitempty"`
	Actor          string    `json:"actor"`
	Note           string    `json:"note,omitempty"`
	At             time.Time `json:"at"`
}

type DailyCount struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

type DriverQueue struct {
	View        string       `json:"view"`
	From        string       `json:"from,omitempty"`
	To          string       `json:"to,omitempty"`
	Tasks       []Task       `json:"tasks"`
	DailyCounts []DailyCount `json:"daily_counts,omitempty"`
}

func toSyncResult(r commands.SynchronizeResult) SyncResult {
	out := SyncResult{Created: r.Created, Canceled: r.Canceled, Errors: make([]string, 0, len(r.Errors))}
	for _, err := range r.Errors {
		out.Errors = append(out.Errors, err.Error())
	}
	return out
}

func toTask(v queries.TaskView) Task {
	out := Task{
		ID:             v.ID.Bytes(),
		OrderReference: v.OrderReference,
		Category:       v.Category,
		Source:         v.Source.String(),
		CustomerName:   v.CustomerName,
		CustomerPhone:  v.CustomerPhone,
		Address:        v.Address,
		Memo:           v.Memo,
		ItemSummary:    v.ItemSummary,
		TotalQuantity:  v.TotalQuantity,
		DriverName:     v.DriverName,
		Status:         v.Status.String(),
		PickedUpAt:     v.PickedUpAt,
		CompletedAt:    v.CompletedAt,
		ProofRef:       v.ProofRef,
		CreatedAt:      v.CreatedAt,
	}
	if v.DriverID != nil {
		id := v.DriverID.Bytes()
		out.DriverID = &id
	}
	return out
}

func toTasks(views []queries.TaskView) []Task {
	out := make([]Task, len(views))
	for i, v := range views {
		out[i] = toTask(v)
	}
	return out
}

func toAuditEntries(views []queries.AuditEntryView) []AuditEntry {
	out := make([]AuditEntry, len(views))
	for i, v := range views {
		out[i] = AuditEntry{
			ID:             v.ID.Bytes(),
			TaskID:         v.TaskID.Bytes(),
			OrderReference: v.OrderReference,
			Kind:           v.Kind.String(),
			FromStatus:     statusName(v.From),
			ToStatus:       statusName(v.To),
			Actor:          v.Actor.String(),
			Note:           v.Note,
			At:             v.At,
		}
	}
	return out
}

func statusName(s task.Status) string {
	if s == task.Unknown {
		return ""
	}
	return s.String()
}

func toDrivers(views []queries.DriverView) []Driver {
	out := make([]Driver, len(views))
	for i, v := range views {
		out[i] = Driver{
			ID:        v.ID.Bytes(),
			Name:      v.Name,
			Phone:     v.Phone,
			OpenTasks: v.OpenTasks,
			CreatedAt: v.CreatedAt,
		}
	}
	return out
}

func toDriverQueue(q queries.DriverQueue) DriverQueue {
	out := DriverQueue{
		View:  string(q.View),
		Tasks: toTasks(q.Tasks),
	}
	if !q.Dates.IsZero() {
		out.From = q.Dates.From.Format(time.DateOnly)
		out.To = q.Dates.To.Format(time.DateOnly)
	}
	for _, c := range q.DailyCounts {
		out.DailyCounts = append(out.DailyCounts, DailyCount{Date: c.Date, Count: c.Count})
	}
	return out
}
