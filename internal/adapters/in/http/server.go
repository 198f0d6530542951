package http

import (
	"errors"
	"io"
	"net/http"
	"time"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/application/usecases/queries"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/task"
	"dispatch/internal/pkg/errs"

	"github.com/labstack/echo/v4"
	"github.com/oapi-codegen/runtime"
)

// MaxPhotoBytes bounds a completion photo upload.
const MaxPhotoBytes = 10 << 20

// Server implements the admin and driver endpoints of the contract in
// openapi/openapi.yaml on top of the application use cases.
type Server struct {
	h Handlers
}

func NewServer(h Handlers) (*Server, error) {
	required := []struct {
		name    string
		missing bool
	}{
		{"synchronize", h.Synchronize == nil},
		{"assign task", h.AssignTask == nil},
		{"cancel assignment", h.CancelAssignment == nil},
		{"transition task", h.TransitionTask == nil},
		{"bulk execute", h.BulkExecute == nil},
		{"complete with proof", h.CompleteWithProof == nil},
		{"create driver", h.CreateDriver == nil},
		{"list tasks", h.ListTasks == nil},
		{"list driver queue", h.ListDriverQueue == nil},
		{"get task audit", h.GetTaskAudit == nil},
		{"get all drivers", h.GetAllDrivers == nil},
		{"authenticate driver", h.AuthenticateDriver == nil},
	}
	var errList []error
	for _, r := range required {
		if r.missing {
			errList = append(errList, errs.NewValueIsRequiredError(r.name+" handler"))
		}
	}
	if err := errors.Join(errList...); err != nil {
		return nil, err
	}
	return &Server{h: h}, nil
}

// Synchronize handles POST /api/v1/sync.
func (s *Server) Synchronize(c echo.Context) error {
	var body SyncRequest
	if err := c.Bind(&body); err != nil {
		return errs.NewParseErrorWithCause("sync request", err)
	}

	cmd, err := commands.NewSynchronizeCommand(task.Source(body.Source))
	if err != nil {
		return err
	}
	result, err := s.h.Synchronize.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toSyncResult(result))
}

// ListTasks handles GET /api/v1/tasks.
func (s *Server) ListTasks(c echo.Context) error {
	var (
		statuses                   []string
		driverID, orderRef, source string
		from, to                   string
		limit                      int
	)
	params := c.QueryParams()
	if err := errors.Join(
		runtime.BindQueryParameter("form", true, false, "status", params, &statuses),
		runtime.BindQueryParameter("form", true, false, "driver_id", params, &driverID),
		runtime.BindQueryParameter("form", true, false, "order_ref", params, &orderRef),
		runtime.BindQueryParameter("form", true, false, "source", params, &source),
		runtime.BindQueryParameter("form", true, false, "from", params, &from),
		runtime.BindQueryParameter("form", true, false, "to", params, &to),
		runtime.BindQueryParameter("form", true, false, "limit", params, &limit),
	); err != nil {
		return errs.NewValueIsInvalidErrorWithCause("query", err)
	}

	filter := queries.TaskFilter{
		OrderReference: orderRef,
		Source:         task.Source(source),
		Limit:          limit,
	}
	for _, name := range statuses {
		status, err := task.ParseStatus(name)
		if err != nil {
			return err
		}
		filter.Statuses = append(filter.Statuses, status)
	}
	if driverID != "" {
		id, err := parseUUID("driver_id", driverID)
		if err != nil {
			return err
		}
		filter.DriverID = &id
	}
	var err error
	if filter.From, err = parseTimestamp("from", from); err != nil {
		return err
	}
	if filter.To, err = parseTimestamp("to", to); err != nil {
		return err
	}

	query, err := queries.NewListTasksQuery(filter)
	if err != nil {
		return err
	}
	views, err := s.h.ListTasks.Handle(c.Request().Context(), query)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toTasks(views))
}

// BulkExecute handles POST /api/v1/tasks/bulk.
func (s *Server) BulkExecute(c echo.Context) error {
	var body BulkRequest
	if err := c.Bind(&body); err != nil {
		return errs.NewParseErrorWithCause("bulk request", err)
	}

	ids := make([]kernel.UUID, 0, len(body.TaskIDs))
	for _, raw := range body.TaskIDs {
		id, err := parseUUID("task_ids", raw)
		if err != nil {
			return err
		}
		ids = append(ids, id)
	}
	var driverID *kernel.UUID
	if body.DriverID != "" {
		id, err := parseUUID("driver_id", body.DriverID)
		if err != nil {
			return err
		}
		driverID = &id
	}

	cmd, err := commands.NewBulkExecuteCommand(ids, commands.BulkAction(body.Action), driverID, kernel.ActorAdmin)
	if err != nil {
		return err
	}
	affected, err := s.h.BulkExecute.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, BulkResult{Affected: affected})
}

// AssignTask handles POST /api/v1/tasks/{taskId}/assign.
func (s *Server) AssignTask(c echo.Context) error {
	taskID, err := pathUUID(c, "taskId")
	if err != nil {
		return err
	}
	var body AssignRequest
	if err = c.Bind(&body); err != nil {
		return errs.NewParseErrorWithCause("assign request", err)
	}
	driverID, err := parseUUID("driver_id", body.DriverID)
	if err != nil {
		return err
	}

	cmd, err := commands.NewAssignTaskCommand(taskID, driverID, kernel.ActorAdmin)
	if err != nil {
		return err
	}
	if err = s.h.AssignTask.Handle(c.Request().Context(), cmd); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// CancelAssignment handles POST /api/v1/tasks/{taskId}/unassign.
func (s *Server) CancelAssignment(c echo.Context) error {
	taskID, err := pathUUID(c, "taskId")
	if err != nil {
		return err
	}
	cmd, err := commands.NewCancelAssignmentCommand(taskID, kernel.ActorAdmin, "")
	if err != nil {
		return err
	}
	if err = s.h.CancelAssignment.Handle(c.Request().Context(), cmd); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// TransitionTask handles POST /api/v1/tasks/{taskId}/transition.
func (s *Server) TransitionTask(c echo.Context) error {
	taskID, err := pathUUID(c, "taskId")
	if err != nil {
		return err
	}
	var body TransitionRequest
	if err = c.Bind(&body); err != nil {
		return errs.NewParseErrorWithCause("transition request", err)
	}
	target, err := task.ParseStatus(body.Status)
	if err != nil {
		return err
	}

	cmd, err := commands.NewTransitionTaskCommand(taskID, target, kernel.ActorAdmin, body.Note)
	if err != nil {
		return err
	}
	if err = s.h.TransitionTask.Handle(c.Request().Context(), cmd); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// CompleteWithProof handles POST /api/v1/tasks/{taskId}/proof.
func (s *Server) CompleteWithProof(c echo.Context) error {
	taskID, err := pathUUID(c, "taskId")
	if err != nil {
		return err
	}
	photo, err := readPhoto(c)
	if err != nil {
		return err
	}
	cmd, err := commands.NewCompleteWithProofCommand(taskID, photo, kernel.ActorAdmin)
	if err != nil {
		return err
	}
	return s.complete(c, cmd)
}

func (s *Server) complete(c echo.Context, cmd commands.CompleteWithProofCommand) error {
	result, err := s.h.CompleteWithProof.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, CompletionResult{
		CustomerName:  result.CustomerName,
		CustomerPhone: result.CustomerPhone,
		PhotoRef:      result.PhotoRef,
	})
}

// GetTaskAudit handles GET /api/v1/tasks/{taskId}/audit.
func (s *Server) GetTaskAudit(c echo.Context) error {
	taskID, err := pathUUID(c, "taskId")
	if err != nil {
		return err
	}
	query, err := queries.NewGetTaskAuditQuery(taskID)
	if err != nil {
		return err
	}
	entries, err := s.h.GetTaskAudit.Handle(c.Request().Context(), query)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toAuditEntries(entries))
}

// ListDrivers handles GET /api/v1/drivers.
func (s *Server) ListDrivers(c echo.Context) error {
	drivers, err := s.h.GetAllDrivers.Handle(c.Request().Context(), queries.NewGetAllDriversQuery())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toDrivers(drivers))
}

// CreateDriver handles POST /api/v1/drivers.
func (s *Server) CreateDriver(c echo.Context) error {
	var body NewDriver
	if err := c.Bind(&body); err != nil {
		return errs.NewParseErrorWithCause("driver", err)
	}
	cmd, err := commands.NewCreateDriverCommand(body.Name, body.Phone)
	if err != nil {
		return err
	}
	result, err := s.h.CreateDriver.Handle(c.Request().Context(), cmd)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, CreatedDriver{
		ID:          result.Driver.ID().Bytes(),
		Name:        result.Driver.Name(),
		Phone:       result.Driver.Phone(),
		AccessToken: result.AccessToken.String(),
	})
}

// GetDriverQueue handles GET /api/v1/drivers/{driverId}/queue.
func (s *Server) GetDriverQueue(c echo.Context) error {
	driverID, err := pathUUID(c, "driverId")
	if err != nil {
		return err
	}
	return s.queue(c, driverID)
}

func (s *Server) queue(c echo.Context, driverID kernel.UUID) error {
	var view, from, to string
	params := c.QueryParams()
	if err := errors.Join(
		runtime.BindQueryParameter("form", true, false, "view", params, &view),
		runtime.BindQueryParameter("form", true, false, "from", params, &from),
		runtime.BindQueryParameter("form", true, false, "to", params, &to),
	); err != nil {
		return errs.NewValueIsInvalidErrorWithCause("query", err)
	}

	queueView, err := queries.ParseQueueView(view)
	if err != nil {
		return err
	}
	var dates queries.DateRange
	if dates.From, err = parseDate("from", from); err != nil {
		return err
	}
	if dates.To, err = parseDate("to", to); err != nil {
		return err
	}

	query, err := queries.NewListDriverQueueQuery(driverID, queueView, dates)
	if err != nil {
		return err
	}
	q, err := s.h.ListDriverQueue.Handle(c.Request().Context(), query)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toDriverQueue(q))
}

// GetOwnQueue handles GET /api/v1/driver/queue.
func (s *Server) GetOwnQueue(c echo.Context) error {
	d, err := currentDriver(c)
	if err != nil {
		return err
	}
	return s.queue(c, d.ID)
}

// PickUpOwnTask handles POST /api/v1/driver/tasks/{taskId}/pickup.
func (s *Server) PickUpOwnTask(c echo.Context) error {
	d, err := currentDriver(c)
	if err != nil {
		return err
	}
	taskID, err := pathUUID(c, "taskId")
	if err != nil {
		return err
	}
	cmd, err := commands.NewDriverTransitionTaskCommand(taskID, d.ID, task.PickedUp)
	if err != nil {
		return err
	}
	if err = s.h.TransitionTask.Handle(c.Request().Context(), cmd); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// CompleteOwnTask handles POST /api/v1/driver/tasks/{taskId}/proof.
func (s *Server) CompleteOwnTask(c echo.Context) error {
	d, err := currentDriver(c)
	if err != nil {
		return err
	}
	taskID, err := pathUUID(c, "taskId")
	if err != nil {
		return err
	}
	photo, err := readPhoto(c)
	if err != nil {
		return err
	}
	cmd, err := commands.NewDriverCompleteWithProofCommand(taskID, d.ID, photo)
	if err != nil {
		return err
	}
	return s.complete(c, cmd)
}

func pathUUID(c echo.Context, name string) (kernel.UUID, error) {
	var raw string
	if err := runtime.BindStyledParameterWithLocation("simple", false, name, runtime.ParamLocationPath, c.Param(name), &raw); err != nil {
		return kernel.UUID{}, errs.NewValueIsInvalidErrorWithCause(name, err)
	}
	return parseUUID(name, raw)
}

func parseUUID(name, raw string) (kernel.UUID, error) {
	if raw == "" {
		return kernel.UUID{}, errs.NewValueIsRequiredError(name)
	}
	id, err := kernel.UUIDFromString(raw)
	if err != nil {
		return kernel.UUID{}, errs.NewValueIsInvalidErrorWithCause(name, err)
	}
	return id, nil
}

func parseTimestamp(name, raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, errs.NewValueIsInvalidErrorWithCause(name, err)
	}
	return &t, nil
}

func parseDate(name, raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return time.Time{}, errs.NewValueIsInvalidErrorWithCause(name, err)
	}
	return t, nil
}

// readPhoto reads the "photo" multipart file, at most MaxPhotoBytes.
func readPhoto(c echo.Context) ([]byte, error) {
	header, err := c.FormFile("photo")
	if err != nil {
		return nil, errs.NewValueIsRequiredErrorWithCause("photo", err)
	}
	if header.Size > MaxPhotoBytes {
		return nil, errs.NewValueIsOutOfRangeError("photo size", header.Size, 1, MaxPhotoBytes)
	}

	f, err := header.Open()
	if err != nil {
		return nil, errs.NewValueIsInvalidErrorWithCause("photo", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, MaxPhotoBytes+1))
	if err != nil {
		return nil, errs.NewValueIsInvalidErrorWithCause("photo", err)
	}
	if len(data) > MaxPhotoBytes {
		return nil, errs.NewValueIsOutOfRangeError("photo size", len(data), 1, MaxPhotoBytes)
	}
	return data, nil
}
