package commands_test

import (
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/domain/model/audit"
	"dispatch/internal/core/domain/model/feed"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/task"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func readyOrder(t *testing.T, ref string) feed.Order {
	return feed.Order{
		Reference: ref,
		Recipient: testRecipient,
		Status:    feed.StatusReadyForDispatch,
		Source:    task.SourceInternal,
		Blocks: []feed.Block{
			{Category: "Produce", Items: lineItems(t, "Apples", 2)},
			{Category: "Dairy", Items: lineItems(t, "Milk", 1)},
		},
	}
}

func newInternalFeed(ready, canceled []feed.Order) *MockOrderFeed {
	f := new(MockOrderFeed)
	f.On("Source").Return(task.SourceInternal).Maybe()
	f.On("ReadyOrders", mock.Anything).Return(ready, nil).Once()
	f.On("CanceledOrders", mock.Anything).Return(canceled, nil).Once()
	return f
}

func auditKinds(kinds ...audit.Kind) any {
	return mock.MatchedBy(func(entries []*audit.Entry) bool {
		if len(entries) != len(kinds) {
			return false
		}
		for i, e := range entries {
			if e.Kind() != kinds[i] {
				return false
			}
		}
		return true
	})
}

func TestSynchronizeCommandHandler_Handle_CreatesTasksPerCategory(t *testing.T) {
	ctx := t.Context()
	cmd, err := commands.NewSynchronizeCommand("")
	require.NoError(t, err)

	taskRepo := new(MockTaskRepository)
	auditRepo := new(MockAuditRepository)
	uow := new(MockUoW)
	factory := new(MockTaskUoWFactory)

	var categories []string
	mock.InOrder(
		factory.On("Create").Return(uow).Once(),
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("TaskRepository").Return(taskRepo).Once(),
		taskRepo.On("AddIfAbsent", ctx, mock.AnythingOfType("*task.Task")).
			Run(func(args mock.Arguments) {
				categories = append(categories, args.Get(1).(*task.Task).Category())
			}).Return(true, nil).Twice(),
		uow.On("AuditRepository").Return(auditRepo).Once(),
		auditRepo.On("Append", ctx, auditKinds(audit.KindSyncCreated, audit.KindSyncCreated)).Return(nil).Once(),
		uow.On("Commit", ctx).Return(nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	f := newInternalFeed([]feed.Order{readyOrder(t, "ORD-100")}, nil)
	handler := commands.NewSynchronizeCommandHandler(factory, []ports.OrderFeed{f}, discardLogger())

	result, err := handler.Handle(ctx, cmd)

	require.NoError(t, err)
	assert.Equal(t, 2, result.Created)
	assert.Zero(t, result.Canceled)
	assert.Empty(t, result.Errors)
	assert.Equal(t, []string{"Produce", "Dairy"}, categories)
	taskRepo.AssertExpectations(t)
	auditRepo.AssertExpectations(t)
	uow.AssertExpectations(t)
}

func TestSynchronizeCommandHandler_Handle_RerunIsNoOp(t *testing.T) {
	ctx := t.Context()
	cmd, _ := commands.NewSynchronizeCommand(task.SourceInternal)

	taskRepo := new(MockTaskRepository)
	uow := new(MockUoW)
	factory := new(MockTaskUoWFactory)

	mock.InOrder(
		factory.On("Create").Return(uow).Once(),
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("TaskRepository").Return(taskRepo).Once(),
		taskRepo.On("AddIfAbsent", ctx, mock.Anything).Return(false, nil).Once(),
		taskRepo.On("AddIfAbsent", ctx, mock.Anything).Return(false, errs.NewDuplicateTaskError("ORD-100", "Dairy")).Once(),
		uow.On("Commit", ctx).Return(nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	f := newInternalFeed([]feed.Order{readyOrder(t, "ORD-100")}, nil)
	handler := commands.NewSynchronizeCommandHandler(factory, []ports.OrderFeed{f}, discardLogger())

	result, err := handler.Handle(ctx, cmd)

	require.NoError(t, err)
	assert.Zero(t, result.Created)
	assert.Empty(t, result.Errors)
	uow.AssertNotCalled(t, "AuditRepository")
	taskRepo.AssertExpectations(t)
}

func TestSynchronizeCommandHandler_Handle_ParseIssuesReportedOnlyWhenMaterialized(t *testing.T) {
	ctx := t.Context()
	cmd, _ := commands.NewSynchronizeCommand(task.SourceInternal)

	order := feed.Order{
		Reference: "ORD-100",
		Recipient: testRecipient,
		Status:    feed.StatusReadyForDispatch,
		Source:    task.SourceInternal,
		Blocks:    []feed.Block{{Category: "Produce", Items: lineItems(t, "Apples", 2)}},
		Issues:    []error{errs.NewParseError("Bananas")},
	}

	taskRepo := new(MockTaskRepository)
	auditRepo := new(MockAuditRepository)
	uow := new(MockUoW)
	factory := new(MockTaskUoWFactory)

	factory.On("Create").Return(uow).Twice()
	uow.On("Begin", ctx).Return(nil).Twice()
	uow.On("TaskRepository").Return(taskRepo).Twice()
	taskRepo.On("AddIfAbsent", ctx, mock.Anything).Return(true, nil).Once()
	taskRepo.On("AddIfAbsent", ctx, mock.Anything).Return(false, nil).Once()
	uow.On("AuditRepository").Return(auditRepo).Once()
	auditRepo.On("Append", ctx, auditKinds(audit.KindSyncCreated)).Return(nil).Once()
	uow.On("Commit", ctx).Return(nil).Twice()
	uow.On("Rollback", ctx).Return(nil).Twice()

	f := new(MockOrderFeed)
	f.On("Source").Return(task.SourceInternal).Maybe()
	f.On("ReadyOrders", mock.Anything).Return([]feed.Order{order}, nil).Twice()
	f.On("CanceledOrders", mock.Anything).Return(nil, nil).Twice()
	handler := commands.NewSynchronizeCommandHandler(factory, []ports.OrderFeed{f}, discardLogger())

	first, err := handler.Handle(ctx, cmd)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Created)
	require.Len(t, first.Errors, 1)
	assert.ErrorIs(t, first.Errors[0], errs.ErrParse)

	second, err := handler.Handle(ctx, cmd)
	require.NoError(t, err)
	assert.Zero(t, second.Created)
	assert.Empty(t, second.Errors)
	taskRepo.AssertExpectations(t)
}

func TestSynchronizeCommandHandler_Handle_MalformedOrderDoesNotAbortBatch(t *testing.T) {
	ctx := t.Context()
	cmd, _ := commands.NewSynchronizeCommand("")

	broken := feed.Order{
		Reference: "ORD-BAD",
		Recipient: testRecipient,
		Source:    task.SourceInternal,
		Issues:    []error{errs.NewParseError("[Frozen]")},
	}
	good := feed.Order{
		Reference: "ORD-101",
		Recipient: testRecipient,
		Source:    task.SourceInternal,
		Blocks:    []feed.Block{{Category: "Dairy", Items: lineItems(t, "Milk", 1)}},
	}

	taskRepo := new(MockTaskRepository)
	auditRepo := new(MockAuditRepository)
	uow := new(MockUoW)
	factory := new(MockTaskUoWFactory)

	factory.On("Create").Return(uow).Once()
	uow.On("Begin", ctx).Return(nil).Once()
	uow.On("TaskRepository").Return(taskRepo).Once()
	taskRepo.On("AddIfAbsent", ctx, mock.Anything).Return(true, nil).Once()
	uow.On("AuditRepository").Return(auditRepo).Once()
	auditRepo.On("Append", ctx, auditKinds(audit.KindSyncCreated)).Return(nil).Once()
	uow.On("Commit", ctx).Return(nil).Once()
	uow.On("Rollback", ctx).Return(nil).Once()

	f := newInternalFeed([]feed.Order{broken, good}, nil)
	handler := commands.NewSynchronizeCommandHandler(factory, []ports.OrderFeed{f}, discardLogger())

	result, err := handler.Handle(ctx, cmd)

	require.NoError(t, err)
	assert.Equal(t, 1, result.Created)
	require.Len(t, result.Errors, 2)
	assert.ErrorIs(t, result.Errors[0], errs.ErrParse)
	assert.ErrorIs(t, result.Errors[1], errs.ErrValueIsRequired)
	factory.AssertExpectations(t)
}

func TestSynchronizeCommandHandler_Handle_CancellationPrecedence(t *testing.T) {
	ctx := t.Context()
	cmd, _ := commands.NewSynchronizeCommand("")

	driverID := kernel.NewUUID()
	assigned := newAssignedTask(t, driverID)
	completed := newPickedUpTask(t, driverID)
	require.NoError(t, completed.AttachProof("ref"))
	require.NoError(t, completed.Complete(time.Now()))

	taskRepo := new(MockTaskRepository)
	auditRepo := new(MockAuditRepository)
	uow := new(MockUoW)
	factory := new(MockTaskUoWFactory)

	mock.InOrder(
		factory.On("Create").Return(uow).Once(),
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("TaskRepository").Return(taskRepo).Once(),
		taskRepo.On("GetByOrderForUpdate", ctx, "ORD-100").Return([]*task.Task{assigned, completed}, nil).Once(),
		taskRepo.On("Update", ctx, assigned).Return(nil).Once(),
		uow.On("AuditRepository").Return(auditRepo).Once(),
		auditRepo.On("Append", ctx, auditKinds(audit.KindSyncCanceled)).Return(nil).Once(),
		uow.On("Commit", ctx).Return(nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	f := newInternalFeed(nil, []feed.Order{{Reference: "ORD-100", Status: feed.StatusCanceled}})
	handler := commands.NewSynchronizeCommandHandler(factory, []ports.OrderFeed{f}, discardLogger())

	result, err := handler.Handle(ctx, cmd)

	require.NoError(t, err)
	assert.Equal(t, 1, result.Canceled)
	assert.Equal(t, task.Canceled, assigned.Status())
	assert.True(t, assigned.IsBoundTo(driverID))
	assert.Equal(t, task.Completed, completed.Status())
	taskRepo.AssertExpectations(t)
	auditRepo.AssertExpectations(t)
}

func TestSynchronizeCommandHandler_Handle_FeedFailureIsReported(t *testing.T) {
	ctx := t.Context()
	cmd, _ := commands.NewSynchronizeCommand("")

	f := new(MockOrderFeed)
	f.On("Source").Return(task.SourceVendor).Maybe()
	f.On("ReadyOrders", ctx).Return(nil, errors.New("connection refused")).Once()
	f.On("CanceledOrders", ctx).Return(nil, nil).Once()

	handler := commands.NewSynchronizeCommandHandler(new(MockTaskUoWFactory), []ports.OrderFeed{f}, discardLogger())

	result, err := handler.Handle(ctx, cmd)

	require.NoError(t, err)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0].Error(), "connection refused")
}

func TestSynchronizeCommandHandler_Handle_UnknownSource(t *testing.T) {
	cmd, _ := commands.NewSynchronizeCommand(task.SourceVendor)
	f := new(MockOrderFeed)
	f.On("Source").Return(task.SourceInternal)

	handler := commands.NewSynchronizeCommandHandler(new(MockTaskUoWFactory), []ports.OrderFeed{f}, discardLogger())

	_, err := handler.Handle(t.Context(), cmd)

	require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	f.AssertNotCalled(t, "ReadyOrders", mock.Anything)
}

func TestSynchronizeCommandHandler_Handle_ValidationError(t *testing.T) {
	handler := commands.NewSynchronizeCommandHandler(new(MockTaskUoWFactory), nil, discardLogger())

	_, err := handler.Handle(t.Context(), commands.SynchronizeCommand{})

	require.ErrorIs(t, err, commands.ErrSynchronizeCommandIsNotConstructed)
}

func TestNewSynchronizeCommand(t *testing.T) {
	_, err := commands.NewSynchronizeCommand("fax")
	require.Error(t, err)

	cmd, err := commands.NewSynchronizeCommand("")
	require.NoError(t, err)
	require.NoError(t, cmd.Validate())
	assert.Empty(t, cmd.Source())
}
