package commands_test

import (
	"testing"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/domain/model/audit"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/task"
	"dispatch/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestCancelAssignmentCommandHandler_Handle_Success(t *testing.T) {
	ctx := t.Context()
	tk := newPickedUpTask(t, kernel.NewUUID())
	cmd, err := commands.NewCancelAssignmentCommand(tk.ID(), kernel.ActorAdmin, "driver is sick")
	require.NoError(t, err)

	taskRepo := new(MockTaskRepository)
	auditRepo := new(MockAuditRepository)
	uow := new(MockUoW)
	factory := new(MockTaskUoWFactory)

	var note string
	mock.InOrder(
		factory.On("Create").Return(uow).Once(),
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("TaskRepository").Return(taskRepo).Once(),
		taskRepo.On("GetForUpdate", ctx, tk.ID()).Return(tk, nil).Once(),
		taskRepo.On("Update", ctx, tk).Return(nil).Once(),
		uow.On("AuditRepository").Return(auditRepo).Once(),
		auditRepo.On("Append", ctx, auditKinds(audit.KindAssignmentCanceled)).
			Run(func(args mock.Arguments) {
				note = args.Get(1).([]*audit.Entry)[0].Record().Note
			}).Return(nil).Once(),
		uow.On("Commit", ctx).Return(nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	err = commands.NewCancelAssignmentCommandHandler(factory).Handle(ctx, cmd)

	require.NoError(t, err)
	assert.Equal(t, task.Pending, tk.Status())
	assert.Nil(t, tk.DriverID())
	assert.Nil(t, tk.PickedUpAt())
	assert.Equal(t, "released from D1; driver is sick", note)
	uow.AssertExpectations(t)
}

func TestCancelAssignmentCommandHandler_Handle_NotFound(t *testing.T) {
	ctx := t.Context()
	id := kernel.NewUUID()
	cmd, _ := commands.NewCancelAssignmentCommand(id, kernel.ActorAdmin, "")

	taskRepo := new(MockTaskRepository)
	uow := new(MockUoW)
	factory := new(MockTaskUoWFactory)

	factory.On("Create").Return(uow).Once()
	uow.On("Begin", ctx).Return(nil).Once()
	uow.On("TaskRepository").Return(taskRepo).Once()
	taskRepo.On("GetForUpdate", ctx, id).Return(nil, errs.NewObjectNotFoundError("task", id)).Once()
	uow.On("Rollback", ctx).Return(nil).Once()

	err := commands.NewCancelAssignmentCommandHandler(factory).Handle(ctx, cmd)

	require.ErrorIs(t, err, errs.ErrObjectNotFound)
}

func TestCancelAssignmentCommandHandler_Handle_ValidationError(t *testing.T) {
	factory := new(MockTaskUoWFactory)

	err := commands.NewCancelAssignmentCommandHandler(factory).Handle(t.Context(), commands.CancelAssignmentCommand{})

	require.ErrorIs(t, err, commands.ErrCancelAssignmentCommandIsNotConstructed)
	factory.AssertNotCalled(t, "Create")
}
