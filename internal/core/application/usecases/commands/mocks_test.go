package commands_test

import (
	"context"
	"testing"
	"time"

	"dispatch/internal/core/application/usecases/commands"
	"dispatch/internal/core/domain/model/audit"
	"dispatch/internal/core/domain/model/driver"
	"dispatch/internal/core/domain/model/feed"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/task"
	"dispatch/internal/core/ports"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockTaskRepository struct{ mock.Mock }

func (m *MockTaskRepository) Add(ctx context.Context, t *task.Task) error {
	return m.Called(ctx, t).Error(0)
}

func (m *MockTaskRepository) AddIfAbsent(ctx context.Context, t *task.Task) (bool, error) {
	args := m.Called(ctx, t)
	return args.Bool(0), args.Error(1)
}

func (m *MockTaskRepository) Update(ctx context.Context, t *task.Task) error {
	return m.Called(ctx, t).Error(0)
}

func (m *MockTaskRepository) Delete(ctx context.Context, id kernel.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockTaskRepository) Get(ctx context.Context, id kernel.UUID) (*task.Task, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*task.Task), args.Error(1)
}

func (m *MockTaskRepository) GetForUpdate(ctx context.Context, id kernel.UUID) (*task.Task, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*task.Task), args.Error(1)
}

func (m *MockTaskRepository) GetManyForUpdate(ctx context.Context, ids []kernel.UUID) ([]*task.Task, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*task.Task), args.Error(1)
}

func (m *MockTaskRepository) GetByOrderForUpdate(ctx context.Context, orderReference string) ([]*task.Task, error) {
	args := m.Called(ctx, orderReference)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*task.Task), args.Error(1)
}

type MockDriverRepository struct{ mock.Mock }

func (m *MockDriverRepository) Add(ctx context.Context, d *driver.Driver) error {
	return m.Called(ctx, d).Error(0)
}

func (m *MockDriverRepository) Get(ctx context.Context, id kernel.UUID) (*driver.Driver, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*driver.Driver), args.Error(1)
}

type MockAuditRepository struct{ mock.Mock }

func (m *MockAuditRepository) Append(ctx context.Context, entries ...*audit.Entry) error {
	return m.Called(ctx, entries).Error(0)
}

// MockUoW satisfies TaskUoW, DispatchUoW and DriverUoW.
type MockUoW struct{ mock.Mock }

func (m *MockUoW) Begin(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockUoW) Commit(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockUoW) Rollback(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockUoW) TaskRepository() ports.TaskRepository {
	return m.Called().Get(0).(ports.TaskRepository)
}

func (m *MockUoW) DriverRepository() ports.DriverRepository {
	return m.Called().Get(0).(ports.DriverRepository)
}

func (m *MockUoW) AuditRepository() ports.AuditRepository {
	return m.Called().Get(0).(ports.AuditRepository)
}

type MockTaskUoWFactory struct{ mock.Mock }

func (m *MockTaskUoWFactory) Create() commands.TaskUoW {
	return m.Called().Get(0).(commands.TaskUoW)
}

type MockDispatchUoWFactory struct{ mock.Mock }

func (m *MockDispatchUoWFactory) Create() commands.DispatchUoW {
	return m.Called().Get(0).(commands.DispatchUoW)
}

func (m *MockDispatchUoWFactory) CreateSerializable() commands.DispatchUoW {
	return m.Called().Get(0).(commands.DispatchUoW)
}

type MockDriverUoWFactory struct{ mock.Mock }

func (m *MockDriverUoWFactory) Create() commands.DriverUoW {
	return m.Called().Get(0).(commands.DriverUoW)
}

type MockNotifications struct{ mock.Mock }

func (m *MockNotifications) NotifyPickup(ctx context.Context, t *task.Task, actor kernel.Actor) {
	m.Called(ctx, t, actor)
}

func (m *MockNotifications) NotifyCompletion(ctx context.Context, t *task.Task, photoURL string, actor kernel.Actor) {
	m.Called(ctx, t, photoURL, actor)
}

type MockOrderFeed struct{ mock.Mock }

func (m *MockOrderFeed) Source() task.Source {
	return m.Called().Get(0).(task.Source)
}

func (m *MockOrderFeed) ReadyOrders(ctx context.Context) ([]feed.Order, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]feed.Order), args.Error(1)
}

func (m *MockOrderFeed) CanceledOrders(ctx context.Context) ([]feed.Order, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]feed.Order), args.Error(1)
}

type MockProofStorage struct{ mock.Mock }

func (m *MockProofStorage) Put(ctx context.Context, name string, data []byte) (string, error) {
	args := m.Called(ctx, name, data)
	return args.String(0), args.Error(1)
}

type MockVendorLedger struct{ mock.Mock }

func (m *MockVendorLedger) Stage(ctx context.Context, order feed.Order) error {
	return m.Called(ctx, order).Error(0)
}

var testRecipient = task.Recipient{Name: "Jane Roe", Phone: "+15550100", Address: "12 Main St"}

func lineItems(t *testing.T, name string, qty int) task.Items {
	t.Helper()
	line, err := task.NewLineItem(name, qty)
	require.NoError(t, err)
	items, err := task.NewItems(line)
	require.NoError(t, err)
	return items
}

func newPendingTask(t *testing.T, category string) *task.Task {
	t.Helper()
	tk, err := task.NewTask(kernel.NewUUID(), "ORD-100", category, task.SourceInternal,
		testRecipient, lineItems(t, "Apples", 2), time.Now())
	require.NoError(t, err)
	return tk
}

func newAssignedTask(t *testing.T, driverID kernel.UUID) *task.Task {
	t.Helper()
	tk := newPendingTask(t, "Produce")
	require.NoError(t, tk.Assign(driverID, "D1"))
	return tk
}

func newPickedUpTask(t *testing.T, driverID kernel.UUID) *task.Task {
	t.Helper()
	tk := newAssignedTask(t, driverID)
	require.NoError(t, tk.PickUp(time.Now()))
	return tk
}

func newDriver(t *testing.T) *driver.Driver {
	t.Helper()
	d, _, err := driver.NewDriver(kernel.NewUUID(), "D1", "+15550199", time.Now())
	require.NoError(t, err)
	return d
}
