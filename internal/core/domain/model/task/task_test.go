package task_test

import (
	"testing"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/task"
	"dispatch/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC)

func newTask(t *testing.T) *task.Task {
	t.Helper()
	recipient, err := task.NewRecipient("Jane Roe", "+15550100", "12 Main St", "ring twice")
	require.NoError(t, err)
	apples, _ := task.NewLineItem("Apples", 2)
	bananas, _ := task.NewLineItem("Bananas", 3)
	items, err := task.NewItems(apples, bananas)
	require.NoError(t, err)

	tk, err := task.NewTask(kernel.NewUUID(), "ORD-100", "Produce", task.SourceInternal, recipient, items, now)
	require.NoError(t, err)
	return tk
}

func pickedUpTask(t *testing.T) (*task.Task, kernel.UUID) {
	t.Helper()
	tk := newTask(t)
	driverID := kernel.NewUUID()
	require.NoError(t, tk.Assign(driverID, "D1"))
	require.NoError(t, tk.PickUp(now))
	return tk, driverID
}

func completedTask(t *testing.T) *task.Task {
	t.Helper()
	tk, _ := pickedUpTask(t)
	require.NoError(t, tk.AttachProof("https://cdn.example/ord-100.jpg"))
	require.NoError(t, tk.Complete(now.Add(time.Hour)))
	return tk
}

func TestNewTask(t *testing.T) {
	t.Run("should start pending and unassigned", func(t *testing.T) {
		tk := newTask(t)

		require.NoError(t, tk.Validate())
		assert.Equal(t, task.Pending, tk.Status())
		assert.Equal(t, "ORD-100", tk.OrderReference())
		assert.Equal(t, "Produce", tk.Category())
		assert.Equal(t, "Apples(2), Bananas(3)", tk.ItemSummary())
		assert.Nil(t, tk.DriverID())
		assert.Nil(t, tk.PickedUpAt())
		assert.Nil(t, tk.CompletedAt())
		assert.Empty(t, tk.ProofRef())
	})

	t.Run("should join every validation error", func(t *testing.T) {
		tk, err := task.NewTask(kernel.UUID{}, " ", "", task.Source("x"), task.Recipient{}, nil, now)

		require.Error(t, err)
		assert.Nil(t, tk)
		assert.Contains(t, err.Error(), "UUID must be created")
		assert.Contains(t, err.Error(), "order reference")
		assert.Contains(t, err.Error(), "category")
		assert.Contains(t, err.Error(), "source")
		assert.Contains(t, err.Error(), "customer name")
		assert.Contains(t, err.Error(), "items")
	})

	t.Run("zero value is not constructed", func(t *testing.T) {
		var tk task.Task
		assert.ErrorIs(t, tk.Validate(), task.ErrTaskIsNotConstructed)
	})
}

func TestRestoreTask(t *testing.T) {
	t.Run("should round trip a completed task", func(t *testing.T) {
		original := completedTask(t)

		restored, err := task.RestoreTask(original.Snapshot())

		require.NoError(t, err)
		assert.Equal(t, original.Snapshot(), restored.Snapshot())
	})

	t.Run("should reject an assigned snapshot without driver", func(t *testing.T) {
		s := newTask(t).Snapshot()
		s.Status = task.Assigned

		_, err := task.RestoreTask(s)

		assert.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})

	t.Run("should reject a completed snapshot without proof", func(t *testing.T) {
		s := completedTask(t).Snapshot()
		s.ProofRef = ""

		_, err := task.RestoreTask(s)

		require.Error(t, err)
		assert.Contains(t, err.Error(), "proof")
	})
}

func TestTask_Assign(t *testing.T) {
	t.Run("should bind a pending task", func(t *testing.T) {
		tk := newTask(t)
		driverID := kernel.NewUUID()

		require.NoError(t, tk.Assign(driverID, "D1"))

		assert.Equal(t, task.Assigned, tk.Status())
		assert.True(t, tk.IsBoundTo(driverID))
		assert.Equal(t, "D1", tk.DriverName())
	})

	t.Run("should bind a held task", func(t *testing.T) {
		tk := newTask(t)
		require.NoError(t, tk.Hold())

		require.NoError(t, tk.Assign(kernel.NewUUID(), "D1"))
		assert.Equal(t, task.Assigned, tk.Status())
	})

	t.Run("should refuse an already assigned task", func(t *testing.T) {
		tk := newTask(t)
		require.NoError(t, tk.Assign(kernel.NewUUID(), "D1"))

		err := tk.Assign(kernel.NewUUID(), "D2")

		assert.ErrorIs(t, err, errs.ErrInvalidTransition)
		assert.Equal(t, "D1", tk.DriverName())
	})

	t.Run("should require a driver name", func(t *testing.T) {
		tk := newTask(t)

		err := tk.Assign(kernel.NewUUID(), " ")

		assert.ErrorIs(t, err, errs.ErrValueIsRequired)
		assert.Equal(t, task.Pending, tk.Status())
	})

	t.Run("should leave a completed task unchanged", func(t *testing.T) {
		tk := completedTask(t)
		before := tk.Snapshot()

		err := tk.Assign(kernel.NewUUID(), "D2")

		assert.ErrorIs(t, err, errs.ErrInvalidTransition)
		assert.Equal(t, before, tk.Snapshot())
	})
}

func TestTask_ForceAssign(t *testing.T) {
	t.Run("should rebind a picked up task and reset pickup", func(t *testing.T) {
		tk, _ := pickedUpTask(t)
		require.NoError(t, tk.AttachProof("ref"))
		other := kernel.NewUUID()

		require.NoError(t, tk.ForceAssign(other, "D2"))

		assert.Equal(t, task.Assigned, tk.Status())
		assert.True(t, tk.IsBoundTo(other))
		assert.Nil(t, tk.PickedUpAt())
		assert.Empty(t, tk.ProofRef())
	})

	t.Run("should refuse terminal tasks", func(t *testing.T) {
		tk := completedTask(t)
		assert.ErrorIs(t, tk.ForceAssign(kernel.NewUUID(), "D2"), errs.ErrInvalidTransition)

		canceled := newTask(t)
		_, err := canceled.Cancel()
		require.NoError(t, err)
		assert.ErrorIs(t, canceled.ForceAssign(kernel.NewUUID(), "D2"), errs.ErrInvalidTransition)
	})
}

func TestTask_CancelAssignment(t *testing.T) {
	t.Run("should clear driver and pickup", func(t *testing.T) {
		tk, _ := pickedUpTask(t)

		require.NoError(t, tk.CancelAssignment())

		assert.Equal(t, task.Pending, tk.Status())
		assert.Nil(t, tk.DriverID())
		assert.Empty(t, tk.DriverName())
		assert.Nil(t, tk.PickedUpAt())
	})

	t.Run("should release a held task", func(t *testing.T) {
		tk := newTask(t)
		require.NoError(t, tk.Assign(kernel.NewUUID(), "D1"))
		require.NoError(t, tk.Hold())

		require.NoError(t, tk.CancelAssignment())
		assert.Equal(t, task.Pending, tk.Status())
	})

	t.Run("should refuse a completed task", func(t *testing.T) {
		tk := completedTask(t)
		assert.ErrorIs(t, tk.CancelAssignment(), errs.ErrInvalidTransition)
	})
}

func TestTask_Hold(t *testing.T) {
	t.Run("should keep driver when holding an assigned task", func(t *testing.T) {
		tk := newTask(t)
		driverID := kernel.NewUUID()
		require.NoError(t, tk.Assign(driverID, "D1"))

		require.NoError(t, tk.Hold())

		assert.Equal(t, task.OnHold, tk.Status())
		assert.True(t, tk.IsBoundTo(driverID))
	})

	t.Run("single hold refuses a picked up task but force hold accepts it", func(t *testing.T) {
		tk, _ := pickedUpTask(t)

		assert.ErrorIs(t, tk.Hold(), errs.ErrInvalidTransition)
		require.NoError(t, tk.ForceHold())
		assert.Equal(t, task.OnHold, tk.Status())
	})
}

func TestTask_Completion(t *testing.T) {
	t.Run("should require proof", func(t *testing.T) {
		tk, _ := pickedUpTask(t)

		err := tk.Complete(now)

		require.Error(t, err)
		assert.ErrorIs(t, err, errs.ErrInvalidTransition)
		assert.Contains(t, err.Error(), task.ErrProofIsRequired.Error())
		assert.Equal(t, task.PickedUp, tk.Status())
	})

	t.Run("should refuse proof unless picked up", func(t *testing.T) {
		tk := newTask(t)
		require.NoError(t, tk.Assign(kernel.NewUUID(), "D1"))

		assert.ErrorIs(t, tk.AttachProof("ref"), errs.ErrInvalidTransition)
		assert.Empty(t, tk.ProofRef())
	})

	t.Run("should complete with proof", func(t *testing.T) {
		tk := completedTask(t)

		assert.Equal(t, task.Completed, tk.Status())
		require.NotNil(t, tk.CompletedAt())
		assert.Equal(t, now.Add(time.Hour), *tk.CompletedAt())
		assert.Equal(t, "https://cdn.example/ord-100.jpg", tk.ProofRef())
	})
}

func TestTask_Cancel(t *testing.T) {
	t.Run("should override an assignment and keep the driver for the record", func(t *testing.T) {
		tk := newTask(t)
		driverID := kernel.NewUUID()
		require.NoError(t, tk.Assign(driverID, "D1"))

		changed, err := tk.Cancel()

		require.NoError(t, err)
		assert.True(t, changed)
		assert.Equal(t, task.Canceled, tk.Status())
		assert.True(t, tk.IsBoundTo(driverID))
	})

	t.Run("should be idempotent", func(t *testing.T) {
		tk := newTask(t)
		_, _ = tk.Cancel()

		changed, err := tk.Cancel()

		require.NoError(t, err)
		assert.False(t, changed)
	})

	t.Run("should leave a completed task untouched", func(t *testing.T) {
		tk := completedTask(t)

		changed, err := tk.Cancel()

		assert.False(t, changed)
		assert.ErrorIs(t, err, errs.ErrInvalidTransition)
		assert.Equal(t, task.Completed, tk.Status())
	})
}

func TestTask_Transition(t *testing.T) {
	t.Run("should walk the happy path", func(t *testing.T) {
		tk := newTask(t)
		require.NoError(t, tk.Assign(kernel.NewUUID(), "D1"))

		require.NoError(t, tk.Transition(task.PickedUp, now))
		require.NoError(t, tk.AttachProof("ref"))
		require.NoError(t, tk.Transition(task.Completed, now))

		assert.Equal(t, task.Completed, tk.Status())
	})

	t.Run("should require a driver for assigned", func(t *testing.T) {
		tk := newTask(t)

		assert.ErrorIs(t, tk.Transition(task.Assigned, now), errs.ErrValueIsRequired)
	})

	t.Run("pending is an assignment cancel", func(t *testing.T) {
		tk := newTask(t)
		require.NoError(t, tk.Assign(kernel.NewUUID(), "D1"))

		require.NoError(t, tk.Transition(task.Pending, now))

		assert.Equal(t, task.Pending, tk.Status())
		assert.Nil(t, tk.DriverID())
	})

	t.Run("should reject every transition out of completed", func(t *testing.T) {
		for _, target := range task.Statuses() {
			tk := completedTask(t)
			before := tk.Snapshot()

			err := tk.Transition(target, now)

			assert.ErrorIs(t, err, errs.ErrInvalidTransition, target.String())
			assert.Equal(t, before, tk.Snapshot())
		}
	})

	t.Run("should reject cancel requests", func(t *testing.T) {
		tk := newTask(t)
		require.NoError(t, tk.Assign(kernel.NewUUID(), "D1"))
		before := tk.Snapshot()

		err := tk.Transition(task.Canceled, now)

		var transitionErr *errs.InvalidTransitionError
		require.ErrorAs(t, err, &transitionErr)
		assert.ErrorIs(t, transitionErr.Cause, task.ErrCancelIsUpstreamOnly)
		assert.Equal(t, before, tk.Snapshot())
	})

	t.Run("should reject every transition out of canceled", func(t *testing.T) {
		for _, target := range task.Statuses() {
			tk := newTask(t)
			_, err := tk.Cancel()
			require.NoError(t, err)

			assert.ErrorIs(t, tk.Transition(target, now), errs.ErrInvalidTransition, target.String())
			assert.Equal(t, task.Canceled, tk.Status())
		}
	})

	t.Run("same status is a no-op", func(t *testing.T) {
		pending := newTask(t)

		assigned := newTask(t)
		require.NoError(t, assigned.Assign(kernel.NewUUID(), "D1"))

		onHold := newTask(t)
		require.NoError(t, onHold.Hold())

		pickedUp := newTask(t)
		require.NoError(t, pickedUp.Assign(kernel.NewUUID(), "D1"))
		require.NoError(t, pickedUp.PickUp(now))

		for _, tk := range []*task.Task{pending, assigned, onHold, pickedUp} {
			before := tk.Snapshot()

			require.NoError(t, tk.Transition(tk.Status(), now.Add(time.Hour)), tk.Status().String())
			assert.Equal(t, before, tk.Snapshot())
		}
	})

	t.Run("should reject unknown targets", func(t *testing.T) {
		tk := newTask(t)

		assert.ErrorIs(t, tk.Transition(task.Unknown, now), errs.ErrValueIsInvalid)
	})
}
