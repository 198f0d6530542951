package task

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

var (
	// ErrTaskIsNotConstructed is returned when a Task was not built by NewTask or RestoreTask.
	ErrTaskIsNotConstructed = errors.New("Task must be created via NewTask or RestoreTask")

	// ErrDriverIsRequired is returned when a transition into Assigned has no driver.
	ErrDriverIsRequired = errs.NewValueIsRequiredError("driver")
)

// Task is one category-scoped delivery unit derived from an upstream order.
// It is the aggregate root of the dispatch engine: every status change goes
// through one of its methods, and a rejected change leaves it untouched.
//
// Invariants:
//   - (order reference, category) identifies the task among its siblings
//   - Assigned and PickedUp tasks are bound to a driver
//   - a Completed task carries a proof reference and a completion time
//   - Completed and Canceled are terminal
type Task struct {
	id        kernel.UUID
	orderRef  string
	category  string
	source    Source
	recipient Recipient
	items     Items

	// driverID is nil while the task sits in the unassigned pool.
	driverID   *kernel.UUID
	driverName string

	status      Status
	pickedUpAt  *time.Time
	completedAt *time.Time
	proofRef    string
	createdAt   time.Time

	guard guard.ConstructorGuard
}

// NewTask materializes a Pending task from one category block of an upstream order.
//
// Example:
//
//	recipient, _ := task.NewRecipient("Jane Roe", "+15550100", "12 Main St", "")
//	apples, _ := task.NewLineItem("Apples", 2)
//	items, _ := task.NewItems(apples)
//	t, err := task.NewTask(kernel.NewUUID(), "ORD-100", "Produce", task.SourceInternal, recipient, items, time.Now())
func NewTask(
	id kernel.UUID,
	orderRef string,
	category string,
	source Source,
	recipient Recipient,
	items Items,
	createdAt time.Time,
) (*Task, error) {
	t := &Task{
		status:    Pending,
		createdAt: createdAt.UTC(),
		guard:     guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		t.setID(id),
		t.setOrderRef(orderRef),
		t.setCategory(category),
		t.setSource(source),
		t.setRecipient(recipient),
		t.setItems(items),
	); err != nil {
		return nil, err
	}

	return t, nil
}

// Snapshot is the full persisted state of a Task.
type Snapshot struct {
	ID             kernel.UUID
	OrderReference string
	Category       string
	Source         Source
	Recipient      Recipient
	Items          Items
	DriverID       *kernel.UUID
	DriverName     string
	Status         Status
	PickedUpAt     *time.Time
	CompletedAt    *time.Time
	ProofRef       string
	CreatedAt      time.Time
}

// RestoreTask rebuilds a Task from storage. The snapshot must satisfy the
// same invariants the transition methods maintain.
func RestoreTask(s Snapshot) (*Task, error) {
	t := &Task{
		driverName:  s.DriverName,
		pickedUpAt:  s.PickedUpAt,
		completedAt: s.CompletedAt,
		proofRef:    s.ProofRef,
		createdAt:   s.CreatedAt,
		guard:       guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		t.setID(s.ID),
		t.setOrderRef(s.OrderReference),
		t.setCategory(s.Category),
		t.setSource(s.Source),
		t.setRecipient(s.Recipient),
		t.setItems(s.Items),
		t.setStatus(s.Status),
		t.setDriverID(s.DriverID),
	); err != nil {
		return nil, err
	}

	if (t.status == Assigned || t.status == PickedUp) && t.driverID == nil {
		return nil, errs.NewValueIsInvalidErrorWithCause("driver",
			fmt.Errorf("a %s task must be bound to a driver", t.status))
	}
	if t.status == Completed && (t.proofRef == "" || t.completedAt == nil) {
		return nil, errs.NewValueIsInvalidErrorWithCause("proof", ErrProofIsRequired)
	}

	return t, nil
}

// Snapshot exports the state for persistence.
func (t *Task) Snapshot() Snapshot {
	return Snapshot{
		ID:             t.id,
		OrderReference: t.orderRef,
		Category:       t.category,
		Source:         t.source,
		Recipient:      t.recipient,
		Items:          t.items,
		DriverID:       t.driverID,
		DriverName:     t.driverName,
		Status:         t.status,
		PickedUpAt:     t.pickedUpAt,
		CompletedAt:    t.completedAt,
		ProofRef:       t.proofRef,
		CreatedAt:      t.createdAt,
	}
}

// Validate ensures the task was built by one of its constructors.
func (t *Task) Validate() error {
	if t == nil {
		return ErrTaskIsNotConstructed
	}
	return t.guard.Validate(ErrTaskIsNotConstructed)
}

func (t *Task) ID() kernel.UUID {
	return t.id
}

func (t *Task) OrderReference() string {
	return t.orderRef
}

func (t *Task) Category() string {
	return t.category
}

func (t *Task) Source() Source {
	return t.source
}

func (t *Task) Recipient() Recipient {
	return t.recipient
}

func (t *Task) Items() Items {
	return t.items
}

// ItemSummary is the rendered item list shown to drivers.
func (t *Task) ItemSummary() string {
	return t.items.Render()
}

// DriverID returns nil for an unassigned task.
func (t *Task) DriverID() *kernel.UUID {
	return t.driverID
}

func (t *Task) DriverName() string {
	return t.driverName
}

func (t *Task) Status() Status {
	return t.status
}

func (t *Task) PickedUpAt() *time.Time {
	return t.pickedUpAt
}

func (t *Task) CompletedAt() *time.Time {
	return t.completedAt
}

// ProofRef is the public reference of the completion photo, empty until attached.
func (t *Task) ProofRef() string {
	return t.proofRef
}

func (t *Task) CreatedAt() time.Time {
	return t.createdAt
}

// IsBoundTo reports whether the task is currently assigned to driverID.
func (t *Task) IsBoundTo(driverID kernel.UUID) bool {
	return t.driverID != nil && t.driverID.IsEqual(driverID)
}

// Assign binds the task to a driver. Only Pending and OnHold tasks may be assigned.
func (t *Task) Assign(driverID kernel.UUID, driverName string) error {
	if err := t.status.ValidateTransition(Assigned); err != nil {
		return err
	}
	return t.bind(driverID, driverName)
}

// ForceAssign is the operator override used by bulk assignment: any
// non-terminal task is rebound, whatever its current driver or status.
func (t *Task) ForceAssign(driverID kernel.UUID, driverName string) error {
	if err := t.status.ValidateOverride(Assigned); err != nil {
		return err
	}
	return t.bind(driverID, driverName)
}

// bind resets pickup state on every assignment, single or bulk.
func (t *Task) bind(driverID kernel.UUID, driverName string) error {
	if err := driverID.Validate(); err != nil {
		return err
	}
	driverName = strings.TrimSpace(driverName)
	if driverName == "" {
		return errs.NewValueIsRequiredError("driver name")
	}

	t.driverID = &driverID
	t.driverName = driverName
	t.status = Assigned
	t.pickedUpAt = nil
	t.proofRef = ""
	return nil
}

// CancelAssignment returns the task to the unassigned pool from any
// non-terminal status, clearing the driver and pickup state.
func (t *Task) CancelAssignment() error {
	if err := t.status.ValidateOverride(Pending); err != nil {
		return err
	}

	t.driverID = nil
	t.driverName = ""
	t.status = Pending
	t.pickedUpAt = nil
	t.proofRef = ""
	return nil
}

// Hold pauses a Pending or Assigned task. Timestamps and the driver are kept.
func (t *Task) Hold() error {
	if err := t.status.ValidateTransition(OnHold); err != nil {
		return err
	}
	t.status = OnHold
	return nil
}

// ForceHold is the bulk variant of Hold and accepts any non-terminal task.
func (t *Task) ForceHold() error {
	if err := t.status.ValidateOverride(OnHold); err != nil {
		return err
	}
	t.status = OnHold
	return nil
}

// PickUp records that the assigned driver collected the goods.
func (t *Task) PickUp(now time.Time) error {
	if err := t.status.ValidateTransition(PickedUp); err != nil {
		return err
	}
	pickedUpAt := now.UTC()
	t.pickedUpAt = &pickedUpAt
	t.status = PickedUp
	return nil
}

// AttachProof stores the completion photo reference. The task must be PickedUp.
func (t *Task) AttachProof(ref string) error {
	if t.status != PickedUp {
		return t.status.rejection(Completed, nil)
	}
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return errs.NewValueIsRequiredError("proof reference")
	}
	t.proofRef = ref
	return nil
}

// Complete moves a PickedUp task to Completed. It fails without an attached proof.
func (t *Task) Complete(now time.Time) error {
	if err := t.status.ValidateTransition(Completed); err != nil {
		return err
	}
	if t.proofRef == "" {
		return errs.NewInvalidTransitionErrorWithCause(t.status.String(), Completed.String(), ErrProofIsRequired)
	}
	completedAt := now.UTC()
	t.completedAt = &completedAt
	t.status = Completed
	return nil
}

// Cancel applies an upstream cancellation. The driver is kept for the record.
// It reports false without error for an already canceled task and rejects a
// completed one.
func (t *Task) Cancel() (bool, error) {
	if t.status == Canceled {
		return false, nil
	}
	if err := t.status.ValidateTransition(Canceled); err != nil {
		return false, err
	}
	t.status = Canceled
	return true, nil
}

// Transition moves the task to target through the matching operation.
// Assignment needs a driver and therefore goes through Assign; Pending is
// an assignment cancel. Canceled is only reached through Cancel when the
// upstream order is canceled. Asking for the current status of a
// non-terminal task changes nothing.
func (t *Task) Transition(target Status, now time.Time) error {
	if err := target.Validate(); err != nil {
		return err
	}
	if t.status.IsTerminal() {
		return t.status.rejection(target, nil)
	}
	if target == Canceled {
		return t.status.rejection(target, ErrCancelIsUpstreamOnly)
	}
	if target == t.status {
		return nil
	}

	switch target {
	case Assigned:
		return ErrDriverIsRequired
	case Pending:
		return t.CancelAssignment()
	case OnHold:
		return t.Hold()
	case PickedUp:
		return t.PickUp(now)
	case Completed:
		return t.Complete(now)
	default:
		return t.status.rejection(target, nil)
	}
}

func (t *Task) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	t.id = id
	return nil
}

func (t *Task) setOrderRef(orderRef string) error {
	orderRef = strings.TrimSpace(orderRef)
	if orderRef == "" {
		return errs.NewValueIsRequiredError("order reference")
	}
	t.orderRef = orderRef
	return nil
}

func (t *Task) setCategory(category string) error {
	category = strings.TrimSpace(category)
	if category == "" {
		return errs.NewValueIsRequiredError("category")
	}
	t.category = category
	return nil
}

func (t *Task) setSource(source Source) error {
	if err := source.Validate(); err != nil {
		return err
	}
	t.source = source
	return nil
}

func (t *Task) setRecipient(recipient Recipient) error {
	if err := recipient.Validate(); err != nil {
		return err
	}
	t.recipient = recipient
	return nil
}

func (t *Task) setItems(items Items) error {
	if len(items) == 0 {
		return errs.NewValueIsRequiredError("items")
	}
	t.items = items
	return nil
}

func (t *Task) setStatus(status Status) error {
	if err := status.Validate(); err != nil {
		return err
	}
	t.status = status
	return nil
}

func (t *Task) setDriverID(driverID *kernel.UUID) error {
	if driverID == nil {
		return nil
	}
	if err := driverID.Validate(); err != nil {
		return err
	}
	id := *driverID
	t.driverID = &id
	return nil
}
