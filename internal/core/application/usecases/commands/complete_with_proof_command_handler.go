package commands

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode"

	"dispatch/internal/core/domain/model/audit"
	"dispatch/internal/core/domain/model/task"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"
)

const proofTimestampLayout = "20060102T150405"

// CompleteWithProofCommandHandler uploads the photo first, outside any
// transaction, then attaches it and completes the task under a row lock.
// Without a stored photo the task is never completed.
type CompleteWithProofCommandHandler struct {
	uowFactory     TaskUoWFactory
	storage        ports.ProofStorage
	notifications  Notifications
	storageTimeout time.Duration
}

func NewCompleteWithProofCommandHandler(
	uowFactory TaskUoWFactory,
	storage ports.ProofStorage,
	notifications Notifications,
	storageTimeout time.Duration,
) CompleteWithProofCommandHandler {
	return CompleteWithProofCommandHandler{
		uowFactory:     uowFactory,
		storage:        storage,
		notifications:  notifications,
		storageTimeout: storageTimeout,
	}
}

func (h CompleteWithProofCommandHandler) Handle(
	ctx context.Context,
	command CompleteWithProofCommand,
) (CompleteWithProofResult, error) {
	if err := command.Validate(); err != nil {
		return CompleteWithProofResult{}, err
	}

	// Reject early so no photo is stored for a task that cannot complete.
	current, err := h.uowFactory.Create().TaskRepository().Get(ctx, command.TaskID())
	if err != nil {
		return CompleteWithProofResult{}, err
	}
	if err = h.checkCompletable(current, command); err != nil {
		return CompleteWithProofResult{}, err
	}

	now := time.Now().UTC()
	ref, err := h.store(ctx, ProofName(current.OrderReference(), current.Category(), now), command.Photo())
	if err != nil {
		return CompleteWithProofResult{}, err
	}

	t, err := h.complete(ctx, command, ref, now)
	if err != nil {
		return CompleteWithProofResult{}, err
	}

	h.notifications.NotifyCompletion(ctx, t, ref, command.Actor())

	recipient := t.Recipient()
	return CompleteWithProofResult{
		CustomerName:  recipient.Name,
		CustomerPhone: recipient.Phone,
		PhotoRef:      ref,
	}, nil
}

func (h CompleteWithProofCommandHandler) checkCompletable(t *task.Task, command CompleteWithProofCommand) error {
	if driverID := command.DriverID(); driverID != nil && !t.IsBoundTo(*driverID) {
		return errs.NewObjectNotFoundError("task", command.TaskID())
	}
	return t.Status().ValidateTransition(task.Completed)
}

func (h CompleteWithProofCommandHandler) store(ctx context.Context, name string, photo []byte) (string, error) {
	if h.storageTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.storageTimeout)
		defer cancel()
	}

	ref, err := h.storage.Put(ctx, name, photo)
	if err != nil {
		var unavailable *errs.StorageUnavailableError
		if errors.As(err, &unavailable) {
			return "", err
		}
		return "", errs.NewStorageUnavailableErrorWithCause(name, err)
	}
	return ref, nil
}

func (h CompleteWithProofCommandHandler) complete(
	ctx context.Context,
	command CompleteWithProofCommand,
	ref string,
	now time.Time,
) (*task.Task, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}
	defer func() {
		_ = uow.Rollback(ctx)
	}()

	taskRepo := uow.TaskRepository()
	t, err := taskRepo.GetForUpdate(ctx, command.TaskID())
	if err != nil {
		return nil, err
	}
	if err = h.checkCompletable(t, command); err != nil {
		return nil, err
	}

	from := t.Status()
	if err = errors.Join(t.AttachProof(ref), t.Complete(now)); err != nil {
		return nil, err
	}
	if err = taskRepo.Update(ctx, t); err != nil {
		return nil, err
	}

	entry, err := audit.StatusChange(t, audit.KindCompleted, from, command.Actor(), "proof "+ref, now)
	if err != nil {
		return nil, err
	}
	if err = uow.AuditRepository().Append(ctx, entry); err != nil {
		return nil, err
	}
	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	return t, nil
}

// ProofName is the deterministic photo name for a task completed at the
// given instant: <order>_<category>_<UTC timestamp>.jpg, slugged.
func ProofName(orderReference, category string, at time.Time) string {
	return slug(orderReference) + "_" + slug(category) + "_" + at.UTC().Format(proofTimestampLayout) + ".jpg"
}

func slug(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
		}
	}
	out := strings.TrimSuffix(b.String(), "-")
	if out == "" {
		return "x"
	}
	return out
}
