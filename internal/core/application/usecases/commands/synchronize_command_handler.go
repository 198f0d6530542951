package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"dispatch/internal/core/domain/model/audit"
	"dispatch/internal/core/domain/model/feed"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/task"
	"dispatch/internal/core/domain/services"
	"dispatch/internal/core/ports"
	"dispatch/internal/pkg/errs"
)

// SynchronizeCommandHandler is the sync engine. It materializes one task per
// (order, category) and propagates upstream cancellations.
//
// Re-running it is a no-op for tasks that already exist: inserts rely on the
// store's unique key, so overlapping runs converge. Each order is handled in
// its own transaction and a failing order is recorded and skipped.
type SynchronizeCommandHandler struct {
	uowFactory TaskUoWFactory
	feeds      []ports.OrderFeed
	decomposer services.TaskDecomposer
	logger     *slog.Logger
}

func NewSynchronizeCommandHandler(
	uowFactory TaskUoWFactory,
	feeds []ports.OrderFeed,
	logger *slog.Logger,
) SynchronizeCommandHandler {
	return SynchronizeCommandHandler{
		uowFactory: uowFactory,
		feeds:      feeds,
		decomposer: services.NewTaskDecomposer(),
		logger:     logger.With("component", "sync"),
	}
}

func (h SynchronizeCommandHandler) Handle(ctx context.Context, command SynchronizeCommand) (SynchronizeResult, error) {
	if err := command.Validate(); err != nil {
		return SynchronizeResult{}, err
	}

	var (
		result SynchronizeResult
		ran    bool
	)
	for _, f := range h.feeds {
		if command.Source() != "" && f.Source() != command.Source() {
			continue
		}
		ran = true
		result.merge(h.syncFeed(ctx, f))
	}

	if !ran {
		return SynchronizeResult{}, errs.NewValueIsInvalidErrorWithCause(
			"source", fmt.Errorf("no order feed configured for %q", command.Source()))
	}

	return result, nil
}

func (h SynchronizeCommandHandler) syncFeed(ctx context.Context, f ports.OrderFeed) SynchronizeResult {
	var result SynchronizeResult
	source := f.Source()

	ready, err := f.ReadyOrders(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to read ready orders", "source", source, "error", err)
		result.Errors = append(result.Errors, fmt.Errorf("%s ready orders: %w", source, err))
	}
	for _, order := range ready {
		created, err := h.materialize(ctx, order)
		if err != nil {
			result.Errors = append(result.Errors, h.parseIssues(ctx, order)...)
			h.logger.ErrorContext(ctx, "failed to materialize order",
				"source", source, "order_reference", order.Reference, "error", err)
			result.Errors = append(result.Errors, fmt.Errorf("order %s: %w", order.Reference, err))
			continue
		}
		result.Created += created

		// An order stays ready upstream after its tasks exist, so its parse
		// issues are reported only by the run that materializes it.
		if created > 0 {
			result.Errors = append(result.Errors, h.parseIssues(ctx, order)...)
		}
	}

	canceled, err := f.CanceledOrders(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to read canceled orders", "source", source, "error", err)
		result.Errors = append(result.Errors, fmt.Errorf("%s canceled orders: %w", source, err))
	}
	for _, order := range canceled {
		n, err := h.propagateCancel(ctx, order)
		if err != nil {
			h.logger.ErrorContext(ctx, "failed to cancel order tasks",
				"source", source, "order_reference", order.Reference, "error", err)
			result.Errors = append(result.Errors, fmt.Errorf("order %s: %w", order.Reference, err))
			continue
		}
		result.Canceled += n
	}

	h.logger.InfoContext(ctx, "sync finished", "source", source,
		"created", result.Created, "canceled", result.Canceled, "errors", len(result.Errors))
	return result
}

func (h SynchronizeCommandHandler) parseIssues(ctx context.Context, order feed.Order) []error {
	issues := make([]error, 0, len(order.Issues))
	for _, issue := range order.Issues {
		h.logger.WarnContext(ctx, "skipped item summary fragment",
			"source", order.Source, "order_reference", order.Reference, "error", issue)
		issues = append(issues, fmt.Errorf("order %s: %w", order.Reference, issue))
	}
	return issues
}

func (h SynchronizeCommandHandler) materialize(ctx context.Context, order feed.Order) (int, error) {
	now := time.Now()
	tasks, err := h.decomposer.Decompose(order, now)
	if err != nil {
		return 0, err
	}

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return 0, err
	}
	defer func() {
		_ = uow.Rollback(ctx)
	}()

	taskRepo := uow.TaskRepository()
	var entries []*audit.Entry
	for _, t := range tasks {
		created, err := taskRepo.AddIfAbsent(ctx, t)
		if errors.Is(err, errs.ErrDuplicateTask) {
			continue
		}
		if err != nil {
			return 0, err
		}
		if !created {
			continue
		}

		entry, err := audit.StatusChange(t, audit.KindSyncCreated, task.Unknown, kernel.ActorSync,
			"materialized from "+t.Source().String()+" order", now)
		if err != nil {
			return 0, err
		}
		entries = append(entries, entry)
	}

	if len(entries) > 0 {
		if err = uow.AuditRepository().Append(ctx, entries...); err != nil {
			return 0, err
		}
	}

	if err = uow.Commit(ctx); err != nil {
		return 0, err
	}

	return len(entries), nil
}

// propagateCancel forces every non-terminal task of the order to Canceled.
// Completed tasks are left as they are.
func (h SynchronizeCommandHandler) propagateCancel(ctx context.Context, order feed.Order) (int, error) {
	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, err
	}
	defer func() {
		_ = uow.Rollback(ctx)
	}()

	taskRepo := uow.TaskRepository()
	tasks, err := taskRepo.GetByOrderForUpdate(ctx, order.Reference)
	if err != nil {
		return 0, err
	}

	now := time.Now()
	var entries []*audit.Entry
	for _, t := range tasks {
		if t.Status() == task.Completed {
			continue
		}

		from := t.Status()
		driverName := t.DriverName()
		changed, err := t.Cancel()
		if err != nil {
			return 0, err
		}
		if !changed {
			continue
		}
		if err = taskRepo.Update(ctx, t); err != nil {
			return 0, err
		}

		note := "canceled upstream"
		if driverName != "" {
			note += ", was with driver " + driverName
		}
		entry, err := audit.StatusChange(t, audit.KindSyncCanceled, from, kernel.ActorSync, note, now)
		if err != nil {
			return 0, err
		}
		entries = append(entries, entry)
	}

	if len(entries) == 0 {
		return 0, nil
	}
	if err = uow.AuditRepository().Append(ctx, entries...); err != nil {
		return 0, err
	}
	if err = uow.Commit(ctx); err != nil {
		return 0, err
	}

	return len(entries), nil
}
