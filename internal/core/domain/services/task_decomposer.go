package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"dispatch/internal/core/domain/model/feed"
	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/task"
	"dispatch/internal/pkg/errs"
)

// ErrOrderHasNoBlocks is returned for a ready order whose item summary yielded no category block.
var ErrOrderHasNoBlocks = errors.New("order has no category blocks")

// TaskDecomposer turns one upstream order into its per-category tasks.
//
// Business rules:
//   - one task per distinct fulfillment category
//   - blocks repeating a category are merged, keeping line order
//   - every task starts Pending and carries the order's recipient and source
//
// Example usage:
//
//	tasks, err := services.NewTaskDecomposer().Decompose(order, time.Now())
type TaskDecomposer struct{}

func NewTaskDecomposer() TaskDecomposer {
	return TaskDecomposer{}
}

// Decompose builds the tasks for order. It fails as a whole when the order
// itself is unusable; the caller records the error and moves on.
func (d TaskDecomposer) Decompose(order feed.Order, now time.Time) ([]*task.Task, error) {
	if len(order.Blocks) == 0 {
		return nil, errs.NewValueIsRequiredErrorWithCause("blocks", fmt.Errorf("%w: %s", ErrOrderHasNoBlocks, order.Reference))
	}

	var (
		categories []string
		merged     = make(map[string]task.Items, len(order.Blocks))
	)
	for _, block := range order.Blocks {
		category := strings.TrimSpace(block.Category)
		if _, seen := merged[category]; !seen {
			categories = append(categories, category)
		}
		merged[category] = append(merged[category], block.Items...)
	}

	tasks := make([]*task.Task, 0, len(categories))
	for _, category := range categories {
		t, err := task.NewTask(
			kernel.NewUUID(),
			order.Reference,
			category,
			order.Source,
			order.Recipient,
			merged[category],
			now,
		)
		if err != nil {
			return nil, fmt.Errorf("order %s, category %q: %w", order.Reference, category, err)
		}
		tasks = append(tasks, t)
	}

	return tasks, nil
}
