package task

import (
	"errors"
	"fmt"

	"dispatch/internal/pkg/errs"
)

var (
	// ErrTaskIsImmutable is the cause of every rejected transition out of Completed.
	ErrTaskIsImmutable = errors.New("task is immutable once completed")

	// ErrTaskIsCanceled is the cause of every rejected transition out of Canceled.
	ErrTaskIsCanceled = errors.New("task is canceled")

	// ErrCancelIsUpstreamOnly is the cause when a cancel is requested outside the sync.
	ErrCancelIsUpstreamOnly = errors.New("tasks are canceled only by their upstream order")

	// ErrProofIsRequired is the cause when completion is attempted without a photo reference.
	ErrProofIsRequired = errors.New("completion proof is required")
)

// Status is the fulfillment state of a delivery task.
//
// State transitions (single step):
//
//	pending   ──► assigned ──► picked_up ──► completed (proof required)
//	pending, assigned ──► on_hold ──► assigned
//	assigned, picked_up, on_hold ──► pending     (assignment cancel)
//	any non-terminal ──► canceled              (upstream cancel only)
//
// Completed and Canceled are terminal.
type Status int

const (
	// Unknown is the zero value and never valid.
	Unknown Status = iota
	Pending
	Assigned
	PickedUp
	Completed
	OnHold
	Canceled
)

var statusNames = map[Status]string{
	Unknown:   "unknown",
	Pending:   "pending",
	Assigned:  "assigned",
	PickedUp:  "picked_up",
	Completed: "completed",
	OnHold:    "on_hold",
	Canceled:  "canceled",
}

// transitions lists the statuses reachable in one step through the
// single-task operations. Bulk overrides bypass it for non-terminal tasks.
var transitions = map[Status][]Status{
	Pending:   {Assigned, OnHold, Canceled},
	Assigned:  {PickedUp, OnHold, Pending, Canceled},
	PickedUp:  {Completed, Pending, Canceled},
	OnHold:    {Assigned, Pending, Canceled},
	Completed: nil,
	Canceled:  nil,
}

// ParseStatus maps the persisted name back to a Status.
func ParseStatus(s string) (Status, error) {
	for status, name := range statusNames {
		if status != Unknown && name == s {
			return status, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%q is not a valid status", s))
}

// Statuses returns every valid status in lifecycle order.
func Statuses() []Status {
	return []Status{Pending, Assigned, PickedUp, Completed, OnHold, Canceled}
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return statusNames[Unknown]
}

// Validate fails for Unknown and for values outside the enumeration.
func (s Status) Validate() error {
	if _, ok := transitions[s]; !ok {
		return errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

// IsTerminal reports whether no transition may leave s.
func (s Status) IsTerminal() bool {
	return s == Completed || s == Canceled
}

// CanTransitionTo reports whether target is reachable from s in one step.
func (s Status) CanTransitionTo(target Status) bool {
	for _, next := range transitions[s] {
		if next == target {
			return true
		}
	}
	return false
}

// ValidateTransition returns an InvalidTransitionError when target is not
// reachable from s. Transitions out of a terminal status carry the terminal
// cause so callers can tell immutability apart from an ordering mistake.
func (s Status) ValidateTransition(target Status) error {
	if s.CanTransitionTo(target) {
		return nil
	}
	return s.rejection(target, nil)
}

// ValidateOverride is the bulk variant: any non-terminal task may be forced.
func (s Status) ValidateOverride(target Status) error {
	if err := s.Validate(); err != nil {
		return err
	}
	if s.IsTerminal() {
		return s.rejection(target, nil)
	}
	return nil
}

func (s Status) rejection(target Status, cause error) error {
	switch {
	case s == Completed:
		cause = ErrTaskIsImmutable
	case s == Canceled:
		cause = ErrTaskIsCanceled
	}
	return errs.NewInvalidTransitionErrorWithCause(s.String(), target.String(), cause)
}
