// Package errs provides the error taxonomy of the dispatch engine.
//
// Every error type follows the same shape:
//   - a sentinel variable (e.g. ErrInvalidTransition) usable with errors.Is
//   - a struct carrying the details of the failure
//   - constructors with and without a cause
//   - Error() for formatting and Unwrap() returning the sentinel
//
// Propagation rules used across the engine:
//   - ParseError and NotificationError are absorbed and logged
//   - DuplicateTaskError is a no-op for synchronization
//   - InvalidTransitionError and ObjectNotFoundError are surfaced to callers
//   - StorageUnavailableError aborts the completion that needed the blob
package errs
