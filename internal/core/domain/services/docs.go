// Package services provides domain services that work across task values
// and do not belong to a single aggregate.
//
// The package includes:
//   - TaskDecomposer: materializes one Pending task per fulfillment category of an upstream order
//   - WorkQueueOrdering: the stop ordering of a driver's work queue
package services
