// Package task holds the Task aggregate: one delivery unit per
// (order reference, fulfillment category) pair.
//
// The package includes:
//   - Task: the aggregate root, mutated only through its transition methods
//   - Status: a closed enumeration with an explicit single-step transition table
//   - LineItem and Items: the structured product list of a category block
//   - Recipient and Source: customer data and intake path copied from the upstream order
//
// Key business rules:
//   - Completed and Canceled are terminal; any change out of them is an InvalidTransitionError
//   - completion requires an attached proof reference
//   - every assignment clears pickup state and proof
//   - bulk overrides (ForceAssign, ForceHold) accept any non-terminal task
package task
