package services

import (
	"cmp"
	"slices"
)

// WorkQueueOrdering sorts a driver's stops so that deliveries to the same
// address sit together, bulkier loads first. The order within equal
// address and quantity is by key and carries no meaning.
type WorkQueueOrdering[T any] struct {
	Address  func(T) string
	Quantity func(T) int
	Key      func(T) string
}

// Sort orders items in place: address descending, then quantity descending, then key.
func (o WorkQueueOrdering[T]) Sort(items []T) {
	slices.SortStableFunc(items, func(a, b T) int {
		if c := cmp.Compare(o.Address(b), o.Address(a)); c != 0 {
			return c
		}
		if c := cmp.Compare(o.Quantity(b), o.Quantity(a)); c != 0 {
			return c
		}
		return cmp.Compare(o.Key(a), o.Key(b))
	})
}
