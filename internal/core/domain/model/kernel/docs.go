// Package kernel holds the primitives shared by every dispatch aggregate:
// the UUID value object used for task, driver and audit identities, and the
// Actor recorded with each state change.
package kernel
