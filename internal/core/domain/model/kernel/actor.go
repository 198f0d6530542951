package kernel

import (
	"fmt"

	"dispatch/internal/pkg/errs"
)

// Actor names who asked for a change. It is written to every audit entry.
type Actor string

const (
	ActorAdmin  Actor = "admin"
	ActorDriver Actor = "driver"
	ActorSync   Actor = "sync"
	ActorSystem Actor = "system"
)

func (a Actor) Validate() error {
	switch a {
	case ActorAdmin, ActorDriver, ActorSync, ActorSystem:
		return nil
	default:
		return errs.NewValueIsInvalidErrorWithCause("actor", fmt.Errorf("%q is not a known actor", string(a)))
	}
}

func (a Actor) String() string {
	return string(a)
}
