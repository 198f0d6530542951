package commands

import (
	"errors"
	"strings"

	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"
)

var ErrCreateDriverCommandIsNotConstructed = errors.New(
	"CreateDriverCommand must be created via NewCreateDriverCommand constructor",
)

// CreateDriverCommand registers a driver and issues its access token.
type CreateDriverCommand struct {
	name  string
	phone string

	guard guard.ConstructorGuard
}

func NewCreateDriverCommand(name, phone string) (CreateDriverCommand, error) {
	name, phone = strings.TrimSpace(name), strings.TrimSpace(phone)

	var errList []error
	if name == "" {
		errList = append(errList, errs.NewValueIsRequiredError("name"))
	}
	if phone == "" {
		errList = append(errList, errs.NewValueIsRequiredError("phone"))
	}
	if err := errors.Join(errList...); err != nil {
		return CreateDriverCommand{}, err
	}

	return CreateDriverCommand{name: name, phone: phone, guard: guard.NewConstructorGuard()}, nil
}

func (c CreateDriverCommand) Validate() error {
	return c.guard.Validate(ErrCreateDriverCommandIsNotConstructed)
}

func (c CreateDriverCommand) Name() string {
	return c.name
}

func (c CreateDriverCommand) Phone() string {
	return c.phone
}
