package commands

import (
	"context"
	"time"

	"dispatch/internal/core/domain/model/driver"
	"dispatch/internal/core/domain/model/kernel"
)

// CreateDriverResult holds the new driver and the only copy of its token.
type CreateDriverResult struct {
	Driver      *driver.Driver
	AccessToken driver.AccessToken
}

type CreateDriverCommandHandler struct {
	uowFactory DriverUoWFactory
}

func NewCreateDriverCommandHandler(uowFactory DriverUoWFactory) CreateDriverCommandHandler {
	return CreateDriverCommandHandler{uowFactory: uowFactory}
}

func (h CreateDriverCommandHandler) Handle(ctx context.Context, command CreateDriverCommand) (CreateDriverResult, error) {
	if err := command.Validate(); err != nil {
		return CreateDriverResult{}, err
	}

	d, token, err := driver.NewDriver(kernel.NewUUID(), command.Name(), command.Phone(), time.Now())
	if err != nil {
		return CreateDriverResult{}, err
	}

	uow := h.uowFactory.Create()
	if err = uow.Begin(ctx); err != nil {
		return CreateDriverResult{}, err
	}
	defer func() {
		_ = uow.Rollback(ctx)
	}()

	if err = uow.DriverRepository().Add(ctx, d); err != nil {
		return CreateDriverResult{}, err
	}
	if err = uow.Commit(ctx); err != nil {
		return CreateDriverResult{}, err
	}

	return CreateDriverResult{Driver: d, AccessToken: token}, nil
}
