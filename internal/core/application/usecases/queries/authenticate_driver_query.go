package queries

import (
	"errors"
	"strings"

	"dispatch/internal/core/domain/model/driver"
	"dispatch/internal/pkg/guard"
)

var ErrAuthenticateDriverQueryIsNotConstructed = errors.New(
	"AuthenticateDriverQuery must be created via NewAuthenticateDriverQuery constructor",
)

// AuthenticateDriverQuery resolves a bearer access token to its driver.
type AuthenticateDriverQuery struct {
	token string
	guard guard.ConstructorGuard
}

func NewAuthenticateDriverQuery(token string) (AuthenticateDriverQuery, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return AuthenticateDriverQuery{}, driver.ErrInvalidAccessToken
	}
	return AuthenticateDriverQuery{token: token, guard: guard.NewConstructorGuard()}, nil
}

func (q AuthenticateDriverQuery) Validate() error {
	return q.guard.Validate(ErrAuthenticateDriverQueryIsNotConstructed)
}

func (q AuthenticateDriverQuery) Token() string {
	return q.token
}
