package driver

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"
	"dispatch/internal/pkg/guard"

	"golang.org/x/crypto/bcrypt"
)

const secretSize = 32

var (
	ErrDriverIsNotConstructed = errors.New("Driver must be created via NewDriver or RestoreDriver")

	// ErrInvalidAccessToken is returned for malformed tokens and secrets that do not match.
	ErrInvalidAccessToken = errors.New("invalid access token")
)

// AccessToken is the opaque credential handed to a driver once, at registration.
// Its form is "<driver id>.<secret>"; only a bcrypt hash of the secret is kept.
type AccessToken string

func (t AccessToken) String() string {
	return string(t)
}

// ParseAccessToken splits a token into the driver id and its secret.
func ParseAccessToken(token string) (kernel.UUID, string, error) {
	id, secret, ok := strings.Cut(strings.TrimSpace(token), ".")
	if !ok || secret == "" {
		return kernel.UUID{}, "", ErrInvalidAccessToken
	}
	driverID, err := kernel.UUIDFromString(id)
	if err != nil {
		return kernel.UUID{}, "", fmt.Errorf("%w: %w", ErrInvalidAccessToken, err)
	}
	return driverID, secret, nil
}

// Driver is a dispatch target. Tasks reference it by id and copy its name.
type Driver struct {
	id        kernel.UUID
	name      string
	phone     string
	tokenHash []byte
	createdAt time.Time
	guard     guard.ConstructorGuard
}

// NewDriver registers a driver and issues its access token. The token is
// returned only here and cannot be recovered later.
func NewDriver(id kernel.UUID, name, phone string, createdAt time.Time) (*Driver, AccessToken, error) {
	d := &Driver{
		createdAt: createdAt.UTC(),
		guard:     guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		d.setID(id),
		d.setName(name),
		d.setPhone(phone),
	); err != nil {
		return nil, "", err
	}

	secret, err := newSecret()
	if err != nil {
		return nil, "", err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(secret), bcrypt.DefaultCost)
	if err != nil {
		return nil, "", fmt.Errorf("hash access token: %w", err)
	}
	d.tokenHash = hash

	return d, AccessToken(id.String() + "." + secret), nil
}

// RestoreDriver rebuilds a Driver from storage.
func RestoreDriver(id kernel.UUID, name, phone string, tokenHash []byte, createdAt time.Time) (*Driver, error) {
	d := &Driver{
		createdAt: createdAt,
		guard:     guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		d.setID(id),
		d.setName(name),
		d.setPhone(phone),
	); err != nil {
		return nil, err
	}
	if len(tokenHash) == 0 {
		return nil, errs.NewValueIsRequiredError("token hash")
	}
	d.tokenHash = tokenHash

	return d, nil
}

func (d *Driver) Validate() error {
	if d == nil {
		return ErrDriverIsNotConstructed
	}
	return d.guard.Validate(ErrDriverIsNotConstructed)
}

func (d *Driver) ID() kernel.UUID {
	return d.id
}

func (d *Driver) Name() string {
	return d.name
}

func (d *Driver) Phone() string {
	return d.phone
}

func (d *Driver) TokenHash() []byte {
	return d.tokenHash
}

func (d *Driver) CreatedAt() time.Time {
	return d.createdAt
}

// Authenticate compares secret against the stored hash.
func (d *Driver) Authenticate(secret string) error {
	if err := bcrypt.CompareHashAndPassword(d.tokenHash, []byte(secret)); err != nil {
		return ErrInvalidAccessToken
	}
	return nil
}

func newSecret() (string, error) {
	buf := make([]byte, secretSize)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate access token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

func (d *Driver) setID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	d.id = id
	return nil
}

func (d *Driver) setName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errs.NewValueIsRequiredError("name")
	}
	d.name = name
	return nil
}

func (d *Driver) setPhone(phone string) error {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return errs.NewValueIsRequiredError("phone")
	}
	d.phone = phone
	return nil
}
