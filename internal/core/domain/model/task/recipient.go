package task

import (
	"errors"
	"strings"

	"dispatch/internal/pkg/errs"
)

// Source is the intake path a task was materialized from.
type Source string

const (
	SourceInternal Source = "internal"
	SourceVendor   Source = "vendor"
)

func (s Source) Validate() error {
	if s != SourceInternal && s != SourceVendor {
		return errs.NewValueIsInvalidErrorWithCause("source", errors.New(string(s)+" is not a known intake source"))
	}
	return nil
}

func (s Source) String() string {
	return string(s)
}

// Recipient is the customer side of a delivery, copied from the upstream order.
type Recipient struct {
	Name    string
	Phone   string
	Address string
	Memo    string
}

// NewRecipient trims the fields and requires a name and an address.
func NewRecipient(name, phone, address, memo string) (Recipient, error) {
	r := Recipient{
		Name:    strings.TrimSpace(name),
		Phone:   strings.TrimSpace(phone),
		Address: strings.TrimSpace(address),
		Memo:    strings.TrimSpace(memo),
	}
	if err := r.Validate(); err != nil {
		return Recipient{}, err
	}
	return r, nil
}

func (r Recipient) Validate() error {
	var errList []error
	if r.Name == "" {
		errList = append(errList, errs.NewValueIsRequiredError("customer name"))
	}
	if r.Address == "" {
		errList = append(errList, errs.NewValueIsRequiredError("delivery address"))
	}
	return errors.Join(errList...)
}
