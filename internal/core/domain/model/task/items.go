package task

import (
	"fmt"
	"strings"

	"dispatch/internal/pkg/errs"
)

// LineItem is one product line of a task: a name and a positive quantity.
type LineItem struct {
	name     string
	quantity int
}

// NewLineItem validates and builds a LineItem.
func NewLineItem(name string, quantity int) (LineItem, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return LineItem{}, errs.NewValueIsRequiredError("item name")
	}
	if quantity <= 0 {
		return LineItem{}, errs.NewValueIsInvalidErrorWithCause(
			"item quantity",
			fmt.Errorf("%d is not greater than 0", quantity),
		)
	}
	return LineItem{name: name, quantity: quantity}, nil
}

func (i LineItem) Name() string {
	return i.name
}

func (i LineItem) Quantity() int {
	return i.quantity
}

// String renders the item as name(quantity).
func (i LineItem) String() string {
	return fmt.Sprintf("%s(%d)", i.name, i.quantity)
}

// Items is the ordered product list of one fulfillment category.
type Items []LineItem

// NewItems requires at least one line.
func NewItems(lines ...LineItem) (Items, error) {
	if len(lines) == 0 {
		return nil, errs.NewValueIsRequiredError("items")
	}
	items := make(Items, len(lines))
	copy(items, lines)
	return items, nil
}

// Render produces the item-summary text shown to drivers, e.g. "Apples(2), Bananas(3)".
func (it Items) Render() string {
	parts := make([]string, len(it))
	for i, line := range it {
		parts[i] = line.String()
	}
	return strings.Join(parts, ", ")
}

// TotalQuantity sums the quantities of all lines.
func (it Items) TotalQuantity() int {
	total := 0
	for _, line := range it {
		total += line.quantity
	}
	return total
}
