// Package itemsummary reads the composite item summary used by upstream
// ledgers and vendor payloads:
//
//	[Produce] Apples(2), Bananas(3) | [Dairy] Milk(1)
//
// It exists only at the adapter edge; the dispatch core works with feed.Block.
package itemsummary

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"dispatch/internal/core/domain/model/feed"
	"dispatch/internal/core/domain/model/task"
	"dispatch/internal/pkg/errs"
)

const (
	blockSeparator = "|"
	itemSeparator  = ","
)

var (
	blockPattern = regexp.MustCompile(`^\[([^\]]*)\](.*)$`)
	itemPattern  = regexp.MustCompile(`^\s*(.+?)\s*\(\s*(-?\d+)\s*\)\s*$`)
	qtyPattern   = regexp.MustCompile(`\(\s*-?\d+\s*\)`)
)

// Parse splits summary into category blocks. Malformed fragments never fail
// the whole summary: a bad item is dropped, a block without any valid item is
// dropped, and each drop is reported as an errs.ParseError in issues.
func Parse(summary string) (blocks []feed.Block, issues []error) {
	for _, raw := range strings.Split(summary, blockSeparator) {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}

		block, blockIssues := parseBlock(raw)
		issues = append(issues, blockIssues...)
		if block != nil {
			blocks = append(blocks, *block)
		}
	}
	return blocks, issues
}

func parseBlock(raw string) (*feed.Block, []error) {
	m := blockPattern.FindStringSubmatch(raw)
	if m == nil {
		return nil, []error{errs.NewParseErrorWithCause(raw, fmt.Errorf("block has no [category] label"))}
	}
	category := strings.TrimSpace(m[1])
	if category == "" {
		return nil, []error{errs.NewParseErrorWithCause(raw, errs.NewValueIsRequiredError("category"))}
	}

	var (
		lines  []task.LineItem
		issues []error
	)
	for _, fragment := range strings.Split(m[2], itemSeparator) {
		fragment = strings.TrimSpace(fragment)
		if fragment == "" {
			continue
		}
		line, err := parseItem(fragment)
		if err != nil {
			issues = append(issues, err)
			continue
		}
		lines = append(lines, line)
	}

	if len(lines) == 0 {
		issues = append(issues, errs.NewParseErrorWithCause(raw, fmt.Errorf("category %q has no items", category)))
		return nil, issues
	}

	items, err := task.NewItems(lines...)
	if err != nil {
		return nil, append(issues, errs.NewParseErrorWithCause(raw, err))
	}
	return &feed.Block{Category: category, Items: items}, issues
}

// parseItem reads one "name(qty)" fragment. The quantity is the last
// parenthesized group, so names may carry their own parentheses.
func parseItem(fragment string) (task.LineItem, error) {
	m := itemPattern.FindStringSubmatch(fragment)
	if m == nil {
		return task.LineItem{}, errs.NewParseErrorWithCause(fragment, fmt.Errorf("item is not of the form name(qty)"))
	}
	if qtyPattern.MatchString(m[1]) {
		return task.LineItem{}, errs.NewParseErrorWithCause(fragment, fmt.Errorf("items must be separated by %q", itemSeparator))
	}
	qty, err := strconv.Atoi(m[2])
	if err != nil {
		return task.LineItem{}, errs.NewParseErrorWithCause(fragment, err)
	}
	line, err := task.NewLineItem(m[1], qty)
	if err != nil {
		return task.LineItem{}, errs.NewParseErrorWithCause(fragment, err)
	}
	return line, nil
}

// Format renders blocks back into the composite form.
func Format(blocks []feed.Block) string {
	parts := make([]string, 0, len(blocks))
	for _, b := range blocks {
		parts = append(parts, fmt.Sprintf("[%s] %s", b.Category, b.Items.Render()))
	}
	return strings.Join(parts, " "+blockSeparator+" ")
}
