package domain

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

type (
	Category struct {
		CategoryID uint
		Name       string
	}

	Collection struct {
		CollectionID uint
		Name         string
	}
)

// A NameMatch selects how a new category or collection name is compared
// with the stored ones. Comparison is case-insensitive in both modes.
type NameMatch string

const (
	// NameMatchPrefix treats a stored name that starts with the new name
	// as taken.
	NameMatchPrefix NameMatch = "prefix"
	NameMatchExact  NameMatch = "exact"
)

func ParseNameMatch(s string) (NameMatch, error) {
	switch m := NameMatch(strings.ToLower(strings.TrimSpace(s))); m {
	case "":
		return NameMatchPrefix, nil
	case NameMatchPrefix, NameMatchExact:
		return m, nil
	}
	return "", fmt.Errorf("unknown name match mode %q", s)
}

func ValidateName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", invalid("name is required")
	}
	return name, nil
}

type Spell struct {
	SpellID     uint
	Name        string
	Description string
	Price       decimal.Decimal
	Quantity    int
}

type NewSpell struct {
	Name        string
	Description string
	Price       decimal.Decimal
	Quantity    int
}

func (ns NewSpell) Validate() error {
	if strings.TrimSpace(ns.Name) == "" {
		return invalid("name is required")
	}
	if ns.Price.IsNegative() {
		return invalid("price cannot be negative")
	}
	if ns.Quantity < 0 {
		return invalid("quantity cannot be negative")
	}
	return nil
}

func (ns NewSpell) Spell() Spell {
	return Spell{
		Name:        strings.TrimSpace(ns.Name),
		Description: ns.Description,
		Price:       ns.Price,
		Quantity:    ns.Quantity,
	}
}
