package domain

import "github.com/shopspring/decimal"

type Cart struct {
	CartID uint
	UserID uint
}

// A CartItem references exactly one of a product or a spell.
type CartItem struct {
	ItemID    uint
	CartID    uint
	ProductID *uint
	SpellID   *uint
	Quantity  int
	Name      string
	Price     decimal.Decimal
}

type CartItemInput struct {
	ProductID *uint
	SpellID   *uint
	Quantity  int
}

func (in CartItemInput) Validate() error {
	hasProduct := in.ProductID != nil && *in.ProductID != 0
	hasSpell := in.SpellID != nil && *in.SpellID != 0
	if hasProduct == hasSpell {
		return invalid("exactly one of productId and spellId is required")
	}
	if in.Quantity < 1 {
		return invalid("quantity must be at least 1")
	}
	return nil
}

// Normalize drops zero ids so that only the given reference stays set.
func (in CartItemInput) Normalize() CartItemInput {
	if in.ProductID != nil && *in.ProductID == 0 {
		in.ProductID = nil
	}
	if in.SpellID != nil && *in.SpellID == 0 {
		in.SpellID = nil
	}
	return in
}
