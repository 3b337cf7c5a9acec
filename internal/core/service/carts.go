package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/niksmo/spellshop/internal/core/domain"
	"github.com/niksmo/spellshop/internal/core/port"
)

var _ port.CartKeeper = (*Carts)(nil)

type Carts struct {
	storage port.CartStorage
}

func NewCarts(storage port.CartStorage) *Carts {
	return &Carts{storage: storage}
}

// AddItem puts a product or a spell into the user's cart. Adding an item
// already in the cart increases its quantity.
func (c *Carts) AddItem(
	ctx context.Context, userID uint, in domain.CartItemInput,
) (domain.CartItem, error) {
	const op = "Carts.AddItem"

	if err := in.Validate(); err != nil {
		return domain.CartItem{}, fmt.Errorf("%s: %w", op, err)
	}
	in = in.Normalize()

	var added domain.CartItem
	err := c.storage.Do(ctx, func(tx port.TxStorage) error {
		if err := referenceExists(ctx, tx, in); err != nil {
			return err
		}
		cart, err := tx.ReadOrCreateCart(ctx, userID)
		if err != nil {
			return err
		}

		itemID, err := upsertItem(ctx, tx, cart.CartID, in)
		if err != nil {
			return err
		}
		added, err = tx.ReadCartItem(ctx, cart.CartID, itemID)
		return err
	})
	if err != nil {
		return domain.CartItem{}, fmt.Errorf("%s: %w", op, err)
	}
	return added, nil
}

func (c *Carts) ListItems(ctx context.Context, userID uint) ([]domain.CartItem, error) {
	const op = "Carts.ListItems"

	cart, err := c.storage.ReadOrCreateCart(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	items, err := c.storage.ListCartItems(ctx, cart.CartID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return items, nil
}

func (c *Carts) UpdateItem(
	ctx context.Context, userID, itemID uint, quantity int,
) (domain.CartItem, bool, error) {
	const op = "Carts.UpdateItem"

	var (
		item    domain.CartItem
		removed bool
	)
	err := c.storage.Do(ctx, func(tx port.TxStorage) error {
		cart, err := tx.ReadOrCreateCart(ctx, userID)
		if err != nil {
			return err
		}
		if quantity < 1 {
			removed = true
			return tx.DeleteCartItem(ctx, cart.CartID, itemID)
		}
		if err := tx.UpdateCartItemQuantity(ctx, cart.CartID, itemID, quantity); err != nil {
			return err
		}
		item, err = tx.ReadCartItem(ctx, cart.CartID, itemID)
		return err
	})
	if err != nil {
		return domain.CartItem{}, false, fmt.Errorf("%s: %w", op, err)
	}
	return item, removed, nil
}

func (c *Carts) RemoveItem(ctx context.Context, userID, itemID uint) error {
	const op = "Carts.RemoveItem"

	cart, err := c.storage.ReadOrCreateCart(ctx, userID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := c.storage.DeleteCartItem(ctx, cart.CartID, itemID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

func referenceExists(ctx context.Context, tx port.TxStorage, in domain.CartItemInput) error {
	if in.ProductID != nil {
		_, err := tx.ReadProduct(ctx, *in.ProductID)
		return err
	}
	_, err := tx.ReadSpell(ctx, *in.SpellID)
	return err
}

func upsertItem(
	ctx context.Context, tx port.TxStorage, cartID uint, in domain.CartItemInput,
) (uint, error) {
	existing, err := tx.FindCartItem(ctx, cartID, in.ProductID, in.SpellID)
	switch {
	case err == nil:
		qty := existing.Quantity + in.Quantity
		if err := tx.UpdateCartItemQuantity(ctx, cartID, existing.ItemID, qty); err != nil {
			return 0, err
		}
		return existing.ItemID, nil
	case errors.Is(err, domain.ErrNotFound):
		item := domain.CartItem{
			CartID:    cartID,
			ProductID: in.ProductID,
			SpellID:   in.SpellID,
			Quantity:  in.Quantity,
		}
		if err := tx.CreateCartItem(ctx, &item); err != nil {
			return 0, err
		}
		return item.ItemID, nil
	}
	return 0, err
}
