package storage

import (
	"context"
	"fmt"

	"github.com/niksmo/spellshop/internal/core/domain"
	"gorm.io/gorm"
)

func (s *Storage) ReadOrCreateCart(
	ctx context.Context, userID uint,
) (domain.Cart, error) {
	const op = "Storage.ReadOrCreateCart"

	var m cart
	err := s.db.WithContext(ctx).
		Omit("Items").
		Where(cart{UserID: userID}).
		FirstOrCreate(&m).Error
	if err != nil {
		return domain.Cart{}, translate(op, err)
	}
	return domain.Cart{CartID: m.CartID, UserID: m.UserID}, nil
}

func (s *Storage) FindCartItem(
	ctx context.Context, cartID uint, productID, spellID *uint,
) (domain.CartItem, error) {
	const op = "Storage.FindCartItem"

	q := s.cartItems(ctx).Where("cart_id = ?", cartID)
	if productID != nil {
		q = q.Where("product_id = ?", *productID)
	} else {
		q = q.Where("product_id IS NULL")
	}
	if spellID != nil {
		q = q.Where("spell_id = ?", *spellID)
	} else {
		q = q.Where("spell_id IS NULL")
	}

	var m cartItem
	if err := q.First(&m).Error; err != nil {
		return domain.CartItem{}, translate(op, err)
	}
	return m.domain(), nil
}

func (s *Storage) ReadCartItem(
	ctx context.Context, cartID, itemID uint,
) (domain.CartItem, error) {
	const op = "Storage.ReadCartItem"

	var m cartItem
	err := s.cartItems(ctx).
		Where("cart_id = ? AND item_id = ?", cartID, itemID).
		First(&m).Error
	if err != nil {
		return domain.CartItem{}, translate(op, err)
	}
	return m.domain(), nil
}

func (s *Storage) ListCartItems(
	ctx context.Context, cartID uint,
) ([]domain.CartItem, error) {
	const op = "Storage.ListCartItems"

	var ms []cartItem
	err := s.cartItems(ctx).
		Where("cart_id = ?", cartID).
		Order("item_id").
		Find(&ms).Error
	if err != nil {
		return nil, translate(op, err)
	}
	items := make([]domain.CartItem, 0, len(ms))
	for _, m := range ms {
		items = append(items, m.domain())
	}
	return items, nil
}

func (s *Storage) CreateCartItem(ctx context.Context, item *domain.CartItem) error {
	const op = "Storage.CreateCartItem"

	m := cartItem{
		CartID:    item.CartID,
		ProductID: item.ProductID,
		SpellID:   item.SpellID,
		Quantity:  item.Quantity,
	}
	err := s.db.WithContext(ctx).Omit("Product", "Spell").Create(&m).Error
	if err != nil {
		return translate(op, err)
	}
	item.ItemID = m.ItemID
	return nil
}

func (s *Storage) UpdateCartItemQuantity(
	ctx context.Context, cartID, itemID uint, quantity int,
) error {
	const op = "Storage.UpdateCartItemQuantity"

	res := s.db.WithContext(ctx).
		Model(&cartItem{}).
		Where("cart_id = ? AND item_id = ?", cartID, itemID).
		Update("quantity", quantity)
	if res.Error != nil {
		return translate(op, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%s: %w", op, domain.ErrNotFound)
	}
	return nil
}

func (s *Storage) DeleteCartItem(ctx context.Context, cartID, itemID uint) error {
	const op = "Storage.DeleteCartItem"

	res := s.db.WithContext(ctx).
		Where("cart_id = ? AND item_id = ?", cartID, itemID).
		Delete(&cartItem{})
	if res.Error != nil {
		return translate(op, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%s: %w", op, domain.ErrNotFound)
	}
	return nil
}

func (s *Storage) DeleteCartItemsByProduct(ctx context.Context, productID uint) error {
	const op = "Storage.DeleteCartItemsByProduct"

	err := s.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Delete(&cartItem{}).Error
	if err != nil {
		return translate(op, err)
	}
	return nil
}

func (s *Storage) cartItems(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).Preload("Product").Preload("Spell")
}

func (m cartItem) domain() domain.CartItem {
	item := domain.CartItem{
		ItemID:    m.ItemID,
		CartID:    m.CartID,
		ProductID: m.ProductID,
		SpellID:   m.SpellID,
		Quantity:  m.Quantity,
	}
	switch {
	case m.Product != nil:
		item.Name = m.Product.Name
		item.Price = m.Product.Price
	case m.Spell != nil:
		item.Name = m.Spell.Name
		item.Price = m.Spell.Price
	}
	return item
}
