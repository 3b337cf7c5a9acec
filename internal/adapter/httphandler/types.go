package httphandler

import (
	"github.com/niksmo/spellshop/internal/core/domain"
	"github.com/shopspring/decimal"
)

type (
	// productRequest holds the fields of a create or update request.
	// Absent fields stay nil.
	productRequest struct {
		Name         *string          `json:"name"`
		Description  *string          `json:"description"`
		Quantity     *int             `json:"quantity"`
		Price        *decimal.Decimal `json:"price"`
		CategoryID   *uint            `json:"categoryId"`
		CollectionID *uint            `json:"collectionId"`
	}

	Product struct {
		ProductID    uint            `json:"productId"`
		Name         string          `json:"name"`
		Description  string          `json:"description"`
		Quantity     int             `json:"quantity"`
		Price        decimal.Decimal `json:"price"`
		CategoryID   uint            `json:"categoryId"`
		CollectionID uint            `json:"collectionId"`
		Category     ProductCategory `json:"category"`
		Images       []ProductImage  `json:"images"`
	}

	ProductCategory struct {
		CategoryName string `json:"categoryName"`
	}

	ProductImage struct {
		ImageURL  string `json:"imageURL"`
		ImageName string `json:"imageName,omitempty"`
	}

	CollectionProducts struct {
		Products []Product `json:"products"`
	}
)

func (r productRequest) newProduct() domain.NewProduct {
	var np domain.NewProduct
	if r.Name != nil {
		np.Name = *r.Name
	}
	if r.Description != nil {
		np.Description = *r.Description
	}
	if r.Quantity != nil {
		np.Quantity = *r.Quantity
	}
	if r.Price != nil {
		np.Price = *r.Price
	}
	if r.CategoryID != nil {
		np.CategoryID = *r.CategoryID
	}
	if r.CollectionID != nil {
		np.CollectionID = *r.CollectionID
	}
	return np
}

func (r productRequest) update() domain.ProductUpdate {
	return domain.ProductUpdate{
		Name:         r.Name,
		Description:  r.Description,
		Quantity:     r.Quantity,
		Price:        r.Price,
		CategoryID:   r.CategoryID,
		CollectionID: r.CollectionID,
	}
}

func toProduct(p domain.Product, withImageNames bool) Product {
	res := Product{
		ProductID:    p.ProductID,
		Name:         p.Name,
		Description:  p.Description,
		Quantity:     p.Quantity,
		Price:        p.Price,
		CategoryID:   p.CategoryID,
		CollectionID: p.CollectionID,
		Category:     ProductCategory{CategoryName: p.CategoryName},
		Images:       make([]ProductImage, len(p.Images)),
	}
	for i, img := range p.Images {
		res.Images[i].ImageURL = img.URL
		if withImageNames {
			res.Images[i].ImageName = img.Name
		}
	}
	return res
}

func toProducts(ps []domain.Product, withImageNames bool) []Product {
	res := make([]Product, len(ps))
	for i, p := range ps {
		res[i] = toProduct(p, withImageNames)
	}
	return res
}

type (
	nameRequest struct {
		Name string `json:"name"`
	}

	Category struct {
		CategoryID   uint   `json:"categoryId"`
		CategoryName string `json:"categoryName"`
	}

	Collection struct {
		CollectionID   uint   `json:"collectionId"`
		CollectionName string `json:"collectionName"`
	}
)

func toCategories(cs []domain.Category) []Category {
	res := make([]Category, len(cs))
	for i, c := range cs {
		res[i] = Category{CategoryID: c.CategoryID, CategoryName: c.Name}
	}
	return res
}

func toCollections(cs []domain.Collection) []Collection {
	res := make([]Collection, len(cs))
	for i, c := range cs {
		res[i] = Collection{CollectionID: c.CollectionID, CollectionName: c.Name}
	}
	return res
}

type (
	spellRequest struct {
		Name        string          `json:"name"`
		Description string          `json:"description"`
		Price       decimal.Decimal `json:"price"`
		Quantity    int             `json:"quantity"`
	}

	Spell struct {
		SpellID     uint            `json:"spellId"`
		Name        string          `json:"name"`
		Description string          `json:"description"`
		Price       decimal.Decimal `json:"price"`
		Quantity    int             `json:"quantity"`
	}
)

func (r spellRequest) newSpell() domain.NewSpell {
	return domain.NewSpell{
		Name:        r.Name,
		Description: r.Description,
		Price:       r.Price,
		Quantity:    r.Quantity,
	}
}

func toSpell(s domain.Spell) Spell {
	return Spell{
		SpellID:     s.SpellID,
		Name:        s.Name,
		Description: s.Description,
		Price:       s.Price,
		Quantity:    s.Quantity,
	}
}

func toSpells(ss []domain.Spell) []Spell {
	res := make([]Spell, len(ss))
	for i, s := range ss {
		res[i] = toSpell(s)
	}
	return res
}

type (
	cartItemRequest struct {
		ProductID *uint `json:"productId"`
		SpellID   *uint `json:"spellId"`
		Quantity  int   `json:"quantity"`
	}

	quantityRequest struct {
		Quantity *int `json:"quantity"`
	}

	CartItem struct {
		CartItemID uint            `json:"cartItemId"`
		ProductID  *uint           `json:"productId,omitempty"`
		SpellID    *uint           `json:"spellId,omitempty"`
		Name       string          `json:"name"`
		Price      decimal.Decimal `json:"price"`
		Quantity   int             `json:"quantity"`
	}
)

func (r cartItemRequest) input() domain.CartItemInput {
	return domain.CartItemInput{
		ProductID: r.ProductID,
		SpellID:   r.SpellID,
		Quantity:  r.Quantity,
	}
}

func toCartItem(it domain.CartItem) CartItem {
	return CartItem{
		CartItemID: it.ItemID,
		ProductID:  it.ProductID,
		SpellID:    it.SpellID,
		Name:       it.Name,
		Price:      it.Price,
		Quantity:   it.Quantity,
	}
}

func toCartItems(its []domain.CartItem) []CartItem {
	res := make([]CartItem, len(its))
	for i, it := range its {
		res[i] = toCartItem(it)
	}
	return res
}

type (
	signupRequest struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	loginRequest struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	SessionResponse struct {
		Success bool   `json:"success"`
		Token   string `json:"token"`
		UserID  uint   `json:"userId"`
	}
)
