package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/niksmo/spellshop/internal/core/domain"
	"gorm.io/gorm"
)

func (s *Storage) CreateProduct(ctx context.Context, p *domain.Product) error {
	const op = "Storage.CreateProduct"

	m := productModel(*p)
	err := s.db.WithContext(ctx).
		Omit("Category", "Collection", "Images").
		Create(&m).Error
	if err != nil {
		return translate(op, err)
	}
	p.ProductID = m.ProductID
	return nil
}

func (s *Storage) ReadProduct(
	ctx context.Context, productID uint,
) (domain.Product, error) {
	const op = "Storage.ReadProduct"

	var m product
	err := s.products(ctx).First(&m, "product_id = ?", productID).Error
	if err != nil {
		return domain.Product{}, translate(op, err)
	}
	return m.domain(), nil
}

func (s *Storage) ListProducts(ctx context.Context) ([]domain.Product, error) {
	const op = "Storage.ListProducts"
	return s.listProducts(ctx, op, nil)
}

func (s *Storage) ListProductsByCategory(
	ctx context.Context, categoryID uint,
) ([]domain.Product, error) {
	const op = "Storage.ListProductsByCategory"
	return s.listProducts(ctx, op, func(db *gorm.DB) *gorm.DB {
		return db.Where("category_id = ?", categoryID)
	})
}

func (s *Storage) ListProductsByCollection(
	ctx context.Context, collectionID uint,
) ([]domain.Product, error) {
	const op = "Storage.ListProductsByCollection"
	return s.listProducts(ctx, op, func(db *gorm.DB) *gorm.DB {
		return db.Where("collection_id = ?", collectionID)
	})
}

// UpdateProduct writes only the fields present in upd.
func (s *Storage) UpdateProduct(
	ctx context.Context, productID uint, upd domain.ProductUpdate,
) error {
	const op = "Storage.UpdateProduct"

	fields := make(map[string]any)
	if upd.Name != nil {
		fields["name"] = strings.TrimSpace(*upd.Name)
	}
	if upd.Description != nil {
		fields["description"] = *upd.Description
	}
	if upd.Quantity != nil {
		fields["quantity"] = *upd.Quantity
	}
	if upd.Price != nil {
		fields["price"] = *upd.Price
	}
	if upd.CategoryID != nil {
		fields["category_id"] = *upd.CategoryID
	}
	if upd.CollectionID != nil {
		fields["collection_id"] = *upd.CollectionID
	}
	if len(fields) == 0 {
		return nil
	}

	res := s.db.WithContext(ctx).
		Model(&product{}).
		Where("product_id = ?", productID).
		Updates(fields)
	if res.Error != nil {
		return translate(op, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%s: %w", op, domain.ErrNotFound)
	}
	return nil
}

func (s *Storage) DeleteProduct(ctx context.Context, productID uint) error {
	const op = "Storage.DeleteProduct"

	res := s.db.WithContext(ctx).Delete(&product{}, "product_id = ?", productID)
	if res.Error != nil {
		return translate(op, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("%s: %w", op, domain.ErrNotFound)
	}
	return nil
}

func (s *Storage) ListImages(
	ctx context.Context, productID uint,
) ([]domain.ProductImage, error) {
	const op = "Storage.ListImages"

	var ms []image
	err := s.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("image_id").
		Find(&ms).Error
	if err != nil {
		return nil, translate(op, err)
	}
	imgs := make([]domain.ProductImage, 0, len(ms))
	for _, m := range ms {
		imgs = append(imgs, m.domain())
	}
	return imgs, nil
}

func (s *Storage) CreateImages(
	ctx context.Context, imgs []domain.ProductImage,
) error {
	const op = "Storage.CreateImages"

	if len(imgs) == 0 {
		return nil
	}
	ms := make([]image, 0, len(imgs))
	for _, img := range imgs {
		ms = append(ms, image{
			Name:      img.Name,
			URL:       img.URL,
			ProductID: img.ProductID,
		})
	}
	if err := s.db.WithContext(ctx).Create(&ms).Error; err != nil {
		return translate(op, err)
	}
	return nil
}

func (s *Storage) DeleteImages(ctx context.Context, productID uint) error {
	const op = "Storage.DeleteImages"

	err := s.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Delete(&image{}).Error
	if err != nil {
		return translate(op, err)
	}
	return nil
}

func (s *Storage) products(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).
		Preload("Category").
		Preload("Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("image_id")
		})
}

func (s *Storage) listProducts(
	ctx context.Context, op string, scope func(*gorm.DB) *gorm.DB,
) ([]domain.Product, error) {
	q := s.products(ctx)
	if scope != nil {
		q = q.Scopes(scope)
	}
	var ms []product
	if err := q.Order("product_id").Find(&ms).Error; err != nil {
		return nil, translate(op, err)
	}
	ps := make([]domain.Product, 0, len(ms))
	for _, m := range ms {
		ps = append(ps, m.domain())
	}
	return ps, nil
}

func productModel(p domain.Product) product {
	return product{
		ProductID:    p.ProductID,
		Name:         p.Name,
		Description:  p.Description,
		Quantity:     p.Quantity,
		Price:        p.Price,
		CategoryID:   p.CategoryID,
		CollectionID: p.CollectionID,
	}
}

func (m product) domain() domain.Product {
	p := domain.Product{
		ProductID:    m.ProductID,
		Name:         m.Name,
		Description:  m.Description,
		Quantity:     m.Quantity,
		Price:        m.Price,
		CategoryID:   m.CategoryID,
		CollectionID: m.CollectionID,
		CategoryName: m.Category.Name,
		Images:       make([]domain.ProductImage, 0, len(m.Images)),
	}
	for _, img := range m.Images {
		p.Images = append(p.Images, img.domain())
	}
	return p
}

func (m image) domain() domain.ProductImage {
	return domain.ProductImage{
		ImageID:   m.ImageID,
		ProductID: m.ProductID,
		Name:      m.Name,
		URL:       m.URL,
	}
}
