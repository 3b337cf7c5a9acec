package domain

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"
)

type (
	Product struct {
		ProductID    uint
		Name         string
		Description  string
		Quantity     int
		Price        decimal.Decimal
		CategoryID   uint
		CollectionID uint
		CategoryName string
		Images       []ProductImage
	}

	ProductImage struct {
		ImageID   uint
		ProductID uint
		Name      string // blob store key
		URL       string
	}
)

type NewProduct struct {
	Name         string
	Description  string
	Quantity     int
	Price        decimal.Decimal
	CategoryID   uint
	CollectionID uint
}

func (np NewProduct) Validate() error {
	if strings.TrimSpace(np.Name) == "" {
		return invalid("name is required")
	}
	if np.CategoryID == 0 {
		return invalid("categoryId is required")
	}
	if np.CollectionID == 0 {
		return invalid("collectionId is required")
	}
	if np.Quantity < 0 {
		return invalid("quantity cannot be negative")
	}
	if np.Price.IsNegative() {
		return invalid("price cannot be negative")
	}
	return nil
}

func (np NewProduct) Product() Product {
	return Product{
		Name:         strings.TrimSpace(np.Name),
		Description:  np.Description,
		Quantity:     np.Quantity,
		Price:        np.Price,
		CategoryID:   np.CategoryID,
		CollectionID: np.CollectionID,
	}
}

// A ProductUpdate carries the fields present in an update request.
// Nil fields are left untouched.
type ProductUpdate struct {
	Name         *string
	Description  *string
	Quantity     *int
	Price        *decimal.Decimal
	CategoryID   *uint
	CollectionID *uint
}

func (u ProductUpdate) Validate() error {
	if u.Name != nil && strings.TrimSpace(*u.Name) == "" {
		return invalid("name cannot be empty")
	}
	if u.Quantity != nil && *u.Quantity < 0 {
		return invalid("quantity cannot be negative")
	}
	if u.Price != nil && u.Price.IsNegative() {
		return invalid("price cannot be negative")
	}
	if u.CategoryID != nil && *u.CategoryID == 0 {
		return invalid("categoryId cannot be zero")
	}
	if u.CollectionID != nil && *u.CollectionID == 0 {
		return invalid("collectionId cannot be zero")
	}
	return nil
}

func (u ProductUpdate) IsEmpty() bool {
	return u.Name == nil && u.Description == nil && u.Quantity == nil &&
		u.Price == nil && u.CategoryID == nil && u.CollectionID == nil
}

var allowedImageExts = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
}

// An ImageUpload is an image binary received with a product request.
type ImageUpload struct {
	Filename    string
	ContentType string
	Open        func() (io.ReadCloser, error)
}

func (u ImageUpload) Ext() (string, error) {
	ext := strings.ToLower(filepath.Ext(u.Filename))
	if _, ok := allowedImageExts[ext]; !ok {
		return "", invalid(fmt.Sprintf("unsupported image format %q", ext))
	}
	return ext, nil
}

func (u ImageUpload) MediaType() string {
	if u.ContentType != "" && u.ContentType != "application/octet-stream" {
		return u.ContentType
	}
	return allowedImageExts[strings.ToLower(filepath.Ext(u.Filename))]
}

// A BlobObject is a stored image binary.
type BlobObject struct {
	Key string
	URL string
}
