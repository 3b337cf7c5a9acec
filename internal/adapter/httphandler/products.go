package httphandler

import (
	"errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/niksmo/spellshop/internal/core/domain"
	"github.com/niksmo/spellshop/internal/core/port"
	"github.com/shopspring/decimal"
)

const (
	imagesField     = "images"
	maxMultipartMem = 32 << 20
)

type ProductsHandler struct {
	products port.ProductsCatalog
}

func RegisterProducts(
	public, admin gin.IRouter, products port.ProductsCatalog,
) {
	h := ProductsHandler{products}
	public.GET("/products", h.ListProducts)
	public.GET("/products/:id", h.GetProduct)
	admin.POST("/products", h.PostProduct)
	admin.PUT("/products/:id", h.PutProduct)
	admin.DELETE("/products/:id", h.DeleteProduct)
}

var productNotFound = errText{domain.ErrNotFound: "Product not found"}

func (h ProductsHandler) ListProducts(c *gin.Context) {
	const op = "ProductsHandler.ListProducts"
	log := slog.With("op", op)

	ps, err := h.products.ListProducts(c.Request.Context())
	if err != nil {
		writeError(c, log, err, nil)
		return
	}
	c.JSON(http.StatusOK, toProducts(ps, false))
}

func (h ProductsHandler) GetProduct(c *gin.Context) {
	const op = "ProductsHandler.GetProduct"
	log := slog.With("op", op)

	id, err := pathID(c)
	if err != nil {
		writeError(c, log, err, nil)
		return
	}

	p, err := h.products.GetProduct(c.Request.Context(), id)
	if err != nil {
		writeError(c, log, err, productNotFound)
		return
	}
	c.JSON(http.StatusOK, toProduct(p, false))
}

func (h ProductsHandler) PostProduct(c *gin.Context) {
	const op = "ProductsHandler.PostProduct"
	log := slog.With("op", op)

	req, images, err := bindProduct(c)
	if err != nil {
		writeError(c, log, err, nil)
		return
	}

	p, err := h.products.AddProduct(
		c.Request.Context(), req.newProduct(), images,
	)
	if err != nil {
		writeError(c, log, err, nil)
		return
	}

	log.Info("product created", "productID", p.ProductID, "nImages", len(p.Images))
	c.JSON(http.StatusOK, toProduct(p, false))
}

func (h ProductsHandler) PutProduct(c *gin.Context) {
	const op = "ProductsHandler.PutProduct"
	log := slog.With("op", op)

	id, err := pathID(c)
	if err != nil {
		writeError(c, log, err, nil)
		return
	}

	req, images, err := bindProduct(c)
	if err != nil {
		writeError(c, log, err, nil)
		return
	}

	p, err := h.products.UpdateProduct(
		c.Request.Context(), id, req.update(), images,
	)
	if err != nil {
		writeError(c, log, err, productNotFound)
		return
	}

	log.Info("product updated", "productID", p.ProductID)
	c.JSON(http.StatusOK, toProduct(p, false))
}

func (h ProductsHandler) DeleteProduct(c *gin.Context) {
	const op = "ProductsHandler.DeleteProduct"
	log := slog.With("op", op)

	id, err := pathID(c)
	if err != nil {
		writeError(c, log, err, nil)
		return
	}

	if err := h.products.DeleteProduct(c.Request.Context(), id); err != nil {
		writeError(c, log, err, productNotFound)
		return
	}

	log.Info("product deleted", "productID", id)
	c.JSON(http.StatusOK, "product deleted")
}

// bindProduct reads a JSON body or a multipart form with image parts.
func bindProduct(
	c *gin.Context,
) (req productRequest, images []domain.ImageUpload, err error) {
	if c.Request.ContentLength == 0 {
		return req, nil, nil
	}

	if c.ContentType() != gin.MIMEMultipartPOSTForm {
		if err := c.ShouldBindJSON(&req); err != nil {
			return req, nil, badRequest("invalid JSON data")
		}
		return req, nil, nil
	}

	if err := c.Request.ParseMultipartForm(maxMultipartMem); err != nil {
		return req, nil, badRequest("invalid multipart form")
	}
	form := c.Request.MultipartForm
	if req, err = productFromForm(form.Value); err != nil {
		return req, nil, err
	}
	for _, fh := range form.File[imagesField] {
		images = append(images, imageUpload(fh))
	}
	return req, images, nil
}

func productFromForm(values map[string][]string) (req productRequest, err error) {
	get := func(key string) (string, bool) {
		vs, ok := values[key]
		if !ok || len(vs) == 0 {
			return "", false
		}
		return vs[0], true
	}

	if v, ok := get("name"); ok {
		req.Name = &v
	}
	if v, ok := get("description"); ok {
		req.Description = &v
	}
	if v, ok := get("quantity"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return req, badRequest("quantity must be an integer")
		}
		req.Quantity = &n
	}
	if v, ok := get("price"); ok {
		d, err := decimal.NewFromString(v)
		if err != nil {
			return req, badRequest("price must be a decimal number")
		}
		req.Price = &d
	}
	if req.CategoryID, err = formID(get, "categoryId"); err != nil {
		return req, err
	}
	if req.CollectionID, err = formID(get, "collectionId"); err != nil {
		return req, err
	}
	return req, nil
}

func formID(get func(string) (string, bool), key string) (*uint, error) {
	v, ok := get(key)
	if !ok {
		return nil, nil
	}
	id, err := parseID(v)
	if err != nil {
		return nil, badRequest(key + " must be a positive integer")
	}
	return &id, nil
}

func imageUpload(fh *multipart.FileHeader) domain.ImageUpload {
	return domain.ImageUpload{
		Filename:    fh.Filename,
		ContentType: fh.Header.Get("Content-Type"),
		Open: func() (io.ReadCloser, error) {
			return fh.Open()
		},
	}
}

func pathID(c *gin.Context) (uint, error) {
	id, err := parseID(c.Param("id"))
	if err != nil {
		return 0, badRequest("invalid id")
	}
	return id, nil
}

func parseID(s string) (uint, error) {
	n, err := strconv.ParseUint(s, 10, 0)
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, errors.New("zero id")
	}
	return uint(n), nil
}
