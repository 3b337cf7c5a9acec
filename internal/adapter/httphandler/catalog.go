package httphandler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/niksmo/spellshop/internal/core/domain"
	"github.com/niksmo/spellshop/internal/core/port"
)

type CategoriesHandler struct {
	categories port.CategoriesCatalog
	products   port.ProductsCatalog
}

func RegisterCategories(
	public, admin gin.IRouter,
	categories port.CategoriesCatalog,
	products port.ProductsCatalog,
) {
	h := CategoriesHandler{categories, products}
	public.GET("/categories", h.ListCategories)
	public.GET("/categories/:id/products", h.ListProducts)
	admin.POST("/categories", h.PostCategory)
}

func (h CategoriesHandler) ListCategories(c *gin.Context) {
	const op = "CategoriesHandler.ListCategories"
	log := slog.With("op", op)

	cs, err := h.categories.ListCategories(c.Request.Context())
	if err != nil {
		writeError(c, log, err, nil)
		return
	}
	c.JSON(http.StatusOK, toCategories(cs))
}

func (h CategoriesHandler) PostCategory(c *gin.Context) {
	const op = "CategoriesHandler.PostCategory"
	log := slog.With("op", op)

	var req nameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, log, badRequest("invalid JSON data"), nil)
		return
	}

	ct, err := h.categories.AddCategory(c.Request.Context(), req.Name)
	if err != nil {
		writeError(c, log, err, errText{
			domain.ErrConflict: "Category already exists",
		})
		return
	}

	log.Info("category created", "categoryID", ct.CategoryID)
	c.JSON(http.StatusOK, "Category added")
}

func (h CategoriesHandler) ListProducts(c *gin.Context) {
	const op = "CategoriesHandler.ListProducts"
	log := slog.With("op", op)

	id, err := pathID(c)
	if err != nil {
		writeError(c, log, err, nil)
		return
	}

	ps, err := h.products.ListProductsByCategory(c.Request.Context(), id)
	if err != nil {
		writeError(c, log, err, errText{
			domain.ErrNotFound: "no products found",
		})
		return
	}
	c.JSON(http.StatusOK, toProducts(ps, false))
}

type CollectionsHandler struct {
	collections port.CollectionsCatalog
	products    port.ProductsCatalog
}

func RegisterCollections(
	public, admin gin.IRouter,
	collections port.CollectionsCatalog,
	products port.ProductsCatalog,
) {
	h := CollectionsHandler{collections, products}
	public.GET("/collections", h.ListCollections)
	public.GET("/collections/:id/products", h.ListProducts)
	admin.POST("/collections", h.PostCollection)
}

func (h CollectionsHandler) ListCollections(c *gin.Context) {
	const op = "CollectionsHandler.ListCollections"
	log := slog.With("op", op)

	cs, err := h.collections.ListCollections(c.Request.Context())
	if err != nil {
		writeError(c, log, err, nil)
		return
	}
	c.JSON(http.StatusOK, toCollections(cs))
}

func (h CollectionsHandler) PostCollection(c *gin.Context) {
	const op = "CollectionsHandler.PostCollection"
	log := slog.With("op", op)

	var req nameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, log, badRequest("invalid JSON data"), nil)
		return
	}

	ct, err := h.collections.AddCollection(c.Request.Context(), req.Name)
	if err != nil {
		writeError(c, log, err, errText{
			domain.ErrConflict: "collection already exists",
		})
		return
	}

	log.Info("collection created", "collectionID", ct.CollectionID)
	c.JSON(http.StatusOK, "collection created")
}

func (h CollectionsHandler) ListProducts(c *gin.Context) {
	const op = "CollectionsHandler.ListProducts"
	log := slog.With("op", op)

	id, err := pathID(c)
	if err != nil {
		writeError(c, log, err, nil)
		return
	}

	ps, err := h.products.ListProductsByCollection(c.Request.Context(), id)
	if err != nil {
		writeError(c, log, err, nil)
		return
	}
	c.JSON(http.StatusOK, CollectionProducts{Products: toProducts(ps, true)})
}

type SpellsHandler struct {
	spells port.SpellsCatalog
}

func RegisterSpells(public, admin gin.IRouter, spells port.SpellsCatalog) {
	h := SpellsHandler{spells}
	public.GET("/spells", h.ListSpells)
	public.GET("/spells/:id", h.GetSpell)
	admin.POST("/spells", h.PostSpell)
}

func (h SpellsHandler) ListSpells(c *gin.Context) {
	const op = "SpellsHandler.ListSpells"
	log := slog.With("op", op)

	ss, err := h.spells.ListSpells(c.Request.Context())
	if err != nil {
		writeError(c, log, err, nil)
		return
	}
	c.JSON(http.StatusOK, toSpells(ss))
}

func (h SpellsHandler) GetSpell(c *gin.Context) {
	const op = "SpellsHandler.GetSpell"
	log := slog.With("op", op)

	id, err := pathID(c)
	if err != nil {
		writeError(c, log, err, nil)
		return
	}

	s, err := h.spells.GetSpell(c.Request.Context(), id)
	if err != nil {
		writeError(c, log, err, errText{domain.ErrNotFound: "Spell not found"})
		return
	}
	c.JSON(http.StatusOK, toSpell(s))
}

func (h SpellsHandler) PostSpell(c *gin.Context) {
	const op = "SpellsHandler.PostSpell"
	log := slog.With("op", op)

	var req spellRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, log, badRequest("invalid JSON data"), nil)
		return
	}

	s, err := h.spells.AddSpell(c.Request.Context(), req.newSpell())
	if err != nil {
		writeError(c, log, err, nil)
		return
	}

	log.Info("spell created", "spellID", s.SpellID)
	c.JSON(http.StatusOK, toSpell(s))
}
