package httphandler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/niksmo/spellshop/internal/core/domain"
	"github.com/niksmo/spellshop/internal/core/port"
)

const itemRemoved = "item removed"

type CartHandler struct {
	cart port.CartKeeper
}

// RegisterCart expects user to run IsLoggedIn.
func RegisterCart(user gin.IRouter, cart port.CartKeeper) {
	h := CartHandler{cart}
	user.GET("/cart", h.ListItems)
	user.POST("/cart/items", h.PostItem)
	user.PUT("/cart/items/:id", h.PutItem)
	user.DELETE("/cart/items/:id", h.DeleteItem)
}

var itemNotFound = errText{domain.ErrNotFound: "item not found"}

func (h CartHandler) ListItems(c *gin.Context) {
	const op = "CartHandler.ListItems"
	log := slog.With("op", op)

	claims, _ := claimsFrom(c)
	items, err := h.cart.ListItems(c.Request.Context(), claims.UserID)
	if err != nil {
		writeError(c, log, err, nil)
		return
	}
	c.JSON(http.StatusOK, toCartItems(items))
}

func (h CartHandler) PostItem(c *gin.Context) {
	const op = "CartHandler.PostItem"
	log := slog.With("op", op)

	var req cartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, log, badRequest("invalid JSON data"), nil)
		return
	}

	claims, _ := claimsFrom(c)
	item, err := h.cart.AddItem(c.Request.Context(), claims.UserID, req.input())
	if err != nil {
		writeError(c, log, err, nil)
		return
	}
	c.JSON(http.StatusOK, toCartItem(item))
}

func (h CartHandler) PutItem(c *gin.Context) {
	const op = "CartHandler.PutItem"
	log := slog.With("op", op)

	id, err := pathID(c)
	if err != nil {
		writeError(c, log, err, nil)
		return
	}

	var req quantityRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Quantity == nil {
		writeError(c, log, badRequest("quantity is required"), nil)
		return
	}

	claims, _ := claimsFrom(c)
	item, removed, err := h.cart.UpdateItem(
		c.Request.Context(), claims.UserID, id, *req.Quantity,
	)
	if err != nil {
		writeError(c, log, err, itemNotFound)
		return
	}
	if removed {
		c.JSON(http.StatusOK, itemRemoved)
		return
	}
	c.JSON(http.StatusOK, toCartItem(item))
}

func (h CartHandler) DeleteItem(c *gin.Context) {
	const op = "CartHandler.DeleteItem"
	log := slog.With("op", op)

	id, err := pathID(c)
	if err != nil {
		writeError(c, log, err, nil)
		return
	}

	claims, _ := claimsFrom(c)
	if err := h.cart.RemoveItem(c.Request.Context(), claims.UserID, id); err != nil {
		writeError(c, log, err, itemNotFound)
		return
	}
	c.JSON(http.StatusOK, itemRemoved)
}
