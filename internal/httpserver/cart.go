package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	cartsvc "storefront-cart/internal/service/cart"
)

type addItemRequest struct {
	ProductID      string  `json:"productId" binding:"required"`
	Quantity       int     `json:"quantity" binding:"omitempty,min=1,max=99"`
	SelectedFlavor *string `json:"selectedFlavor"`
}

type updateQuantityRequest struct {
	Quantity *int `json:"quantity" binding:"required,min=0,max=99"`
}

func (h *handlers) getCart(c *gin.Context) {
	cart, err := h.carts.Get(c.Request.Context(), c.GetString(userIDKey))
	if err != nil {
		h.respondError(c, err, "Cart not found")
		return
	}
	respond(c, http.StatusOK, "", cart)
}

func (h *handlers) addItem(c *gin.Context) {
	var req addItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithMessage(c, http.StatusBadRequest, bindingMessage(err))
		return
	}
	in := cartsvc.AddItemInput{ProductID: req.ProductID, Quantity: req.Quantity}
	if in.Quantity == 0 {
		in.Quantity = 1
	}
	if req.SelectedFlavor != nil {
		in.SelectedFlavor = *req.SelectedFlavor
	}

	cart, err := h.carts.AddItem(c.Request.Context(), c.GetString(userIDKey), in)
	if err != nil {
		h.respondError(c, err, "Product not found")
		return
	}
	respond(c, http.StatusOK, "Item added to cart", cart)
}

func (h *handlers) updateQuantity(c *gin.Context) {
	var req updateQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithMessage(c, http.StatusBadRequest, bindingMessage(err))
		return
	}
	cart, err := h.carts.UpdateQuantity(c.Request.Context(), c.GetString(userIDKey), c.Param("productId"), *req.Quantity)
	if err != nil {
		h.respondError(c, err, "Item not found in cart")
		return
	}
	respond(c, http.StatusOK, "Cart updated", cart)
}

func (h *handlers) removeItem(c *gin.Context) {
	cart, err := h.carts.RemoveItem(c.Request.Context(), c.GetString(userIDKey), c.Param("productId"))
	if err != nil {
		h.respondError(c, err, "Item not found in cart")
		return
	}
	respond(c, http.StatusOK, "Item removed from cart", cart)
}

func (h *handlers) clearCart(c *gin.Context) {
	cart, err := h.carts.Clear(c.Request.Context(), c.GetString(userIDKey))
	if err != nil {
		h.respondError(c, err, "Cart not found")
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Cart cleared", "cart": cart})
}
