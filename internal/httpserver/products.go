package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront-cart/internal/domain"
)

func (h *handlers) listProducts(c *gin.Context) {
	products, err := h.products.List(c.Request.Context())
	if err != nil {
		h.respondError(c, err, "Products not found")
		return
	}
	if products == nil {
		products = []domain.Product{}
	}
	respond(c, http.StatusOK, "", products)
}

func (h *handlers) getProduct(c *gin.Context) {
	p, err := h.products.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err, "Product not found")
		return
	}
	respond(c, http.StatusOK, "", productPayload{Product: *p})
}
