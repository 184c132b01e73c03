package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/gcompare/gcompare_api/internal/adapter"
	"github.com/gcompare/gcompare_api/internal/utils"
)

// ProductHandler exposes single-platform product operations: details,
// live price, and reviews, routed through the adapter registry.
type ProductHandler struct {
	registry *adapter.Registry
}

// NewProductHandler constructs a ProductHandler.
func NewProductHandler(registry *adapter.Registry) *ProductHandler {
	return &ProductHandler{registry: registry}
}

// GetProductDetails returns one platform's listing for an external id.
func (h *ProductHandler) GetProductDetails(c *gin.Context) {
	ad, ok := h.adapterFor(c)
	if !ok {
		return
	}

	product, err := ad.GetProductDetails(c.Request.Context(), c.Param("externalId"))
	if err != nil {
		h.writeAdapterError(c, err)
		return
	}

	utils.Success(c, 200, "Product retrieved successfully", product)
}

// GetProductPrice returns the current quote for an external id.
func (h *ProductHandler) GetProductPrice(c *gin.Context) {
	ad, ok := h.adapterFor(c)
	if !ok {
		return
	}

	quote, err := ad.GetProductPrice(c.Request.Context(), c.Param("externalId"))
	if err != nil {
		h.writeAdapterError(c, err)
		return
	}

	utils.Success(c, 200, "Price retrieved successfully", quote)
}

// GetReviews returns reviews for an external id. Platforms without review
// data yield an empty list.
func (h *ProductHandler) GetReviews(c *gin.Context) {
	ad, ok := h.adapterFor(c)
	if !ok {
		return
	}

	reviews, err := ad.GetReviews(c.Request.Context(), c.Param("externalId"))
	if err != nil {
		h.writeAdapterError(c, err)
		return
	}

	utils.Success(c, 200, "Reviews retrieved successfully", gin.H{
		"reviews": reviews,
	})
}

// adapterFor resolves the platform path parameter. On an unknown platform
// it writes the 404 response itself and reports false.
func (h *ProductHandler) adapterFor(c *gin.Context) (adapter.PlatformAdapter, bool) {
	ad, err := h.registry.Get(c.Param("platform"))
	if err != nil {
		utils.Error(c, 404, "PLATFORM_NOT_FOUND", "Unknown platform")
		return nil, false
	}
	return ad, true
}

// writeAdapterError maps adapter failures: unknown external ids are 404,
// everything else is a bad upstream.
func (h *ProductHandler) writeAdapterError(c *gin.Context, err error) {
	if errors.Is(err, adapter.ErrProductNotFound) {
		utils.Error(c, 404, "PRODUCT_NOT_FOUND", "Product not found on this platform")
		return
	}
	utils.Error(c, 502, "SOURCE_UNAVAILABLE", "Platform did not respond")
}
