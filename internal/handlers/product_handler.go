package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"storefront-service/internal/apperr"
	"storefront-service/internal/models"
	"storefront-service/internal/services"
)

type ProductHandler struct {
	catalog *services.CatalogService
	reviews *services.ReviewService
}

// NewProductHandler creates a new product handler
func NewProductHandler(catalog *services.CatalogService, reviews *services.ReviewService) *ProductHandler {
	return &ProductHandler{catalog: catalog, reviews: reviews}
}

// ListProducts lists catalog products
// @Summary List products
// @Description List catalog products, optionally filtered by category
// @Tags products
// @Produce json
// @Param category query string false "Category filter"
// @Param page query int false "Page"
// @Param limit query int false "Page size"
// @Success 200 {object} models.APIResponse
// @Router /api/v1/products [get]
func (h *ProductHandler) ListProducts(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	products, total, err := h.catalog.List(c.Query("category"), page, limit)
	if err != nil {
		respondError(c, apperr.Upstream("list products", err))
		return
	}

	c.Header("X-Total-Count", strconv.FormatInt(total, 10))
	c.JSON(http.StatusOK, models.APIResponse{
		Success: true,
		Data:    products,
	})
}

// GetProduct returns a single product
// @Summary Get product
// @Tags products
// @Produce json
// @Param id path string true "Product ID"
// @Success 200 {object} models.APIResponse
// @Failure 404 {object} models.APIResponse
// @Router /api/v1/products/{id} [get]
func (h *ProductHandler) GetProduct(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, apperr.Validation("invalid product id"))
		return
	}

	product, err := h.catalog.Get(id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.APIResponse{
		Success: true,
		Data:    product,
	})
}

// ListProductReviews returns a product's approved reviews
// @Summary List approved reviews for a product
// @Tags reviews
// @Produce json
// @Param id path string true "Product ID"
// @Success 200 {object} models.APIResponse
// @Router /api/v1/products/{id}/reviews [get]
func (h *ProductHandler) ListProductReviews(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, apperr.Validation("invalid product id"))
		return
	}

	reviews, err := h.reviews.ListApproved(id)
	if err != nil {
		respondError(c, apperr.Upstream("list reviews", err))
		return
	}

	c.JSON(http.StatusOK, models.APIResponse{
		Success: true,
		Data:    reviews,
	})
}
