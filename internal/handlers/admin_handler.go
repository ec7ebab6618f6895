package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"storefront-service/internal/apperr"
	"storefront-service/internal/health"
	"storefront-service/internal/models"
	"storefront-service/internal/repository"
	"storefront-service/internal/services"
)

// AdminHandler groups the back-office operations: product CRUD, order
// list/status, review moderation and role management. Role gating happens
// in the router via middleware.RequireRole.
type AdminHandler struct {
	products *services.ProductService
	orders   *services.OrderService
	reviews  *services.ReviewService
	roles    repository.RoleRepository
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(products *services.ProductService, orders *services.OrderService, reviews *services.ReviewService, roles repository.RoleRepository) *AdminHandler {
	return &AdminHandler{
		products: products,
		orders:   orders,
		reviews:  reviews,
		roles:    roles,
	}
}

// CreateProduct adds a catalog product
// @Summary Create product
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.CreateProductRequest true "Product"
// @Success 201 {object} models.APIResponse
// @Failure 400 {object} models.APIResponse
// @Router /api/v1/admin/products [post]
func (h *AdminHandler) CreateProduct(c *gin.Context) {
	var req models.CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperr.Validation("invalid request body: %v", err))
		return
	}
	product, err := h.products.Create(req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, models.APIResponse{
		Success: true,
		Data:    product,
	})
}

// UpdateProduct edits a catalog product
// @Summary Update product
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Product ID"
// @Param request body models.UpdateProductRequest true "Partial product"
// @Success 200 {object} models.APIResponse
// @Router /api/v1/admin/products/{id} [put]
func (h *AdminHandler) UpdateProduct(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, apperr.Validation("invalid product id"))
		return
	}
	var req models.UpdateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperr.Validation("invalid request body: %v", err))
		return
	}
	product, err := h.products.Update(id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.APIResponse{
		Success: true,
		Data:    product,
	})
}

// DeleteProduct soft-deletes a product
// @Summary Delete product
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "Product ID"
// @Success 200 {object} models.APIResponse
// @Router /api/v1/admin/products/{id} [delete]
func (h *AdminHandler) DeleteProduct(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, apperr.Validation("invalid product id"))
		return
	}
	if err := h.products.Delete(id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.APIResponse{
		Success: true,
		Message: "Product deleted",
	})
}

// SetStock overwrites a product's stock counter
// @Summary Set product stock
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Product ID"
// @Success 200 {object} models.APIResponse
// @Router /api/v1/admin/products/{id}/stock [patch]
func (h *AdminHandler) SetStock(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, apperr.Validation("invalid product id"))
		return
	}
	var req struct {
		Stock int `json:"stock"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperr.Validation("invalid request body: %v", err))
		return
	}
	if err := h.products.SetStock(id, req.Stock); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.APIResponse{
		Success: true,
		Message: "Stock updated",
	})
}

// ListOrders lists all orders
// @Summary List all orders
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.APIResponse
// @Router /api/v1/admin/orders [get]
func (h *AdminHandler) ListOrders(c *gin.Context) {
	orders, err := h.orders.ListAll()
	if err != nil {
		respondError(c, apperr.Upstream("list orders", err))
		return
	}
	c.JSON(http.StatusOK, models.APIResponse{
		Success: true,
		Data:    orders,
	})
}

// UpdateOrderStatus moves an order to a new status
// @Summary Update order status
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Order ID"
// @Success 200 {object} models.APIResponse
// @Failure 400 {object} models.APIResponse
// @Router /api/v1/admin/orders/{id}/status [patch]
func (h *AdminHandler) UpdateOrderStatus(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, apperr.Validation("invalid order id"))
		return
	}
	var req struct {
		Status models.OrderStatus `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperr.Validation("invalid request body: %v", err))
		return
	}
	order, err := h.orders.UpdateStatus(id, req.Status)
	if err != nil {
		health.RecordOrderOperation("update_status", false)
		respondError(c, err)
		return
	}
	health.RecordOrderOperation("update_status", true)
	c.JSON(http.StatusOK, models.APIResponse{
		Success: true,
		Data:    order,
	})
}

// ListReviews lists reviews for moderation
// @Summary List reviews by status
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param status query string false "pending | approved | rejected"
// @Success 200 {object} models.APIResponse
// @Router /api/v1/admin/reviews [get]
func (h *AdminHandler) ListReviews(c *gin.Context) {
	reviews, err := h.reviews.ListForModeration(models.ReviewStatus(c.Query("status")))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.APIResponse{
		Success: true,
		Data:    reviews,
	})
}

// ModerateReview approves or rejects a review
// @Summary Moderate a review
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Review ID"
// @Param request body models.ModerateReviewRequest true "Action"
// @Success 200 {object} models.APIResponse
// @Failure 400 {object} models.APIResponse
// @Router /api/v1/admin/reviews/{id}/moderate [post]
func (h *AdminHandler) ModerateReview(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, apperr.Validation("invalid review id"))
		return
	}
	var req models.ModerateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperr.Validation("invalid request body: %v", err))
		return
	}
	review, err := h.reviews.Moderate(id, req.Action)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.APIResponse{
		Success: true,
		Data:    review,
	})
}

// ListUsers lists role assignments
// @Summary List user role assignments
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.APIResponse
// @Router /api/v1/admin/users [get]
func (h *AdminHandler) ListUsers(c *gin.Context) {
	assignments, err := h.roles.List()
	if err != nil {
		respondError(c, apperr.Upstream("list role assignments", err))
		return
	}
	c.JSON(http.StatusOK, models.APIResponse{
		Success: true,
		Data:    assignments,
	})
}

// SetUserRole assigns a role to a user
// @Summary Set a user's role
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 200 {object} models.APIResponse
// @Failure 400 {object} models.APIResponse
// @Router /api/v1/admin/users/{id}/role [put]
func (h *AdminHandler) SetUserRole(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, apperr.Validation("invalid user id"))
		return
	}
	var req struct {
		Email string      `json:"email"`
		Role  models.Role `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperr.Validation("invalid request body: %v", err))
		return
	}
	assignment, err := h.roles.SetRole(id, req.Email, req.Role)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.APIResponse{
		Success: true,
		Data:    assignment,
	})
}
