package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"storefront-service/internal/apperr"
	"storefront-service/internal/middleware"
	"storefront-service/internal/models"
	"storefront-service/internal/services"
)

type OrderHandler struct {
	orders  *services.OrderService
	invoice services.InvoiceRenderer
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(orders *services.OrderService, invoice services.InvoiceRenderer) *OrderHandler {
	return &OrderHandler{orders: orders, invoice: invoice}
}

// ListMyOrders lists the caller's orders, newest first
// @Summary List own orders
// @Tags orders
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.APIResponse
// @Router /api/v1/orders [get]
func (h *OrderHandler) ListMyOrders(c *gin.Context) {
	identity := middleware.IdentityFrom(c)
	orders, err := h.orders.ListForCustomer(identity.Email)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.APIResponse{
		Success: true,
		Data:    orders,
	})
}

// GetOrder returns one of the caller's orders
// @Summary Get an order
// @Tags orders
// @Produce json
// @Security BearerAuth
// @Param id path string true "Order ID"
// @Success 200 {object} models.APIResponse
// @Failure 404 {object} models.APIResponse
// @Router /api/v1/orders/{id} [get]
func (h *OrderHandler) GetOrder(c *gin.Context) {
	order, err := h.ownedOrder(c)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.APIResponse{
		Success: true,
		Data:    order,
	})
}

// DownloadInvoice streams the order's PDF invoice
// @Summary Download order invoice
// @Tags orders
// @Produce application/pdf
// @Security BearerAuth
// @Param id path string true "Order ID"
// @Success 200 {file} binary
// @Failure 404 {object} models.APIResponse
// @Router /api/v1/orders/{id}/invoice [get]
func (h *OrderHandler) DownloadInvoice(c *gin.Context) {
	order, err := h.ownedOrder(c)
	if err != nil {
		respondError(c, err)
		return
	}

	pdf, err := h.invoice.Render(h.orders.Snapshot(order))
	if err != nil {
		respondError(c, apperr.Upstream("render invoice", err))
		return
	}

	filename := fmt.Sprintf("invoice-%s.pdf", order.ID)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Data(http.StatusOK, "application/pdf", pdf)
}

// ownedOrder loads the order and checks the caller may see it: owners by
// email match, admins always.
func (h *OrderHandler) ownedOrder(c *gin.Context) (*models.Order, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return nil, apperr.Validation("invalid order id")
	}
	order, err := h.orders.Get(id)
	if err != nil {
		return nil, err
	}
	identity := middleware.IdentityFrom(c)
	if identity.Role.IsAdmin() || strings.EqualFold(order.CustomerEmail, identity.Email) {
		return order, nil
	}
	// Hide the order's existence from non-owners.
	return nil, apperr.NotFound("order", id.String())
}
