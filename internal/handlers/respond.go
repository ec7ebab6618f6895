package handlers

import (
	"github.com/gin-gonic/gin"

	"storefront-service/internal/apperr"
	"storefront-service/internal/models"
)

// respondError maps a service error onto the response envelope. Upstream
// and configuration detail stays in the logs.
func respondError(c *gin.Context, err error) {
	c.JSON(apperr.HTTPStatus(err), models.APIResponse{
		Success: false,
		Message: apperr.PublicMessage(err),
	})
}
