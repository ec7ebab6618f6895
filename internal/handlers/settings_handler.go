package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront-service/internal/apperr"
	"storefront-service/internal/models"
	"storefront-service/internal/services"
)

type SettingsHandler struct {
	settings *services.SettingsService
}

// NewSettingsHandler creates a new settings handler
func NewSettingsHandler(settings *services.SettingsService) *SettingsHandler {
	return &SettingsHandler{settings: settings}
}

// GetSetting returns a storefront setting by key
// @Summary Get a storefront setting
// @Tags settings
// @Produce json
// @Param key path string true "Setting key"
// @Success 200 {object} models.APIResponse
// @Failure 404 {object} models.APIResponse
// @Router /api/v1/settings/{key} [get]
func (h *SettingsHandler) GetSetting(c *gin.Context) {
	setting, err := h.settings.Get(c.Param("key"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.APIResponse{
		Success: true,
		Data:    setting,
	})
}

// PutSetting writes a storefront setting
// @Summary Write a storefront setting
// @Tags settings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param key path string true "Setting key"
// @Param request body models.PutSettingRequest true "Setting value"
// @Success 200 {object} models.APIResponse
// @Failure 400 {object} models.APIResponse
// @Router /api/v1/admin/settings/{key} [put]
func (h *SettingsHandler) PutSetting(c *gin.Context) {
	var req models.PutSettingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperr.Validation("invalid request body: %v", err))
		return
	}

	setting, err := h.settings.Put(c.Param("key"), req.Value)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.APIResponse{
		Success: true,
		Data:    setting,
		Message: "Setting saved",
	})
}
