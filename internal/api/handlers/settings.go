package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/okovalenko/coursereview-backend/internal/render"
	"github.com/okovalenko/coursereview-backend/internal/services"
	"github.com/okovalenko/coursereview-backend/internal/utils"
)

// SettingsHandler serves the site settings and the themed assets built
// from them.
type SettingsHandler struct {
	settings *services.SettingsService
	renderer *render.Renderer
}

func NewSettingsHandler(settings *services.SettingsService, renderer *render.Renderer) *SettingsHandler {
	return &SettingsHandler{settings: settings, renderer: renderer}
}

func (h *SettingsHandler) Get(c *gin.Context) {
	utils.SendSuccess(c, "Settings retrieved successfully", h.settings.All())
}

type updateSettingsRequest struct {
	Settings map[string]string `json:"settings" binding:"required"`
}

func (h *SettingsHandler) Update(c *gin.Context) {
	var req updateSettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, "Invalid request data")
		return
	}

	for name, value := range req.Settings {
		if err := h.settings.Set(name, value); err != nil {
			utils.SendError(c, http.StatusBadRequest, "Invalid setting "+name, err)
			return
		}
	}

	utils.SendSuccess(c, "Settings updated successfully", h.settings.All())
}

// StarSVG serves the rating star recolored with the configured theme color.
func (h *SettingsHandler) StarSVG(c *gin.Context) {
	c.Header("Cache-Control", "public, max-age=3600")
	c.Data(http.StatusOK, "image/svg+xml", []byte(h.renderer.StarSVG()))
}
