package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/gcompare/gcompare_api/internal/service"
	"github.com/gcompare/gcompare_api/internal/utils"
)

// PlatformHandler handles the platform listing endpoint.
type PlatformHandler struct {
	platformService *service.PlatformService
}

// NewPlatformHandler constructs a PlatformHandler.
func NewPlatformHandler(platformService *service.PlatformService) *PlatformHandler {
	return &PlatformHandler{platformService: platformService}
}

// GetPlatforms returns active platform summaries sorted by name ascending.
func (h *PlatformHandler) GetPlatforms(c *gin.Context) {
	platforms, err := h.platformService.GetActivePlatforms(c.Request.Context())
	if err != nil {
		utils.Error(c, 500, "INTERNAL_ERROR", "Failed to get platforms")
		return
	}

	utils.Success(c, 200, "Platforms retrieved successfully", gin.H{
		"platforms": platforms,
	})
}
