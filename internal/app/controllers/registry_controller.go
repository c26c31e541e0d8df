package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/ssis/internal/app/models/dto"
	"github.com/yigit/ssis/internal/app/services"
	"github.com/yigit/ssis/internal/middleware"
)

// RegistryController serves the counters and the health check
type RegistryController struct {
	registryService services.RegistryService
}

// NewRegistryController creates a new RegistryController
func NewRegistryController(registryService services.RegistryService) *RegistryController {
	return &RegistryController{registryService: registryService}
}

// GetCounts returns the number of colleges, programs and students
// @Summary Record counters
// @Tags registry
// @Produce json
// @Success 200 {object} dto.APIResponse{data=models.Counts}
// @Router /counts [get]
func (c *RegistryController) GetCounts(ctx *gin.Context) {
	counts, err := c.registryService.Counts(ctx)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(counts, ""))
}

// Ping reports liveness and the configured cascade mode
// @Summary Liveness check
// @Description Reports liveness and the configured cascade mode
// @Tags registry
// @Produce json
// @Success 200 {object} dto.APIResponse "pong"
// @Router /ping [get]
func (c *RegistryController) Ping(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(gin.H{
		"status":       "ok",
		"cascade_mode": c.registryService.CascadeMode(),
	}, "pong"))
}
