package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/ssis/internal/app/models"
	"github.com/yigit/ssis/internal/app/models/dto"
	"github.com/yigit/ssis/internal/app/services"
	"github.com/yigit/ssis/internal/middleware"
)

// CollegeController handles college-related operations
type CollegeController struct {
	collegeService  services.CollegeService
	registryService services.RegistryService
}

// NewCollegeController creates a new CollegeController
func NewCollegeController(collegeService services.CollegeService, registryService services.RegistryService) *CollegeController {
	return &CollegeController{
		collegeService:  collegeService,
		registryService: registryService,
	}
}

// ListColleges returns one page of colleges
// @Summary List colleges
// @Description Searches, sorts and paginates colleges
// @Tags colleges
// @Produce json
// @Param page query int false "Page number (1-based)"
// @Param size query int false "Page size (max 100)"
// @Param search_field query string false "Field label or column to search; empty searches every field"
// @Param search_value query string false "Case-insensitive substring"
// @Param sort_field query string false "Field label or column to sort by"
// @Param sort_order query string false "ASC or DESC"
// @Success 200 {object} dto.APIResponse "Colleges retrieved successfully"
// @Failure 400 {object} dto.APIResponse "Unknown search field"
// @Router /colleges [get]
func (c *CollegeController) ListColleges(ctx *gin.Context) {
	var query models.ListQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	page, err := c.collegeService.ListColleges(ctx, query)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(page, ""))
}

// ListCollegeCodes returns every college code, for choosing a program's college
// @Summary List college codes
// @Tags colleges
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.CodesResponse}
// @Router /colleges/codes [get]
func (c *CollegeController) ListCollegeCodes(ctx *gin.Context) {
	codes, err := c.registryService.Codes(ctx, models.EntityCollege)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.CodesResponse{
		Entity: string(models.EntityCollege),
		Codes:  codes,
	}, ""))
}

// GetCollege retrieves a college by code
// @Summary Get college details
// @Tags colleges
// @Produce json
// @Param code path string true "College code"
// @Success 200 {object} dto.APIResponse{data=models.College}
// @Failure 404 {object} dto.APIResponse "College not found"
// @Router /colleges/{code} [get]
func (c *CollegeController) GetCollege(ctx *gin.Context) {
	college, err := c.collegeService.GetCollege(ctx, ctx.Param("code"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(college, ""))
}

// CreateCollege handles college creation
// @Summary Create a new college
// @Tags colleges
// @Accept json
// @Produce json
// @Param request body models.College true "College information"
// @Success 201 {object} dto.APIResponse{data=models.College} "College added successfully"
// @Failure 400 {object} dto.APIResponse "Invalid college data"
// @Failure 409 {object} dto.APIResponse "College Code already exists"
// @Router /colleges [post]
func (c *CollegeController) CreateCollege(ctx *gin.Context) {
	var college models.College
	if err := ctx.ShouldBindJSON(&college); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	created, err := c.collegeService.CreateCollege(ctx, &college)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(created, "College added successfully."))
}

// UpdateCollege updates a college, possibly changing its code
// @Summary Update a college
// @Tags colleges
// @Accept json
// @Produce json
// @Param code path string true "Current college code"
// @Param request body models.College true "College information"
// @Success 200 {object} dto.APIResponse{data=models.College} "College updated successfully"
// @Failure 400 {object} dto.APIResponse "Invalid college data"
// @Failure 404 {object} dto.APIResponse "College not found"
// @Failure 409 {object} dto.APIResponse "College Code already exists"
// @Router /colleges/{code} [put]
func (c *CollegeController) UpdateCollege(ctx *gin.Context) {
	var college models.College
	if err := ctx.ShouldBindJSON(&college); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	updated, err := c.collegeService.UpdateCollege(ctx, ctx.Param("code"), &college)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(updated, "College updated successfully."))
}

// DeleteCollege deletes a college and cascades to its programs
// @Summary Delete a college
// @Tags colleges
// @Produce json
// @Param code path string true "College code"
// @Success 200 {object} dto.APIResponse{data=models.CascadeResult}
// @Failure 404 {object} dto.APIResponse "College not found"
// @Router /colleges/{code} [delete]
func (c *CollegeController) DeleteCollege(ctx *gin.Context) {
	result, err := c.collegeService.DeleteCollege(ctx, ctx.Param("code"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(result, deleteMessage(result)))
}
