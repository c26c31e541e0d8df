package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/ssis/internal/app/models"
	"github.com/yigit/ssis/internal/app/models/dto"
	"github.com/yigit/ssis/internal/app/services"
	"github.com/yigit/ssis/internal/middleware"
)

// ProgramController handles program-related operations
type ProgramController struct {
	programService  services.ProgramService
	registryService services.RegistryService
}

// NewProgramController creates a new ProgramController
func NewProgramController(programService services.ProgramService, registryService services.RegistryService) *ProgramController {
	return &ProgramController{
		programService:  programService,
		registryService: registryService,
	}
}

// ListPrograms returns one page of programs
// @Summary List programs
// @Description Searches, sorts and paginates programs
// @Tags programs
// @Produce json
// @Param page query int false "Page number (1-based)"
// @Param size query int false "Page size (max 100)"
// @Param search_field query string false "Field label or column to search; empty searches every field"
// @Param search_value query string false "Case-insensitive substring"
// @Param sort_field query string false "Field label or column to sort by"
// @Param sort_order query string false "ASC or DESC"
// @Success 200 {object} dto.APIResponse "Programs retrieved successfully"
// @Failure 400 {object} dto.APIResponse "Unknown search field"
// @Router /programs [get]
func (c *ProgramController) ListPrograms(ctx *gin.Context) {
	var query models.ListQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	page, err := c.programService.ListPrograms(ctx, query)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(page, ""))
}

// ListProgramCodes returns every program code, for choosing a student's program
// @Summary List program codes
// @Tags programs
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.CodesResponse}
// @Router /programs/codes [get]
func (c *ProgramController) ListProgramCodes(ctx *gin.Context) {
	codes, err := c.registryService.Codes(ctx, models.EntityProgram)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.CodesResponse{
		Entity: string(models.EntityProgram),
		Codes:  codes,
	}, ""))
}

// GetProgram retrieves a program by code
// @Summary Get program details
// @Tags programs
// @Produce json
// @Param code path string true "Program code"
// @Success 200 {object} dto.APIResponse{data=models.Program}
// @Failure 404 {object} dto.APIResponse "Program not found"
// @Router /programs/{code} [get]
func (c *ProgramController) GetProgram(ctx *gin.Context) {
	program, err := c.programService.GetProgram(ctx, ctx.Param("code"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(program, ""))
}

// CreateProgram handles program creation
// @Summary Create a new program
// @Tags programs
// @Accept json
// @Produce json
// @Param request body models.Program true "Program information"
// @Success 201 {object} dto.APIResponse{data=models.Program} "Program added successfully"
// @Failure 400 {object} dto.APIResponse "Invalid program data"
// @Failure 409 {object} dto.APIResponse "Program Code already exists"
// @Failure 422 {object} dto.APIResponse "College does not exist"
// @Router /programs [post]
func (c *ProgramController) CreateProgram(ctx *gin.Context) {
	var program models.Program
	if err := ctx.ShouldBindJSON(&program); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	created, err := c.programService.CreateProgram(ctx, &program)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(created, "Program added successfully."))
}

// UpdateProgram updates a program, possibly changing its code
// @Summary Update a program
// @Tags programs
// @Accept json
// @Produce json
// @Param code path string true "Current program code"
// @Param request body models.Program true "Program information"
// @Success 200 {object} dto.APIResponse{data=models.Program} "Program updated successfully"
// @Failure 400 {object} dto.APIResponse "Invalid program data"
// @Failure 404 {object} dto.APIResponse "Program not found"
// @Failure 409 {object} dto.APIResponse "Program Code already exists"
// @Failure 422 {object} dto.APIResponse "College does not exist"
// @Router /programs/{code} [put]
func (c *ProgramController) UpdateProgram(ctx *gin.Context) {
	var program models.Program
	if err := ctx.ShouldBindJSON(&program); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	updated, err := c.programService.UpdateProgram(ctx, ctx.Param("code"), &program)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(updated, "Program updated successfully."))
}

// DeleteProgram deletes a program and cascades to its students
// @Summary Delete a program
// @Tags programs
// @Produce json
// @Param code path string true "Program code"
// @Success 200 {object} dto.APIResponse{data=models.CascadeResult}
// @Failure 404 {object} dto.APIResponse "Program not found"
// @Router /programs/{code} [delete]
func (c *ProgramController) DeleteProgram(ctx *gin.Context) {
	result, err := c.programService.DeleteProgram(ctx, ctx.Param("code"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(result, deleteMessage(result)))
}
