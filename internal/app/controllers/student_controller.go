package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yigit/ssis/internal/app/models"
	"github.com/yigit/ssis/internal/app/models/dto"
	"github.com/yigit/ssis/internal/app/services"
	"github.com/yigit/ssis/internal/middleware"
)

// StudentController handles student-related operations
type StudentController struct {
	studentService services.StudentService
}

// NewStudentController creates a new StudentController
func NewStudentController(studentService services.StudentService) *StudentController {
	return &StudentController{studentService: studentService}
}

// ListStudents returns one page of students, newest ID numbers first by default
// @Summary List students
// @Description Searches, sorts and paginates students; newest ID numbers first by default
// @Tags students
// @Produce json
// @Param page query int false "Page number (1-based)"
// @Param size query int false "Page size (max 100)"
// @Param search_field query string false "Field label or column to search; empty searches every field"
// @Param search_value query string false "Case-insensitive substring"
// @Param sort_field query string false "Field label or column to sort by"
// @Param sort_order query string false "ASC or DESC"
// @Success 200 {object} dto.APIResponse "Students retrieved successfully"
// @Failure 400 {object} dto.APIResponse "Unknown search field"
// @Router /students [get]
func (c *StudentController) ListStudents(ctx *gin.Context) {
	var query models.ListQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	page, err := c.studentService.ListStudents(ctx, query)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(page, ""))
}

// GetStudent retrieves a student by ID number
// @Summary Get student details
// @Tags students
// @Produce json
// @Param id path string true "ID number"
// @Success 200 {object} dto.APIResponse{data=models.Student}
// @Failure 404 {object} dto.APIResponse "Student not found"
// @Router /students/{id} [get]
func (c *StudentController) GetStudent(ctx *gin.Context) {
	student, err := c.studentService.GetStudent(ctx, ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(student, ""))
}

// CreateStudent handles student creation
// @Summary Create a new student
// @Tags students
// @Accept json
// @Produce json
// @Param request body models.Student true "Student information"
// @Success 201 {object} dto.APIResponse{data=models.Student} "Student added successfully"
// @Failure 400 {object} dto.APIResponse "Invalid student data"
// @Failure 409 {object} dto.APIResponse "ID Number already exists"
// @Failure 422 {object} dto.APIResponse "Program does not exist"
// @Router /students [post]
func (c *StudentController) CreateStudent(ctx *gin.Context) {
	var student models.Student
	if err := ctx.ShouldBindJSON(&student); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	created, err := c.studentService.CreateStudent(ctx, &student)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, dto.NewSuccessResponse(created, "Student added successfully."))
}

// UpdateStudent updates a student, possibly changing the ID number
// @Summary Update a student
// @Tags students
// @Accept json
// @Produce json
// @Param id path string true "Current ID number"
// @Param request body models.Student true "Student information"
// @Success 200 {object} dto.APIResponse{data=models.Student} "Student updated successfully"
// @Failure 400 {object} dto.APIResponse "Invalid student data"
// @Failure 404 {object} dto.APIResponse "Student not found"
// @Failure 409 {object} dto.APIResponse "ID Number already exists"
// @Failure 422 {object} dto.APIResponse "Program does not exist"
// @Router /students/{id} [put]
func (c *StudentController) UpdateStudent(ctx *gin.Context) {
	var student models.Student
	if err := ctx.ShouldBindJSON(&student); err != nil {
		middleware.HandleBindError(ctx, err)
		return
	}

	updated, err := c.studentService.UpdateStudent(ctx, ctx.Param("id"), &student)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(updated, "Student updated successfully."))
}

// DeleteStudent deletes a student
// @Summary Delete a student
// @Tags students
// @Produce json
// @Param id path string true "ID number"
// @Success 200 {object} dto.APIResponse{data=models.CascadeResult}
// @Failure 404 {object} dto.APIResponse "Student not found"
// @Router /students/{id} [delete]
func (c *StudentController) DeleteStudent(ctx *gin.Context) {
	result, err := c.studentService.DeleteStudent(ctx, ctx.Param("id"))
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(result, deleteMessage(result)))
}
