package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/yigit/ssis/internal/app/controllers"
)

// SetupRouter configures all application routes
func SetupRouter(
	router *gin.Engine,
	collegeController *controllers.CollegeController,
	programController *controllers.ProgramController,
	studentController *controllers.StudentController,
	registryController *controllers.RegistryController,
) {
	// API version group
	v1 := router.Group("/api/v1")

	v1.GET("/ping", registryController.Ping)
	v1.GET("/counts", registryController.GetCounts)

	colleges := v1.Group("/colleges")
	{
		colleges.GET("", collegeController.ListColleges)
		colleges.GET("/codes", collegeController.ListCollegeCodes)
		colleges.GET("/:code", collegeController.GetCollege)
		colleges.POST("", collegeController.CreateCollege)
		colleges.PUT("/:code", collegeController.UpdateCollege)
		colleges.DELETE("/:code", collegeController.DeleteCollege)
	}

	programs := v1.Group("/programs")
	{
		programs.GET("", programController.ListPrograms)
		programs.GET("/codes", programController.ListProgramCodes)
		programs.GET("/:code", programController.GetProgram)
		programs.POST("", programController.CreateProgram)
		programs.PUT("/:code", programController.UpdateProgram)
		programs.DELETE("/:code", programController.DeleteProgram)
	}

	students := v1.Group("/students")
	{
		students.GET("", studentController.ListStudents)
		students.GET("/:id", studentController.GetStudent)
		students.POST("", studentController.CreateStudent)
		students.PUT("/:id", studentController.UpdateStudent)
		students.DELETE("/:id", studentController.DeleteStudent)
	}
}
