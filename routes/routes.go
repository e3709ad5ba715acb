package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/nruangsri/BEPromote/config"
	"github.com/nruangsri/BEPromote/handlers"
	"github.com/nruangsri/BEPromote/middlewares"
)

// Register ผูกทุก HTTP route ของระบบ
func Register(e *echo.Echo, cfg *config.Config) {
	// ===== Handlers (shared singletons) =====
	auth := handlers.NewAuthHandler(cfg.JWTSecret)
	school := handlers.NewSchoolHandler()
	std := handlers.NewStudentHandler()
	tch := handlers.NewTeacherHandler()
	cls := handlers.NewClassroomHandler()
	yr := handlers.NewAcademicYearHandler()
	pr := handlers.NewPromoteHandler()
	dash := handlers.NewDashboardHandler()

	// ===== Public =====
	e.GET("/healthz", handlers.Health)
	e.POST("/auth/staff/login", auth.StaffLogin)

	// ===== Protected =====
	authMW := middlewares.RequireAuth(cfg.JWTSecret)
	api := e.Group("", authMW, middlewares.RequireRole("staff", "admin"))

	api.PUT("/auth/password", auth.ChangePassword)

	// School profile (record เดียว ใช้ตอน initial setup)
	api.GET("/school", school.Get)
	api.POST("/school", school.CreateOrUpdate)
	api.DELETE("/school", school.Delete)

	// People
	api.GET("/students", std.List)
	api.GET("/students/:id", std.Get)
	api.POST("/students", std.Create)
	api.POST("/students/import", std.Import)
	api.PUT("/students/:id", std.Update)
	api.DELETE("/students/:id", std.Delete)

	api.GET("/teachers", tch.List)
	api.POST("/teachers", tch.Create)
	api.PUT("/teachers/:id", tch.Update)
	api.DELETE("/teachers/:id", tch.Delete)

	// Academic years
	api.GET("/academic-years", yr.List)
	api.POST("/academic-years", yr.Create)
	api.POST("/academic-years/ensure", yr.EnsureNext)
	api.DELETE("/academic-years/:id", yr.Delete)

	// Classrooms + enrollment reads
	api.GET("/classrooms", cls.List)
	api.POST("/classrooms", cls.Create)
	api.PUT("/classrooms/:id", cls.Update)
	api.DELETE("/classrooms/:id", cls.Delete)
	api.PUT("/classrooms/:id/teachers", cls.AssignTeachers)
	api.GET("/classrooms/:id/students", cls.ListStudents)

	// Dashboard
	api.GET("/dashboard/years/:id/summary", dash.YearSummary)

	// ===== Promotion engine (admin เท่านั้น) =====
	admin := e.Group("", authMW, middlewares.RequireRole("admin"))
	admin.GET("/promote", pr.Preview)
	admin.POST("/promote", pr.Commit)
}
