package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/scms-platform/records-service/internal/config"
	"github.com/scms-platform/records-service/internal/models"
	"github.com/scms-platform/records-service/internal/services"
	"github.com/scms-platform/records-service/internal/utils"
)

type HandlerManager struct {
	profileHandler    *ProfileHandler
	courseHandler     *CourseHandler
	enrollmentHandler *EnrollmentHandler
	materialHandler   *MaterialHandler
	gradeHandler      *GradeHandler
	statsHandler      *StatsHandler
	reportHandler     *ReportHandler
	authMiddleware    *CasdoorAuthMiddleware
	serviceManager    services.ServiceManager
}

func NewHandlerManager(
	serviceManager services.ServiceManager,
	logger utils.Logger,
	casdoorConfig config.CasdoorConfig,
) *HandlerManager {
	authMiddleware := NewCasdoorAuthMiddleware(casdoorConfig, serviceManager.Profile())

	return &HandlerManager{
		profileHandler:    NewProfileHandler(serviceManager.Profile(), logger),
		courseHandler:     NewCourseHandler(serviceManager.Course(), logger),
		enrollmentHandler: NewEnrollmentHandler(serviceManager.Enrollment(), logger),
		materialHandler:   NewMaterialHandler(serviceManager.Material(), logger),
		gradeHandler:      NewGradeHandler(serviceManager.Grade(), logger),
		statsHandler:      NewStatsHandler(serviceManager.Stats(), serviceManager.Guard(), logger),
		reportHandler:     NewReportHandler(serviceManager.Report(), logger),
		authMiddleware:    authMiddleware,
		serviceManager:    serviceManager,
	}
}

// SetupRoutes sets up all API routes
func (hm *HandlerManager) SetupRoutes(router *gin.Engine) {
	// API v1 routes with authentication
	v1 := router.Group("/api/v1")
	v1.Use(hm.authMiddleware.AuthMiddleware())
	{
		// Signup completion - any authenticated identity
		v1.POST("/auth/signup", hm.profileHandler.Signup)

		// Profile routes
		profiles := v1.Group("/profiles")
		{
			profiles.GET("/me", hm.profileHandler.GetMe)
			profiles.GET("/:id", hm.profileHandler.GetProfile)
			profiles.PUT("/:id", hm.profileHandler.UpdateProfile)

			// Directory listing - Admins only
			profiles.GET("", hm.authMiddleware.RequireRoleMiddleware(models.RoleAdmin), hm.profileHandler.ListProfiles)
		}

		// Course routes
		courses := v1.Group("/courses")
		{
			// Catalog browsing - all authenticated users
			courses.GET("", hm.courseHandler.ListCourses)
			courses.GET("/:id", hm.courseHandler.GetCourse)
			courses.GET("/:id/materials", hm.materialHandler.ListCourseMaterials)

			// Create/modify courses - Lecturers and Admins only
			courses.POST("", hm.authMiddleware.RequireRoleMiddleware(models.RoleLecturer, models.RoleAdmin), hm.courseHandler.CreateCourse)
			courses.PUT("/:id", hm.authMiddleware.RequireRoleMiddleware(models.RoleLecturer, models.RoleAdmin), hm.courseHandler.UpdateCourse)
			courses.DELETE("/:id", hm.authMiddleware.RequireRoleMiddleware(models.RoleLecturer, models.RoleAdmin), hm.courseHandler.DeleteCourse)

			// Instructor assignment - Admins only
			courses.PUT("/:id/instructor", hm.authMiddleware.RequireRoleMiddleware(models.RoleAdmin), hm.courseHandler.AssignInstructor)

			// Seat management
			courses.POST("/:id/withdraw", hm.enrollmentHandler.Withdraw)
		}

		// Enrollment routes
		enrollments := v1.Group("/enrollments")
		{
			enrollments.POST("", hm.enrollmentHandler.Enroll)
			enrollments.GET("", hm.enrollmentHandler.ListEnrollments)
		}

		// Material routes - Lecturers and Admins manage, reads go through the course
		materials := v1.Group("/materials")
		{
			materials.POST("", hm.authMiddleware.RequireRoleMiddleware(models.RoleLecturer, models.RoleAdmin), hm.materialHandler.AddMaterial)
			materials.DELETE("/:id", hm.authMiddleware.RequireRoleMiddleware(models.RoleLecturer, models.RoleAdmin), hm.materialHandler.DeleteMaterial)
		}

		// Grade routes
		grades := v1.Group("/grades")
		{
			grades.POST("", hm.authMiddleware.RequireRoleMiddleware(models.RoleLecturer, models.RoleAdmin), hm.gradeHandler.AddGrade)
			grades.PUT("/:id", hm.authMiddleware.RequireRoleMiddleware(models.RoleLecturer, models.RoleAdmin), hm.gradeHandler.UpdateGrade)
			grades.GET("", hm.gradeHandler.ListGrades)
		}

		// Statistics and record views
		v1.GET("/stats", hm.statsHandler.GetStatistics)
		v1.GET("/records/:collection", hm.statsHandler.GetAccessibleRecords)

		// Reports
		reports := v1.Group("/reports")
		{
			reports.GET("/statistics", hm.authMiddleware.RequireRoleMiddleware(models.RoleAdmin), hm.reportHandler.ExportStatistics)
			reports.GET("/courses/:id/roster", hm.authMiddleware.RequireRoleMiddleware(models.RoleLecturer, models.RoleAdmin), hm.reportHandler.ExportCourseRoster)
		}
	}

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		if err := hm.serviceManager.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":  "unhealthy",
				"service": "records-service",
				"error":   err.Error(),
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "records-service",
		})
	})
}
