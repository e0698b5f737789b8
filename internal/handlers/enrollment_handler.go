package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/scms-platform/records-service/internal/models"
	"github.com/scms-platform/records-service/internal/repositories"
	"github.com/scms-platform/records-service/internal/services"
	"github.com/scms-platform/records-service/internal/utils"
)

type EnrollmentHandler struct {
	BaseHandler
	enrollmentService services.EnrollmentService
}

func NewEnrollmentHandler(enrollmentService services.EnrollmentService, logger utils.Logger) *EnrollmentHandler {
	return &EnrollmentHandler{
		BaseHandler:       NewBaseHandler(logger),
		enrollmentService: enrollmentService,
	}
}

type enrollRequest struct {
	CourseID string `json:"course_id" binding:"required"`

	// StudentID defaults to the caller; only admins may enroll someone else
	StudentID string `json:"student_id"`
}

// Enroll registers the student on a course, holding the capacity invariant
func (h *EnrollmentHandler) Enroll(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	var req enrollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	studentID := req.StudentID
	if studentID == "" {
		studentID = userID
	}

	h.LogRequest(c, "Enrolling student", "student_id", studentID, "course_id", req.CourseID)

	enrollment, err := h.enrollmentService.Enroll(c.Request.Context(), studentID, req.CourseID, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, enrollment)
}

// Withdraw marks the caller's active enrollment on a course as withdrawn. The
// record is kept for history; only the seat is released.
func (h *EnrollmentHandler) Withdraw(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	courseID := c.Param("id")
	studentID := c.Query("student_id")
	if studentID == "" {
		studentID = userID
	}

	h.LogRequest(c, "Withdrawing student", "student_id", studentID, "course_id", courseID)

	if err := h.enrollmentService.Withdraw(c.Request.Context(), studentID, courseID, userID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Enrollment withdrawn",
	})
}

// ListEnrollments lists enrollments visible to the caller
func (h *EnrollmentHandler) ListEnrollments(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Listing enrollments")

	filters := repositories.EnrollmentFilters{}
	if studentID := c.Query("student_id"); studentID != "" {
		filters.StudentID = &studentID
	}
	if courseID := c.Query("course_id"); courseID != "" {
		filters.CourseID = &courseID
	}
	if status := c.Query("status"); status != "" {
		enrollmentStatus := models.EnrollmentStatus(status)
		filters.Status = &enrollmentStatus
	}

	enrollments, err := h.enrollmentService.List(c.Request.Context(), filters, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Data: enrollments})
}
