package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/scms-platform/records-service/internal/repositories"
	"github.com/scms-platform/records-service/internal/services"
	"github.com/scms-platform/records-service/internal/utils"
)

type GradeHandler struct {
	BaseHandler
	gradeService services.GradeService
}

func NewGradeHandler(gradeService services.GradeService, logger utils.Logger) *GradeHandler {
	return &GradeHandler{
		BaseHandler:  NewBaseHandler(logger),
		gradeService: gradeService,
	}
}

// AddGrade records a grade for a student on a course
func (h *GradeHandler) AddGrade(c *gin.Context) {
	var req services.AddGradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Recording grade", "student_id", req.StudentID, "course_id", req.CourseID)

	grade, err := h.gradeService.Add(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, grade)
}

// UpdateGrade applies a partial grade edit
func (h *GradeHandler) UpdateGrade(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	id := c.Param("id")

	var req services.UpdateGradeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Updating grade", "grade_id", id)

	grade, err := h.gradeService.Update(c.Request.Context(), id, &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, grade)
}

// ListGrades lists the grades visible to the caller
func (h *GradeHandler) ListGrades(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Listing grades")

	filters := repositories.GradeFilters{}
	if studentID := c.Query("student_id"); studentID != "" {
		filters.StudentID = &studentID
	}
	if courseID := c.Query("course_id"); courseID != "" {
		filters.CourseID = &courseID
	}

	grades, err := h.gradeService.List(c.Request.Context(), filters, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Data: grades})
}
