package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/scms-platform/records-service/internal/repositories"
	"github.com/scms-platform/records-service/internal/services"
	"github.com/scms-platform/records-service/internal/utils"
)

type CourseHandler struct {
	BaseHandler
	courseService services.CourseService
}

func NewCourseHandler(courseService services.CourseService, logger utils.Logger) *CourseHandler {
	return &CourseHandler{
		BaseHandler:   NewBaseHandler(logger),
		courseService: courseService,
	}
}

// CreateCourse creates a new catalog entry
func (h *CourseHandler) CreateCourse(c *gin.Context) {
	var req services.CreateCourseRequest
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

	h.LogRequest(c, "Creating course", "code", req.Code)

	course, err := h.courseService.Create(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, course)
}

// GetCourse retrieves a course by ID
func (h *CourseHandler) GetCourse(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	id := c.Param("id")
	h.LogRequest(c, "Getting course", "course_id", id)

	course, err := h.courseService.GetByID(c.Request.Context(), id, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, course)
}

// ListCourses lists the catalog, optionally filtered
func (h *CourseHandler) ListCourses(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Listing courses")

	filters := repositories.CourseFilters{}
	if instructorID := c.Query("instructor_id"); instructorID != "" {
		filters.InstructorID = &instructorID
	}
	if createdBy := c.Query("created_by"); createdBy != "" {
		filters.CreatedBy = &createdBy
	}
	if code := c.Query("code"); code != "" {
		filters.Code = &code
	}

	courses, err := h.courseService.List(c.Request.Context(), filters, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Data: courses})
}

// UpdateCourse applies a partial course edit
func (h *CourseHandler) UpdateCourse(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	id := c.Param("id")

	var req services.UpdateCourseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Updating course", "course_id", id)

	course, err := h.courseService.Update(c.Request.Context(), id, &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, course)
}

// DeleteCourse removes the course together with all of its enrollments,
// materials and grades.
func (h *CourseHandler) DeleteCourse(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	id := c.Param("id")
	h.LogRequest(c, "Deleting course", "course_id", id)

	if err := h.courseService.Delete(c.Request.Context(), id, userID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Course and all dependent records deleted",
	})
}

type assignInstructorRequest struct {
	InstructorID string `json:"instructor_id" binding:"required"`
}

// AssignInstructor sets the instructor of a course
func (h *CourseHandler) AssignInstructor(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	id := c.Param("id")

	var req assignInstructorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Assigning instructor", "course_id", id, "instructor_id", req.InstructorID)

	course, err := h.courseService.AssignInstructor(c.Request.Context(), id, req.InstructorID, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, course)
}
