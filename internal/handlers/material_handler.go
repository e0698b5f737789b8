package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/scms-platform/records-service/internal/services"
	"github.com/scms-platform/records-service/internal/utils"
)

type MaterialHandler struct {
	BaseHandler
	materialService services.MaterialService
}

func NewMaterialHandler(materialService services.MaterialService, logger utils.Logger) *MaterialHandler {
	return &MaterialHandler{
		BaseHandler:     NewBaseHandler(logger),
		materialService: materialService,
	}
}

// AddMaterial attaches a material to a course
func (h *MaterialHandler) AddMaterial(c *gin.Context) {
	var req services.AddMaterialRequest
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

	h.LogRequest(c, "Adding material", "course_id", req.CourseID, "title", req.Title)

	material, err := h.materialService.Add(c.Request.Context(), &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, material)
}

// DeleteMaterial removes a material
func (h *MaterialHandler) DeleteMaterial(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	id := c.Param("id")
	h.LogRequest(c, "Deleting material", "material_id", id)

	if err := h.materialService.Delete(c.Request.Context(), id, userID); err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{
		Message: "Material deleted",
	})
}

// ListCourseMaterials lists the materials of one course the caller may see
func (h *MaterialHandler) ListCourseMaterials(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	courseID := c.Param("id")
	h.LogRequest(c, "Listing course materials", "course_id", courseID)

	materials, err := h.materialService.ListByCourse(c.Request.Context(), courseID, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Data: materials})
}
