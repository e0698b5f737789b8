package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/scms-platform/records-service/internal/services"
	"github.com/scms-platform/records-service/internal/utils"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type ReportHandler struct {
	BaseHandler
	reportService services.ReportService
}

func NewReportHandler(reportService services.ReportService, logger utils.Logger) *ReportHandler {
	return &ReportHandler{
		BaseHandler:   NewBaseHandler(logger),
		reportService: reportService,
	}
}

// ExportStatistics streams the platform statistics workbook
func (h *ReportHandler) ExportStatistics(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Exporting statistics report")

	workbook, err := h.reportService.ExportStatistics(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="statistics.xlsx"`)
	c.Data(http.StatusOK, xlsxContentType, workbook)
}

// ExportCourseRoster streams the active roster workbook of one course
func (h *ReportHandler) ExportCourseRoster(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	courseID := c.Param("id")
	h.LogRequest(c, "Exporting course roster", "course_id", courseID)

	workbook, err := h.reportService.ExportCourseRoster(c.Request.Context(), courseID, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="roster-%s.xlsx"`, courseID))
	c.Data(http.StatusOK, xlsxContentType, workbook)
}
