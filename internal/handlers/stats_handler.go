package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/scms-platform/records-service/internal/models"
	"github.com/scms-platform/records-service/internal/services"
	"github.com/scms-platform/records-service/internal/utils"
)

type StatsHandler struct {
	BaseHandler
	statsService services.StatsService
	guard        *services.AccessGuard
}

func NewStatsHandler(statsService services.StatsService, guard *services.AccessGuard, logger utils.Logger) *StatsHandler {
	return &StatsHandler{
		BaseHandler:  NewBaseHandler(logger),
		statsService: statsService,
		guard:        guard,
	}
}

// GetStatistics returns the role-scoped statistics block for the caller
func (h *StatsHandler) GetStatistics(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Computing statistics")

	stats, err := h.statsService.GetStatistics(c.Request.Context(), userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// GetAccessibleRecords returns the role-filtered view of one collection
func (h *StatsHandler) GetAccessibleRecords(c *gin.Context) {
	if _, ok := h.requireUserID(c); !ok {
		return
	}

	profile, err := GetProfileFromContext(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{
			Message: "User not authenticated",
		})
		return
	}

	collection := models.Collection(c.Param("collection"))
	h.LogRequest(c, "Listing accessible records", "collection", collection)

	records, err := h.guard.ListAccessible(c.Request.Context(), profile, collection)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, records)
}
