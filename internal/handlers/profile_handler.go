package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/scms-platform/records-service/internal/models"
	"github.com/scms-platform/records-service/internal/repositories"
	"github.com/scms-platform/records-service/internal/services"
	"github.com/scms-platform/records-service/internal/utils"
)

type ProfileHandler struct {
	BaseHandler
	profileService services.ProfileService
}

func NewProfileHandler(profileService services.ProfileService, logger utils.Logger) *ProfileHandler {
	return &ProfileHandler{
		BaseHandler:    NewBaseHandler(logger),
		profileService: profileService,
	}
}

// Signup completes profile creation for a freshly authenticated identity with
// the caller-supplied role and student fields. Replays return the profile that
// already exists.
func (h *ProfileHandler) Signup(c *gin.Context) {
	var req services.SignupRequest
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

	h.LogRequest(c, "Completing signup", "user_id", userID)

	profile, err := h.profileService.EnsureProfile(c.Request.Context(), services.Identity{
		ID:    userID,
		Email: req.Email,
	}, &req)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, profile)
}

// GetMe returns the caller's own profile
func (h *ProfileHandler) GetMe(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	profile, err := h.profileService.GetByID(c.Request.Context(), userID, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

// GetProfile retrieves a profile by ID
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	id := c.Param("id")
	h.LogRequest(c, "Getting profile", "profile_id", id)

	profile, err := h.profileService.GetByID(c.Request.Context(), id, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

// UpdateProfile applies a partial profile edit
func (h *ProfileHandler) UpdateProfile(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	id := c.Param("id")

	var req services.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Message: "Invalid request payload",
			Details: err.Error(),
		})
		return
	}

	h.LogRequest(c, "Updating profile", "profile_id", id)

	profile, err := h.profileService.Update(c.Request.Context(), id, &req, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

// ListProfiles lists profiles, optionally filtered by role or email
func (h *ProfileHandler) ListProfiles(c *gin.Context) {
	userID, ok := h.requireUserID(c)
	if !ok {
		return
	}

	h.LogRequest(c, "Listing profiles")

	filters := repositories.ProfileFilters{}
	if role := c.Query("role"); role != "" {
		userRole := models.UserRole(role)
		filters.Role = &userRole
	}
	if email := c.Query("email"); email != "" {
		filters.Email = &email
	}

	profiles, err := h.profileService.List(c.Request.Context(), filters, userID)
	if err != nil {
		h.handleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, SuccessResponse{Data: profiles})
}
