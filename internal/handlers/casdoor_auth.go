package handlers

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/casdoor/casdoor-go-sdk/casdoorsdk"
	"github.com/gin-gonic/gin"

	"github.com/scms-platform/records-service/internal/config"
	"github.com/scms-platform/records-service/internal/models"
	"github.com/scms-platform/records-service/internal/services"
)

// CasdoorAuthMiddleware authenticates requests with Casdoor-issued JWTs and
// materializes the caller's profile on first contact. Authorization decisions
// downstream use the stored profile role, never the token contents.
type CasdoorAuthMiddleware struct {
	client         *casdoorsdk.Client
	profileService services.ProfileService
	config         config.CasdoorConfig
}

func NewCasdoorAuthMiddleware(cfg config.CasdoorConfig, profileService services.ProfileService) *CasdoorAuthMiddleware {
	client := casdoorsdk.NewClient(
		cfg.Endpoint,
		cfg.ClientID,
		cfg.ClientSecret,
		cfg.Cert,
		cfg.Application,
		cfg.Organization,
	)

	return &CasdoorAuthMiddleware{
		client:         client,
		profileService: profileService,
		config:         cfg,
	}
}

// AuthMiddleware validates the bearer token and ensures a profile exists for
// the identity. EnsureProfile is idempotent, so concurrent first requests for
// the same identity still resolve to one stored profile.
func (cam *CasdoorAuthMiddleware) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, ErrorResponse{
				Message: "Missing or malformed authorization header",
			})
			c.Abort()
			return
		}

		claims, err := cam.client.ParseJwtToken(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, ErrorResponse{
				Message: fmt.Sprintf("Invalid token: %v", err),
			})
			c.Abort()
			return
		}

		identity := services.Identity{
			ID:    claims.Id,
			Email: claims.User.Email,
		}
		if identity.ID == "" {
			c.JSON(http.StatusUnauthorized, ErrorResponse{
				Message: "Token carries no subject",
			})
			c.Abort()
			return
		}

		profile, err := cam.profileService.EnsureProfile(c.Request.Context(), identity, nil)
		if err != nil {
			c.JSON(http.StatusUnauthorized, ErrorResponse{
				Message: "Failed to resolve profile for identity",
			})
			c.Abort()
			return
		}

		c.Set("user_id", profile.ID)
		c.Set("user_role", profile.Role)
		c.Set("profile", profile)

		c.Next()
	}
}

// RequireRoleMiddleware gates a route group on the stored role. Admins pass
// every gate.
func (cam *CasdoorAuthMiddleware) RequireRoleMiddleware(requiredRoles ...models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		userRole, exists := c.Get("user_role")
		if !exists {
			c.JSON(http.StatusForbidden, ErrorResponse{
				Message: "User role not found in context",
			})
			c.Abort()
			return
		}

		role, ok := userRole.(models.UserRole)
		if !ok {
			c.JSON(http.StatusForbidden, ErrorResponse{
				Message: "Invalid user role format",
			})
			c.Abort()
			return
		}

		for _, required := range requiredRoles {
			if role == required || role == models.RoleAdmin {
				c.Next()
				return
			}
		}

		c.JSON(http.StatusForbidden, ErrorResponse{
			Message: fmt.Sprintf("Insufficient permissions, required role: %v", requiredRoles),
		})
		c.Abort()
	}
}

func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return "", false
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
		return "", false
	}
	return parts[1], true
}

// GetProfileFromContext extracts the caller profile set by AuthMiddleware
func GetProfileFromContext(c *gin.Context) (*models.Profile, error) {
	value, exists := c.Get("profile")
	if !exists {
		return nil, fmt.Errorf("profile not found in context")
	}

	profile, ok := value.(*models.Profile)
	if !ok {
		return nil, fmt.Errorf("invalid profile type in context")
	}

	return profile, nil
}
