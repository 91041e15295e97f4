package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"psymatch/internal/domain"
	"psymatch/internal/pkg/response"
)

// RequireRole gates a route group on the role claim set by Auth. Roles are
// baked into the token at login, so a freshly approved psychologist keeps
// the client role until they log in again; routes that must work right after
// approval check the profile in the service layer instead.
func RequireRole(required domain.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		role, exists := c.Get("role")
		if !exists {
			response.Error(c, http.StatusUnauthorized, "UNAUTHORIZED", "Role not found in token")
			c.Abort()
			return
		}

		if role.(string) != string(required) {
			response.Error(c, http.StatusForbidden, "FORBIDDEN", "Access denied: insufficient permissions")
			c.Abort()
			return
		}

		c.Next()
	}
}

func AdminOnly() gin.HandlerFunc {
	return RequireRole(domain.RoleAdmin)
}
