// backend-go/internal/api/middleware/auth.go
package middleware

import (
	"net/http"
	"strings"

	"github.com/demandloop/backend-go/internal/domain"
	"github.com/gin-gonic/gin"
)

const (
	HeaderTenantID = "X-Tenant-ID"
	HeaderUserID   = "X-User-ID"
	HeaderRole     = "X-Role"

	authContextKey = "auth_context"
)

// Auth resolves the caller's tenant scope from request headers and stashes
// an AuthContext for handlers. Requests without a tenant are rejected; an
// unknown role downgrades to viewer rather than failing.
func Auth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tenantID := strings.TrimSpace(c.GetHeader(HeaderTenantID))
		if tenantID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing " + HeaderTenantID + " header"})
			return
		}

		role, ok := domain.ParseRole(c.GetHeader(HeaderRole))
		if !ok {
			role = domain.RoleViewer
		}

		c.Set(authContextKey, domain.AuthContext{
			TenantID: tenantID,
			UserID:   strings.TrimSpace(c.GetHeader(HeaderUserID)),
			Role:     role,
		})

		c.Next()
	}
}

// AuthFrom returns the AuthContext stashed by Auth. The zero value is only
// possible on routes registered outside the authenticated group.
func AuthFrom(c *gin.Context) domain.AuthContext {
	if v, ok := c.Get(authContextKey); ok {
		if auth, ok := v.(domain.AuthContext); ok {
			return auth
		}
	}
	return domain.AuthContext{}
}
