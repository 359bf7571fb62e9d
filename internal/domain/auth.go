// backend-go/internal/domain/auth.go
package domain

import "strings"

// Role is the caller's access level within a tenant.
type Role string

const (
	RoleAdmin   Role = "admin"
	RoleAnalyst Role = "analyst"
	RoleViewer  Role = "viewer"
)

var roleNames = map[string]Role{
	"admin":   RoleAdmin,
	"analyst": RoleAnalyst,
	"viewer":  RoleViewer,
}

// ParseRole returns the role for a given label (case-insensitive).
func ParseRole(label string) (Role, bool) {
	role, ok := roleNames[strings.ToLower(strings.TrimSpace(label))]
	return role, ok
}

// AuthContext scopes every core call to one tenant and one caller. It is
// always passed explicitly; nothing is inferred from request-global state.
type AuthContext struct {
	TenantID string `json:"tenant_id"`
	UserID   string `json:"user_id"`
	Role     Role   `json:"role"`
}

// CanEvaluate reports whether the caller may trigger accuracy evaluation.
func (a AuthContext) CanEvaluate() bool {
	return a.Role == RoleAdmin || a.Role == RoleAnalyst
}
