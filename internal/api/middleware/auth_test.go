package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/demandloop/backend-go/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthTestRouter(captured *domain.AuthContext) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(Auth())
	r.GET("/probe", func(c *gin.Context) {
		*captured = AuthFrom(c)
		c.Status(http.StatusOK)
	})
	return r
}

func TestAuthRejectsMissingTenant(t *testing.T) {
	var captured domain.AuthContext
	r := newAuthTestRouter(&captured)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), HeaderTenantID)
}

func TestAuthResolvesContextFromHeaders(t *testing.T) {
	var captured domain.AuthContext
	r := newAuthTestRouter(&captured)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set(HeaderTenantID, "t-42")
	req.Header.Set(HeaderUserID, "u-7")
	req.Header.Set(HeaderRole, "Analyst")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "t-42", captured.TenantID)
	assert.Equal(t, "u-7", captured.UserID)
	assert.Equal(t, domain.RoleAnalyst, captured.Role)
}

func TestAuthDowngradesUnknownRoleToViewer(t *testing.T) {
	var captured domain.AuthContext
	r := newAuthTestRouter(&captured)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set(HeaderTenantID, "t-42")
	req.Header.Set(HeaderRole, "superuser")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, domain.RoleViewer, captured.Role)
	assert.False(t, captured.CanEvaluate())
}
