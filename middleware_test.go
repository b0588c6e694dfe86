// middleware_test.go

package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	return r
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) Response {
	t.Helper()
	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestAuthRequiredMissingToken(t *testing.T) {
	r := newTestRouter()
	r.GET("/protected", AuthRequired, func(c *gin.Context) {
		ok(c, gin.H{})
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	resp := decodeEnvelope(t, rec)
	assert.False(t, resp.Success)
	assert.Equal(t, "Not authorized to access this route", resp.Error)
}

func TestAuthRequiredMalformedToken(t *testing.T) {
	r := newTestRouter()
	r.GET("/protected", AuthRequired, func(c *gin.Context) {
		ok(c, gin.H{})
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer not-a-real-token")
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	resp := decodeEnvelope(t, rec)
	assert.False(t, resp.Success)
}

func TestAuthRequiredNonBearerScheme(t *testing.T) {
	r := newTestRouter()
	r.GET("/protected", AuthRequired, func(c *gin.Context) {
		ok(c, gin.H{})
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRequireRolesRejectsWrongRole(t *testing.T) {
	r := newTestRouter()
	r.GET("/admin", func(c *gin.Context) {
		c.Set(ctxUserKey, &User{Role: RoleBuyer})
	}, RequireRoles(RoleAdmin), func(c *gin.Context) {
		ok(c, gin.H{})
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	resp := decodeEnvelope(t, rec)
	assert.Contains(t, resp.Error, "is not authorized")
}

func TestRequireRolesAllowsMatchingRole(t *testing.T) {
	r := newTestRouter()
	r.GET("/seller", func(c *gin.Context) {
		c.Set(ctxUserKey, &User{Role: RoleSeller})
	}, RequireRoles(RoleSeller, RoleAdmin), func(c *gin.Context) {
		ok(c, gin.H{"reached": true})
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/seller", nil)
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeEnvelope(t, rec)
	assert.True(t, resp.Success)
}

func TestRequireRolesWithoutUser(t *testing.T) {
	r := newTestRouter()
	r.GET("/admin", RequireRoles(RoleAdmin), func(c *gin.Context) {
		ok(c, gin.H{})
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestOptionalAuthContinuesAnonymous(t *testing.T) {
	r := newTestRouter()
	r.GET("/public", OptionalAuth, func(c *gin.Context) {
		assert.Nil(t, currentUser(c))
		ok(c, gin.H{})
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/public", nil)
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestErrorMiddlewareEnvelope(t *testing.T) {
	r := newTestRouter()
	r.Use(errorMiddleware)
	r.GET("/boom", func(c *gin.Context) {
		c.Error(notFound("Resource not found"))
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	resp := decodeEnvelope(t, rec)
	assert.False(t, resp.Success)
	assert.Equal(t, "Resource not found", resp.Error)
}
