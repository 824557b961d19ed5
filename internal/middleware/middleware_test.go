package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/apiwada-admin-api/internal/models"
	"github.com/noah-isme/apiwada-admin-api/internal/service"
	appErrors "github.com/noah-isme/apiwada-admin-api/pkg/errors"
)

type validatorStub struct {
	claims *models.JWTClaims
	err    error
	token  string
}

func (v *validatorStub) ValidateToken(_ context.Context, token string) (*models.JWTClaims, error) {
	v.token = token
	return v.claims, v.err
}

func newRouter(handlers ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handlers = append(handlers, func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/protected", handlers...)
	return r
}

func perform(r http.Handler, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestJWTMiddleware(t *testing.T) {
	stub := &validatorStub{claims: &models.JWTClaims{IndexNumber: "1000"}}
	var seen *models.JWTClaims
	r := newRouter(JWT(stub), func(c *gin.Context) {
		seen, _ = Claims(c)
	})

	assert.Equal(t, http.StatusUnauthorized, perform(r, "").Code)
	assert.Equal(t, http.StatusUnauthorized, perform(r, "Token abc").Code)

	rec := perform(r, "Bearer abc")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "abc", stub.token)
	require.NotNil(t, seen)
	assert.Equal(t, "1000", seen.IndexNumber)

	stub.err = appErrors.Clone(appErrors.ErrUnauthorized, "session expired")
	rec = perform(r, "Bearer abc")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "session expired")
}

func TestRequireCapability(t *testing.T) {
	stub := &validatorStub{claims: &models.JWTClaims{IndexNumber: "1000", Capabilities: []models.Capability{models.CapabilityManageSite}}}

	allowed := newRouter(JWT(stub), RequireCapability(models.CapabilityManageBranding, models.CapabilityManageSite))
	assert.Equal(t, http.StatusOK, perform(allowed, "Bearer t").Code)

	denied := newRouter(JWT(stub), RequireCapability(models.CapabilityManageStudents))
	assert.Equal(t, http.StatusForbidden, perform(denied, "Bearer t").Code)

	anonymous := newRouter(RequireCapability(models.CapabilityManageStudents))
	assert.Equal(t, http.StatusUnauthorized, perform(anonymous, "").Code)
}

func TestMetricsMiddleware(t *testing.T) {
	metrics := service.NewMetricsService()
	r := newRouter(Metrics(metrics))

	perform(r, "")
	perform(r, "")
	assert.Equal(t, uint64(2), metrics.Snapshot().RequestsTotal)

	assert.Equal(t, http.StatusOK, perform(newRouter(Metrics(nil)), "").Code)
}

func TestMetricsMiddlewareSkipsProbesAndCollapsesUnknownPaths(t *testing.T) {
	metrics := service.NewMetricsService()
	r := newRouter(Metrics(metrics, "/protected"))

	perform(r, "")
	assert.Zero(t, metrics.Snapshot().RequestsTotal)

	r = gin.New()
	r.Use(Metrics(metrics))
	for _, path := range []string{"/nope/1", "/nope/2"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}
	assert.Equal(t, uint64(2), metrics.Snapshot().RequestsTotal)
}
