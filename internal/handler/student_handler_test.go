package handler

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/apiwada-admin-api/internal/dto"
	"github.com/noah-isme/apiwada-admin-api/internal/middleware"
	"github.com/noah-isme/apiwada-admin-api/internal/models"
	appErrors "github.com/noah-isme/apiwada-admin-api/pkg/errors"
)

type studentServiceMock struct {
	search    string
	actor     *models.JWTClaims
	index     string
	courseID  string
	updateErr error
}

func (m *studentServiceMock) List(_ context.Context, search string) ([]models.UserView, *models.Pagination, error) {
	m.search = search
	return []models.UserView{{IndexNumber: "1000"}}, &models.Pagination{Page: 1, PageSize: 1, TotalCount: 1}, nil
}

func (m *studentServiceMock) Get(_ context.Context, index string) (*models.UserView, error) {
	m.index = index
	return nil, appErrors.ErrNotFound
}

func (m *studentServiceMock) Update(_ context.Context, actor *models.JWTClaims, index string, _ dto.UpdateStudentRequest) (*models.UserView, error) {
	m.actor, m.index = actor, index
	if m.updateErr != nil {
		return nil, m.updateErr
	}
	return &models.UserView{IndexNumber: index}, nil
}

func (m *studentServiceMock) AddMark(_ context.Context, _ *models.JWTClaims, index string, _ dto.AddMarkRequest) (*models.UserView, error) {
	return &models.UserView{IndexNumber: index}, nil
}

func (m *studentServiceMock) ResetPassword(_ context.Context, _ *models.JWTClaims, _ string, _ dto.ResetPasswordRequest) error {
	return nil
}

func (m *studentServiceMock) ToggleCourse(_ context.Context, _ *models.JWTClaims, index, courseID string) (*models.UserView, error) {
	m.index, m.courseID = index, courseID
	return &models.UserView{IndexNumber: index, ActiveCourses: []string{courseID}}, nil
}

func newGinContext(method, path string, body []byte) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	req, _ := http.NewRequest(method, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	c.Request = req
	return c, w
}

func TestStudentHandlerList(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &studentServiceMock{}
	handler := NewStudentHandler(mockSvc)

	c, w := newGinContext(http.MethodGet, "/students?search=nim", nil)
	handler.List(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "nim", mockSvc.search)
	assert.Contains(t, w.Body.String(), `"total_count":1`)
}

func TestStudentHandlerGetNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewStudentHandler(&studentServiceMock{})

	c, w := newGinContext(http.MethodGet, "/students/4242", nil)
	c.Params = gin.Params{{Key: "index", Value: "4242"}}
	handler.Get(c)

	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), `"NOT_FOUND"`)
}

func TestStudentHandlerUpdatePassesActor(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &studentServiceMock{}
	handler := NewStudentHandler(mockSvc)
	actor := &models.JWTClaims{IndexNumber: "1000", Role: models.RoleAdmin}

	c, w := newGinContext(http.MethodPut, "/students/1001", []byte(`{"name":"A","contact":"0771"}`))
	c.Params = gin.Params{{Key: "index", Value: "1001"}}
	c.Set(middleware.ContextUserKey, actor)
	handler.Update(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Same(t, actor, mockSvc.actor)
	assert.Equal(t, "1001", mockSvc.index)
}

func TestStudentHandlerUpdateRejectsMalformedJSON(t *testing.T) {
	gin.SetMode(gin.TestMode)
	handler := NewStudentHandler(&studentServiceMock{})

	c, w := newGinContext(http.MethodPut, "/students/1001", []byte(`{"name":`))
	handler.Update(c)

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), `"VALIDATION_ERROR"`)
}

func TestStudentHandlerToggleCourse(t *testing.T) {
	gin.SetMode(gin.TestMode)
	mockSvc := &studentServiceMock{}
	handler := NewStudentHandler(mockSvc)

	c, w := newGinContext(http.MethodPost, "/students/1001/courses/course-9/toggle", nil)
	c.Params = gin.Params{{Key: "index", Value: "1001"}, {Key: "courseId", Value: "course-9"}}
	handler.ToggleCourse(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "course-9", mockSvc.courseID)
}
