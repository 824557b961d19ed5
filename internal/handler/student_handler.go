package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/apiwada-admin-api/internal/dto"
	"github.com/noah-isme/apiwada-admin-api/internal/models"
	"github.com/noah-isme/apiwada-admin-api/pkg/response"
)

type studentService interface {
	List(ctx context.Context, search string) ([]models.UserView, *models.Pagination, error)
	Get(ctx context.Context, index string) (*models.UserView, error)
	Update(ctx context.Context, actor *models.JWTClaims, index string, req dto.UpdateStudentRequest) (*models.UserView, error)
	AddMark(ctx context.Context, actor *models.JWTClaims, index string, req dto.AddMarkRequest) (*models.UserView, error)
	ResetPassword(ctx context.Context, actor *models.JWTClaims, index string, req dto.ResetPasswordRequest) error
	ToggleCourse(ctx context.Context, actor *models.JWTClaims, index, courseID string) (*models.UserView, error)
}

// StudentHandler exposes the student management endpoints of the console.
type StudentHandler struct {
	service studentService
}

// NewStudentHandler constructs StudentHandler.
func NewStudentHandler(svc studentService) *StudentHandler {
	return &StudentHandler{service: svc}
}

// List godoc
// @Summary List students
// @Description Case-insensitive search across name, index number and contact
// @Tags Students
// @Produce json
// @Security BearerAuth
// @Param search query string false "Search term"
// @Success 200 {object} response.Envelope
// @Router /students [get]
func (h *StudentHandler) List(c *gin.Context) {
	students, pagination, err := h.service.List(c.Request.Context(), c.Query("search"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, students, pagination)
}

// Get godoc
// @Summary Get student
// @Tags Students
// @Produce json
// @Security BearerAuth
// @Param index path string true "Index number"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /students/{index} [get]
func (h *StudentHandler) Get(c *gin.Context) {
	student, err := h.service.Get(c.Request.Context(), c.Param("index"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, student, nil)
}

// Update godoc
// @Summary Update student
// @Description Replaces the editable fields. Concurrent edits are not merged.
// @Tags Students
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param index path string true "Index number"
// @Param payload body dto.UpdateStudentRequest true "Student payload"
// @Success 200 {object} response.Envelope
// @Router /students/{index} [put]
func (h *StudentHandler) Update(c *gin.Context) {
	var req dto.UpdateStudentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid student payload"))
		return
	}
	student, err := h.service.Update(c.Request.Context(), claimsFromContext(c), c.Param("index"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, student, nil)
}

// AddMark godoc
// @Summary Add exam mark
// @Tags Students
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param index path string true "Index number"
// @Param payload body dto.AddMarkRequest true "Mark payload"
// @Success 201 {object} response.Envelope
// @Router /students/{index}/marks [post]
func (h *StudentHandler) AddMark(c *gin.Context) {
	var req dto.AddMarkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid mark payload"))
		return
	}
	student, err := h.service.AddMark(c.Request.Context(), claimsFromContext(c), c.Param("index"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, student)
}

// ResetPassword godoc
// @Summary Reset student password
// @Tags Students
// @Accept json
// @Security BearerAuth
// @Param index path string true "Index number"
// @Param payload body dto.ResetPasswordRequest true "New password"
// @Success 204 {object} response.Envelope
// @Router /students/{index}/password [put]
func (h *StudentHandler) ResetPassword(c *gin.Context) {
	var req dto.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err, "invalid password payload"))
		return
	}
	if err := h.service.ResetPassword(c.Request.Context(), claimsFromContext(c), c.Param("index"), req); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ToggleCourse godoc
// @Summary Grant or revoke a course
// @Tags Students
// @Produce json
// @Security BearerAuth
// @Param index path string true "Index number"
// @Param courseId path string true "Course ID"
// @Success 200 {object} response.Envelope
// @Router /students/{index}/courses/{courseId}/toggle [post]
func (h *StudentHandler) ToggleCourse(c *gin.Context) {
	student, err := h.service.ToggleCourse(c.Request.Context(), claimsFromContext(c), c.Param("index"), c.Param("courseId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, student, nil)
}
