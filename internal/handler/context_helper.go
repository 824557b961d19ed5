package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/apiwada-admin-api/internal/middleware"
	"github.com/noah-isme/apiwada-admin-api/internal/models"
	appErrors "github.com/noah-isme/apiwada-admin-api/pkg/errors"
)

func claimsFromContext(c *gin.Context) *models.JWTClaims {
	claims, ok := middleware.Claims(c)
	if !ok {
		return nil
	}
	return claims
}

func bindError(err error, message string) error {
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, message)
}

func positionParam(c *gin.Context) (int, error) {
	position, err := strconv.Atoi(c.Param("position"))
	if err != nil || position < 0 {
		return 0, appErrors.Clone(appErrors.ErrValidation, "position must be a non-negative integer")
	}
	return position, nil
}
