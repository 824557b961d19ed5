package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/noah-isme/apiwada-admin-api/internal/models"
	appErrors "github.com/noah-isme/apiwada-admin-api/pkg/errors"
	"github.com/noah-isme/apiwada-admin-api/pkg/response"
)

// RequireCapability lets the request through when the token holds any of the listed capabilities.
func RequireCapability(capabilities ...models.Capability) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims, ok := Claims(c)
		if !ok {
			response.Error(c, appErrors.ErrUnauthorized)
			return
		}

		for _, capability := range capabilities {
			if claims.HasCapability(capability) {
				c.Next()
				return
			}
		}

		response.Error(c, appErrors.ErrForbidden)
	}
}
